package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"github.com/spf13/cobra"

	"github.com/i2y/foxbridge/internal/domain"
)

var (
	dumpCategories []int64
	dumpJSONPath   string
	dumpOut        string
)

func init() {
	dumpCmd.Flags().Int64SliceVar(&dumpCategories, "category", nil, "Category ids to dump (default: configured categories)")
	dumpCmd.Flags().StringVar(&dumpJSONPath, "jsonpath", "", "JSONPath expression applied to the output")
	dumpCmd.Flags().StringVarP(&dumpOut, "out", "o", "", "Write output to file instead of stdout")
	rootCmd.AddCommand(dumpCmd, categoriesCmd)
}

// categoryDump is one entry of the dump output: a category id with its
// synthesized interfaces in folder order.
type categoryDump struct {
	ID   int64              `json:"_id"`
	List []domain.Interface `json:"list"`
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the project summary and the selected category ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		session, err := a.engine.LoadProjectInfo(cmd.Context(), a.cfg.Token)
		if err != nil {
			return err
		}
		out := struct {
			Project  domain.ProjectInfo `json:"project"`
			Selected []int64            `json:"selected"`
		}{
			Project:  session.ProjectInfo(),
			Selected: a.engine.SelectCategories(session, domain.CategoryConfig{IDs: a.cfg.Categories}),
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode categories: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Synthesize interface records for categories and print them as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		session, err := a.engine.LoadProjectInfo(ctx, a.cfg.Token)
		if err != nil {
			return err
		}
		ids := dumpCategories
		if len(ids) == 0 {
			ids = a.engine.SelectCategories(session, domain.CategoryConfig{IDs: a.cfg.Categories})
		}

		dumps := make([]categoryDump, 0, len(ids))
		for _, id := range ids {
			list, err := a.engine.ListInterfaces(ctx, session, domain.SyntheticalConfig{ID: id})
			if err != nil {
				return err
			}
			a.logger.Info("Category synthesized.", slog.Int64("category_id", id), slog.Int("interfaces", len(list)))
			dumps = append(dumps, categoryDump{ID: id, List: list})
		}

		data, err := json.MarshalIndent(dumps, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode dump: %w", err)
		}
		if dumpJSONPath != "" {
			if data, err = filterJSON(data, dumpJSONPath); err != nil {
				return err
			}
		}

		var w io.Writer = cmd.OutOrStdout()
		if dumpOut != "" {
			f, err := os.Create(dumpOut)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	},
}

// filterJSON applies a JSONPath expression to a JSON document and returns the
// matches as an indented JSON array.
func filterJSON(data []byte, expr string) ([]byte, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dump output: %w", err)
	}
	results := x.Get(doc)
	if results == nil {
		results = []any{}
	}
	return []byte(oj.JSON(results, &oj.Options{Indent: 2, Sort: true})), nil
}
