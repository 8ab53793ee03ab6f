package domain

// Session is the immutable result of loading one shared project: the folder
// tree, the schema registry and the project identity. It is passed explicitly
// to every operation instead of living on a long-lived engine instance.
type Session struct {
	token    string
	project  Project
	folders  []FolderNode
	registry *Registry
}

// NewSession assembles a session. The folder slice is owned by the session afterwards.
func NewSession(token string, folders []FolderNode, registry *Registry) *Session {
	return &Session{
		token:    token,
		project:  NewProject(registry.ProjectID()),
		folders:  folders,
		registry: registry,
	}
}

// Token returns the share token the session was loaded from.
func (s *Session) Token() string { return s.token }

// Project returns a copy of the project snapshot.
func (s *Session) Project() Project { return s.project.Clone() }

// Folders returns the folder tree. Callers must not modify it.
func (s *Session) Folders() []FolderNode { return s.folders }

// Registry returns the schema registry.
func (s *Session) Registry() *Registry { return s.registry }

// ProjectInfo returns the project identity with its top-level folders as categories.
func (s *Session) ProjectInfo() ProjectInfo {
	cats := make([]Category, 0, len(s.folders))
	for _, node := range s.folders {
		if !node.IsFolder() {
			continue
		}
		cats = append(cats, Category{
			ID:   node.FolderID,
			Name: node.Name,
			Desc: node.Key,
			List: []Interface{},
		})
	}
	return ProjectInfo{Project: s.Project(), Categories: cats}
}
