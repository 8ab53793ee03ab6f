package domain

// NodeKind distinguishes the two variants of a FolderNode.
type NodeKind int

const (
	// NodeFolder is a category folder that may hold sub-folders and endpoint leaves.
	NodeFolder NodeKind = iota + 1
	// NodeLeaf points at one endpoint descriptor fetchable from the gateway.
	NodeLeaf
)

func (k NodeKind) String() string {
	switch k {
	case NodeFolder:
		return "folder"
	case NodeLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// EndpointRef is the summary of an endpoint carried by a Leaf node.
type EndpointRef struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// FolderNode is one node of the documentation tree.
// Folder nodes carry FolderID and Children; Leaf nodes carry Endpoint.
// Nodes are built by the gateway adapter and never mutated afterwards.
type FolderNode struct {
	Kind     NodeKind     `json:"kind"`
	Key      string       `json:"key"`
	Name     string       `json:"name"`
	FolderID int64        `json:"folder_id,omitempty"`
	Children []FolderNode `json:"children,omitempty"`
	Endpoint *EndpointRef `json:"endpoint,omitempty"`
}

// NewFolder builds a Folder node.
func NewFolder(key, name string, id int64, children ...FolderNode) FolderNode {
	return FolderNode{Kind: NodeFolder, Key: key, Name: name, FolderID: id, Children: children}
}

// NewLeaf builds a Leaf node.
func NewLeaf(key, name string, endpoint EndpointRef) FolderNode {
	return FolderNode{Kind: NodeLeaf, Key: key, Name: name, Endpoint: &endpoint}
}

// IsFolder reports whether n is a Folder node.
func (n FolderNode) IsFolder() bool { return n.Kind == NodeFolder }

// Leaves returns the direct Leaf children of a folder, in document order.
// Sub-folders are not descended into.
func (n FolderNode) Leaves() []EndpointRef {
	var out []EndpointRef
	for _, child := range n.Children {
		if child.Kind == NodeLeaf && child.Endpoint != nil {
			out = append(out, *child.Endpoint)
		}
	}
	return out
}

// SelectFolders returns the ids of every Folder node reachable under the
// selection, in pre-order. An empty selection selects the whole tree. With a
// non-empty selection a folder outside it is cut off together with all of its
// descendants, even ones that are selected themselves.
func SelectFolders(selection CategoryConfig, tree []FolderNode) []int64 {
	allowed := selection.set()
	out := []int64{}

	stack := pushReversed(nil, tree)
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Kind != NodeFolder {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[node.FolderID]; !ok {
				continue
			}
		}
		out = append(out, node.FolderID)
		stack = pushReversed(stack, node.Children)
	}
	return out
}

// FindFolder searches the tree depth-first for the Folder node with the given id.
func FindFolder(id int64, tree []FolderNode) (*FolderNode, bool) {
	stack := make([]*FolderNode, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, &tree[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node.Kind != NodeFolder {
			continue
		}
		if node.FolderID == id {
			return node, true
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, &node.Children[i])
		}
	}
	return nil, false
}

// pushReversed pushes nodes so that nodes[0] is popped first.
func pushReversed(stack, nodes []FolderNode) []FolderNode {
	for i := len(nodes) - 1; i >= 0; i-- {
		stack = append(stack, nodes[i])
	}
	return stack
}
