package tree

import "github.com/brettbedarf/foldertree"

// Snapshot is an immutable copy of a folder and its subtree, children sorted
// by name. Used for rendering, JSON output and comparing tree states.
type Snapshot struct {
	ID       uint64     `json:"id"`
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	Children []Snapshot `json:"children,omitempty"`
}

// TrashedSnapshot is one trash entry together with the subtree it holds
type TrashedSnapshot struct {
	foldertree.TrashEntry
	Children []Snapshot `json:"children,omitempty"`
}

// TreeSnapshot captures both regions of a FolderTree
type TreeSnapshot struct {
	Root  Snapshot          `json:"root"`
	Trash []TrashedSnapshot `json:"trash"`
}

// SnapshotOf copies n's subtree; path is n's path and prefixes its descendants
func SnapshotOf(n *Node, path string) Snapshot {
	snap := Snapshot{
		ID:   n.NodeID(),
		Name: n.Name(),
		Path: path,
	}
	for _, key := range n.ChildKeys() {
		child, ok := n.GetChild(key)
		if !ok {
			continue
		}
		snap.Children = append(snap.Children, SnapshotOf(child, JoinPath(path, key)))
	}
	return snap
}

// Snapshot copies the whole tree including the trash container
func (t *FolderTree) Snapshot() TreeSnapshot {
	ts := TreeSnapshot{
		Root:  SnapshotOf(t.root, ""),
		Trash: make([]TrashedSnapshot, 0, t.trash.ChildCount()),
	}
	for _, entry := range t.TrashEntries() {
		node, ok := t.trash.GetChild(entry.Key)
		if !ok {
			continue
		}
		ts.Trash = append(ts.Trash, TrashedSnapshot{
			TrashEntry: entry,
			Children:   SnapshotOf(node, entry.Key).Children,
		})
	}
	return ts
}
