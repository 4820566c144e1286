package tree

import (
	"cmp"
	"slices"
	"strings"

	"github.com/rs/xid"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/internal/util"
)

// Trash detaches the folder at path (relative to the root) and files it in
// the trash container under a unique key derived from its name. The node
// remembers path as its origin so it can be restored. Returns the trash key.
func (t *FolderTree) Trash(path string) (string, error) {
	logger := util.GetLogger("FolderTree.Trash")

	node, err := t.Resolve(path, t.root)
	if err != nil {
		return "", opErr("trash", path, ErrNotFound)
	}

	origin := CleanPath(path)
	// xid ids embed their creation time and sort by it
	key := node.Name() + t.cfg.TrashKeySep + xid.New().String()

	t.detach(node)
	node.markTrashed(key, origin, t.now())
	t.trash.linkChild(key, node)

	logger.Debug().Str("path", origin).Str("key", key).Uint64("nodeID", node.NodeID()).Msg("Trashed folder")
	return key, nil
}

// Restore takes the subtree filed under key out of the trash and puts it back
// at its origin. When the origin is occupied again, the restore suffix is
// appended to the origin path until it is free; the occupant is untouched.
// Missing ancestors of the origin are recreated. The trashed node's children
// are moved (not copied) under a freshly created folder, which is returned.
//
// An unknown key is a silent no-op (nil node, nil error) unless StrictPaths
// is configured.
func (t *FolderTree) Restore(key string) (*Node, error) {
	logger := util.GetLogger("FolderTree.Restore")

	trashed, ok := t.trash.GetChild(key)
	if !ok {
		return nil, t.tolerate(logger, "restore", key)
	}

	origOrigin := trashed.Origin()
	origin := origOrigin
	for t.Exists(origin, t.root) {
		origin += t.cfg.RestoreSuffix
	}

	t.trash.RemoveChild(key)
	restored := t.addFresh(origin)

	for _, child := range trashed.Children() {
		childKey := child.Name()
		trashed.RemoveChild(childKey)
		restored.linkChild(childKey, child)
	}

	trashed.clearTrashed()
	t.registry.Delete(trashed.NodeID())
	trashed.Del()

	if origin != origOrigin {
		logger.Info().Str("key", key).Str("origin", origin).Msg("Origin occupied; restored under a new name")
	}
	logger.Debug().Str("key", key).Str("path", origin).Uint64("nodeID", restored.NodeID()).Msg("Restored folder")
	return restored, nil
}

// addFresh creates an empty folder at a path known to be free, regardless of
// the configured AddPolicy
func (t *FolderTree) addFresh(path string) *Node {
	dir, name := SplitParent(path)
	parent, _ := t.ensurePath(t.root, splitPath(dir))
	node := t.newNode(name)
	parent.AddChild(node)
	return node
}

// TrashEntries lists the trash container, oldest first
func (t *FolderTree) TrashEntries() []foldertree.TrashEntry {
	entries := make([]foldertree.TrashEntry, 0, t.trash.ChildCount())
	t.trash.children.Range(func(key string, n *Node) bool {
		entries = append(entries, foldertree.TrashEntry{
			Key:       key,
			Name:      n.Name(),
			NodeID:    n.NodeID(),
			Origin:    n.Origin(),
			TrashedAt: n.TrashedAt(),
		})
		return true
	})
	slices.SortFunc(entries, func(a, b foldertree.TrashEntry) int {
		return cmp.Or(a.TrashedAt.Compare(b.TrashedAt), strings.Compare(a.Key, b.Key))
	})
	return entries
}

// Purge permanently removes the subtree filed under key from the trash.
// An unknown key is a no-op unless StrictPaths is configured.
func (t *FolderTree) Purge(key string) error {
	logger := util.GetLogger("FolderTree.Purge")

	node, ok := t.trash.RemoveChild(key)
	if !ok {
		return t.tolerate(logger, "purge", key)
	}
	t.forgetSubtree(node)
	node.Del()
	logger.Debug().Str("key", key).Msg("Purged trashed folder")
	return nil
}

// EmptyTrash purges every trashed subtree and returns how many were removed
func (t *FolderTree) EmptyTrash() int {
	cnt := 0
	for _, key := range t.trash.ChildKeys() {
		if node, ok := t.trash.RemoveChild(key); ok {
			t.forgetSubtree(node)
			node.Del()
			cnt++
		}
	}
	if cnt > 0 {
		logger := util.GetLogger("FolderTree.EmptyTrash")
		logger.Info().Int("count", cnt).Msg("Emptied trash")
	}
	return cnt
}
