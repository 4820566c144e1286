package tree

import (
	"strconv"

	"github.com/brettbedarf/foldertree/internal/util"
)

// Move relocates the folder at source so it becomes a child of the folder at
// dest. Both paths are resolved under parent (nil means the root) before
// anything is mutated.
//
// The move is rejected with ErrCyclicMove when dest lies inside source and
// with ErrIdenticalMove when both name the same folder; the tree is left
// unchanged in both cases. If dest already has a different child with the
// source's name, the source is renamed name_1, name_2, ... until unique.
// Returns the moved node.
func (t *FolderTree) Move(source, dest string, parent *Node) (*Node, error) {
	logger := util.GetLogger("FolderTree.Move")

	parent = t.rootOr(parent)
	src, err := t.Resolve(source, parent)
	if err != nil {
		return nil, opErr("move", source, ErrNotFound)
	}
	dst, err := t.Resolve(dest, parent)
	if err != nil {
		return nil, opErr("move", dest, ErrNotFound)
	}

	if isAncestor(src, dst) {
		logger.Debug().Str("source", source).Str("dest", dest).Msg("Rejected move into own subtree")
		return nil, opErr("move", source, ErrCyclicMove)
	}
	if CleanPath(source) == CleanPath(dest) || sameNode(src, dst) {
		return nil, opErr("move", source, ErrIdenticalMove)
	}

	oldName := src.Name()
	name := t.uniqueChildName(dst, src)

	t.detach(src)
	if name != oldName {
		src.setName(name)
	}
	if err := t.AttachNode(src, dst); err != nil {
		return nil, opErr("move", source, err)
	}

	logger.Debug().
		Str("source", source).
		Str("dest", dest).
		Str("name", name).
		Uint64("nodeID", src.NodeID()).
		Msg("Moved folder")
	return src, nil
}

// uniqueChildName returns n's name, or its name with the first free numeric
// suffix if dst already holds a different node under that name. n itself
// does not count as a collision.
func (t *FolderTree) uniqueChildName(dst, n *Node) string {
	base := n.Name()
	name := base
	for i := 1; ; i++ {
		existing, ok := dst.GetChild(name)
		if !ok || existing == n {
			return name
		}
		name = base + t.cfg.MoveSuffixSep + strconv.Itoa(i)
	}
}
