package tree

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/foldertree/config"
	"github.com/brettbedarf/foldertree/internal/util"
)

// RootID is the identity handle of the folder root
const RootID uint64 = 1

// FolderTree is a rooted tree of folders plus a separate trash container.
// Operations are not safe for concurrent mutation; callers serialise them
// (see session.Session).
type FolderTree struct {
	cfg        *config.Config
	root       *Node                     // Root of the folder region
	trash      *Node                     // Root of the trash region; never reachable from root
	lastNodeID atomic.Uint64             // Last NodeID assigned
	registry   *xsync.Map[uint64, *Node] // maps NodeIDs to live nodes
	now        func() time.Time
}

func NewTree(cfg *config.Config) *FolderTree {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	t := &FolderTree{
		cfg:      cfg,
		root:     newRegionNode(cfg.RootName, folderRegion),
		trash:    newRegionNode("trash", trashRegion),
		registry: xsync.NewMap[uint64, *Node](),
		now:      time.Now,
	}
	t.root.nodeID.Store(RootID)
	t.lastNodeID.Store(RootID)
	t.registry.Store(RootID, t.root)
	t.register(t.trash)
	return t
}

// Root returns the root folder
func (t *FolderTree) Root() *Node {
	return t.root
}

// TrashContainer returns the root of the trash region. Its children are the
// trashed subtrees filed under their trash keys.
func (t *FolderTree) TrashContainer() *Node {
	return t.trash
}

func (t *FolderTree) Config() *config.Config {
	return t.cfg
}

// NodeByID returns the live node registered under id
func (t *FolderTree) NodeByID(id uint64) (*Node, bool) {
	return t.registry.Load(id)
}

func (t *FolderTree) rootOr(parent *Node) *Node {
	if parent == nil {
		return t.root
	}
	return parent
}

// register retrieves or allocates the node's NodeID and records it in the
// registry. Returns the NodeID
func (t *FolderTree) register(n *Node) uint64 {
	id := n.nodeID.Load()
	if id == 0 {
		newID := t.lastNodeID.Add(1)
		// only one CAS will succeed
		if !n.nodeID.CompareAndSwap(0, newID) {
			newID = n.nodeID.Load()
		}
		id = newID
	}
	t.registry.Store(id, n)
	return id
}

func (t *FolderTree) registerSubtree(n *Node) {
	n.isDel.Store(false)
	walk(n, func(node *Node) bool {
		t.register(node)
		return true
	})
}

// forgetSubtree removes n and its descendants from the registry. The nodes
// keep their IDs so references held elsewhere still compare by identity.
func (t *FolderTree) forgetSubtree(n *Node) {
	walk(n, func(node *Node) bool {
		t.registry.Delete(node.NodeID())
		return true
	})
}

// walk visits n and its descendants depth first, children in key order.
// Returning false from fn skips the node's children.
func walk(n *Node, fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, ch := range n.Children() {
		walk(ch, fn)
	}
}

func (t *FolderTree) newNode(name string) *Node {
	n := NewNode(name)
	t.register(n)
	return n
}

// Resolve walks path from parent (nil means the root) one simple name at a
// time and returns the node it names.
func (t *FolderTree) Resolve(path string, parent *Node) (*Node, error) {
	frags := splitPath(path)
	if len(frags) == 0 {
		return nil, opErr("resolve", path, ErrNotFound)
	}
	n, err := descend(t.rootOr(parent), frags)
	if err != nil {
		return nil, opErr("resolve", path, err)
	}
	return n, nil
}

// Exists reports whether path names a folder under parent (nil means the root)
func (t *FolderTree) Exists(path string, parent *Node) bool {
	_, err := t.Resolve(path, parent)
	return err == nil
}

// ReversePath searches root's subtree (nil means the folder root) depth first
// for node, comparing identity rather than names, and returns the
// slash-joined keys leading from root to it.
func (t *FolderTree) ReversePath(node, root *Node) (string, error) {
	root = t.rootOr(root)
	if node == nil {
		return "", opErr("reverse", "", ErrNotFound)
	}
	if sameNode(node, root) {
		return "", nil
	}

	var found []string
	var search func(n *Node, trail []string) bool
	search = func(n *Node, trail []string) bool {
		for _, key := range n.ChildKeys() {
			child, ok := n.GetChild(key)
			if !ok {
				continue
			}
			next := append(trail[:len(trail):len(trail)], key)
			if sameNode(child, node) {
				found = next
				return true
			}
			if search(child, next) {
				return true
			}
		}
		return false
	}

	if !search(root, nil) {
		return "", opErr("reverse", node.Name(), ErrNotFound)
	}
	return JoinPath(found...), nil
}

// AddByPath creates a folder at path under parent (nil means the root),
// creating any missing ancestors first like `mkdir -p`.
//
// What happens when the folder itself already exists depends on the
// configured AddPolicy: merge returns the existing folder, reject fails with
// ErrExists and overwrite replaces it (and its subtree) with an empty folder.
// A rejected add never leaves newly created ancestors behind.
func (t *FolderTree) AddByPath(path string, parent *Node) (*Node, error) {
	logger := util.GetLogger("FolderTree.AddByPath")

	if err := validatePath(path); err != nil {
		return nil, opErr("add", path, err)
	}
	parent = t.rootOr(parent)
	frags := splitPath(path)
	name := frags[len(frags)-1]

	if existing, err := descend(parent, frags); err == nil {
		switch t.cfg.AddPolicy {
		case config.AddMerge:
			logger.Debug().Str("path", path).Msg("Folder already exists")
			return existing, nil
		case config.AddReject:
			return nil, opErr("add", path, ErrExists)
		}
	}

	cur, newCnt := t.ensurePath(parent, frags[:len(frags)-1])

	if prev, ok := cur.GetChild(name); ok {
		logger.Warn().Str("path", path).Uint64("nodeID", prev.NodeID()).Msg("Overwriting existing folder")
		t.forgetSubtree(prev)
		prev.Del()
	}
	node := t.newNode(name)
	cur.AddChild(node)

	if newCnt > 0 {
		logger.Debug().Str("path", path).Msg(fmt.Sprintf("Created %d missing ancestor(s)", newCnt))
	}
	logger.Debug().Str("path", path).Uint64("nodeID", node.NodeID()).Msg("Added folder")
	return node, nil
}

// ensurePath traverses frags from parent and makes any missing folders along
// the way. Returns the last node and how many folders were created.
func (t *FolderTree) ensurePath(parent *Node, frags []string) (*Node, int) {
	cur := parent
	newCnt := 0
	for _, name := range frags {
		if child, ok := cur.GetChild(name); ok {
			cur = child
			continue
		}
		node := t.newNode(name)
		cur.AddChild(node)
		newCnt++
		cur = node
	}
	return cur, newCnt
}

// AttachNode files an existing node under parent (nil means the root) keyed
// by its name, without any path decomposition. The node is detached from its
// previous owner first so it never has two parents. A different folder
// already filed under that name is replaced.
func (t *FolderTree) AttachNode(node, parent *Node) error {
	parent = t.rootOr(parent)
	if node == nil {
		return opErr("attach", "", ErrNotFound)
	}
	name := node.Name()
	if node.region != noRegion {
		return opErr("attach", name, fmt.Errorf("%w: region roots cannot be attached", ErrInvalidPath))
	}
	if sameNode(node, parent) || isAncestor(node, parent) {
		return opErr("attach", name, ErrCyclicMove)
	}

	t.detach(node)
	if prev, ok := parent.GetChild(name); ok && prev != node {
		t.forgetSubtree(prev)
		prev.Del()
	}
	parent.AddChild(node)
	t.registerSubtree(node)
	return nil
}

// detach unlinks n from its current parent, if any. A node leaving the trash
// loses its trash key and origin so it is filed under its name again.
func (t *FolderTree) detach(n *Node) {
	p := n.Parent()
	if p == nil {
		return
	}
	n.mu.RLock()
	key := n.keyLocked()
	n.mu.RUnlock()
	if cur, ok := p.GetChild(key); ok && cur == n {
		p.RemoveChild(key)
	}
	n.clearTrashed()
}

// Delete removes the folder at path under parent (nil means the root).
//
// A missing folder or a missing immediate parent is a silent no-op unless
// StrictPaths is configured, in which case ErrNotFound is returned. The
// removed node is not destroyed: anyone holding a reference keeps its subtree.
func (t *FolderTree) Delete(path string, parent *Node) error {
	logger := util.GetLogger("FolderTree.Delete")

	if err := validatePath(path); err != nil {
		return opErr("delete", path, err)
	}
	parent = t.rootOr(parent)
	dir, name := SplitParent(path)

	container, err := descend(parent, splitPath(dir))
	if err != nil {
		return t.tolerate(logger, "delete", path)
	}
	node, ok := container.RemoveChild(name)
	if !ok {
		return t.tolerate(logger, "delete", path)
	}

	t.forgetSubtree(node)
	node.Del()
	logger.Debug().Str("path", path).Uint64("nodeID", node.NodeID()).Msg("Deleted folder")
	return nil
}

// tolerate handles a not-found according to StrictPaths
func (t *FolderTree) tolerate(logger util.Logger, op, path string) error {
	if t.cfg.StrictPaths {
		return opErr(op, path, ErrNotFound)
	}
	logger.Debug().Str("path", path).Msg("Nothing to " + op)
	return nil
}
