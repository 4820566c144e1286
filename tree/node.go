package tree

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/brettbedarf/foldertree"
)

type region uint8

const (
	noRegion    region = iota
	folderRegion       // root of the normal folder tree
	trashRegion        // root of the trash container
)

var _ foldertree.NodeInfo = (*Node)(nil)

type Node struct {
	name      string    // Simple name of the folder. Protected by mu
	parent    *Node     // Protected by mu
	origin    string    // Path the node was trashed from; "" unless trashed. Protected by mu
	trashKey  string    // Key under the trash container; "" unless trashed. Protected by mu
	trashedAt time.Time // Protected by mu
	mu        sync.RWMutex
	nodeID    atomic.Uint64             // Identity handle from the owning tree; 0 until registered
	children  *xsync.Map[string, *Node] // child nodes by key (the child's name outside the trash)
	region    region
	isDel     atomic.Bool
}

// NewNode creates a detached folder with no children.
//
// NOTE: Parent node is responsible for adding itself to the returned Node's
// parent ref when linking it as its child
func NewNode(name string) *Node {
	return &Node{
		name:     name,
		children: xsync.NewMap[string, *Node](),
	}
}

func newRegionNode(name string, r region) *Node {
	n := NewNode(name)
	n.region = r
	return n
}

// NodeID returns the identity handle of the node; 0 if never registered
func (n *Node) NodeID() uint64 {
	return n.nodeID.Load()
}

// Name returns the node's simple name.
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

func (n *Node) setName(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.name = name
}

// Parent returns the owning node or nil for region roots and detached nodes
func (n *Node) Parent() *Node {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.parent
}

// key is the name the node is filed under in its parent's children
func (n *Node) keyLocked() string {
	if n.trashKey != "" {
		return n.trashKey
	}
	return n.name
}

// Path returns the path of the node relative to the root of its region
// (the folder root or the trash container). A region root returns "".
// Trashed nodes are addressed by their trash key.
//
// Returns an error if the node or an ancestor is detached or deleted, with the
// path up to the first detached node
func (n *Node) Path() (string, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.pathLocked()
}

// See [Node.Path]
func (n *Node) pathLocked() (string, error) {
	if n.region != noRegion {
		return "", nil
	}
	if n.isDel.Load() {
		return "", fmt.Errorf("deleted node: %s", n.name)
	}
	p := n.parent
	// handle detached node
	if p == nil {
		return n.keyLocked(), fmt.Errorf("detached node: %s", n.name)
	}

	pPath, err := p.Path()
	if pPath == "" {
		return n.keyLocked(), err
	}
	return pPath + "/" + n.keyLocked(), err
}

// regionRoot walks up to the topmost ancestor
func (n *Node) regionRoot() *Node {
	cur := n
	for {
		p := cur.Parent()
		if p == nil {
			return cur
		}
		cur = p
	}
}

// IsTrashed reports whether the node lives inside the trash container
func (n *Node) IsTrashed() bool {
	return n.regionRoot().region == trashRegion
}

// IsRoot reports whether the node is the root of the folder region
func (n *Node) IsRoot() bool {
	return n.region == folderRegion
}

// AddChild files child under its name and sets the child's parent to this
// node. A different node already filed under that name is detached.
func (n *Node) AddChild(child *Node) {
	n.linkChild(child.Name(), child)
}

func (n *Node) linkChild(key string, child *Node) {
	if prev, loaded := n.children.LoadAndStore(key, child); loaded && prev != child {
		prev.mu.Lock()
		prev.parent = nil
		prev.mu.Unlock()
	}

	child.mu.Lock()
	defer child.mu.Unlock()
	child.parent = n
}

// GetChild returns the child filed under name
func (n *Node) GetChild(name string) (child *Node, ok bool) {
	return n.children.Load(name)
}

// RemoveChild detaches and returns the child filed under name
func (n *Node) RemoveChild(name string) (*Node, bool) {
	child, exists := n.children.LoadAndDelete(name)
	if !exists {
		return nil, false
	}
	child.mu.Lock()
	defer child.mu.Unlock()
	child.parent = nil
	return child, true
}

// ChildKeys returns the keys of the node's children in sorted order
func (n *Node) ChildKeys() []string {
	keys := make([]string, 0, n.children.Size())
	n.children.Range(func(key string, _ *Node) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)
	return keys
}

// Children returns the child nodes sorted by key
func (n *Node) Children() []*Node {
	keys := n.ChildKeys()
	children := make([]*Node, 0, len(keys))
	for _, key := range keys {
		if ch, ok := n.children.Load(key); ok {
			children = append(children, ch)
		}
	}
	return children
}

func (n *Node) ChildCount() int {
	return n.children.Size()
}

// Origin returns the path the node was trashed from, "" if not trashed
func (n *Node) Origin() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.origin
}

func (n *Node) TrashKey() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.trashKey
}

func (n *Node) TrashedAt() time.Time {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.trashedAt
}

func (n *Node) markTrashed(key, origin string, at time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trashKey = key
	n.origin = origin
	n.trashedAt = at
}

func (n *Node) clearTrashed() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.trashKey = ""
	n.origin = ""
	n.trashedAt = time.Time{}
}

func (n *Node) IsDel() bool {
	return n.isDel.Load()
}

// Del marks the node as permanently removed from the tree. The node and its
// subtree stay readable for anyone still holding a reference.
func (n *Node) Del() {
	n.isDel.Store(true)
}

// sameNode compares identity handles, falling back to pointer identity for
// nodes that were never registered. Names are never compared.
func sameNode(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	if id := a.NodeID(); id != 0 {
		return id == b.NodeID()
	}
	return a == b
}

// isAncestor reports whether anc is a strict ancestor of n
func isAncestor(anc, n *Node) bool {
	for cur := n.Parent(); cur != nil; cur = cur.Parent() {
		if sameNode(cur, anc) {
			return true
		}
	}
	return false
}
