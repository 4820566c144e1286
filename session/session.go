// Package session owns a folder tree and serialises every command against it.
// Entrypoints (repl, http api, fuse mount, command scripts) talk to the tree
// only through a Session.
package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/config"
	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/tree"
)

// Outcome reports what a mutating command did. Rerender is set when the tree
// changed; Message carries a user-facing note such as a guard rejection.
type Outcome struct {
	Rerender bool   `json:"rerender"`
	Message  string `json:"message,omitempty"`
	Path     string `json:"path,omitempty"`    // Resulting path (add, move, restore)
	Key      string `json:"key,omitempty"`     // Trash key (trash)
	NodeID   uint64 `json:"node_id,omitempty"` // Node the command acted on
	Count    int    `json:"count,omitempty"`   // Entries removed (empty)
}

// NodeView is a read-only copy of one folder's state
type NodeView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	ChildCount int    `json:"child_count"`
}

type Session struct {
	mu   sync.RWMutex
	tree *tree.FolderTree
	cfg  *config.Config
	hub  *hub
}

func New(cfg *config.Config) *Session {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &Session{
		tree: tree.NewTree(cfg),
		cfg:  cfg,
		hub:  newHub(),
	}
}

func (s *Session) Config() *config.Config {
	return s.cfg
}

// guarded turns a cycle/identity rejection into a message-only outcome
func guarded(err error) (Outcome, error) {
	if tree.IsGuardRejection(err) {
		var opErr *tree.OpError
		msg := err.Error()
		if errors.As(err, &opErr) {
			msg = opErr.Err.Error()
		}
		return Outcome{Message: msg}, nil
	}
	return Outcome{}, err
}

func pathOf(n *tree.Node) string {
	p, _ := n.Path()
	return p
}

// AddFolder creates path and any missing ancestors
func (s *Session) AddFolder(path string) (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.AddCommand, Path: path})
}

// DeleteFolder permanently removes path and its subtree
func (s *Session) DeleteFolder(path string) (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.DeleteCommand, Path: path})
}

// MoveFolder moves source under dest. Moves into the source's own subtree or
// onto itself are rejected with a message and leave the tree unchanged.
func (s *Session) MoveFolder(source, dest string) (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.MoveCommand, Path: source, Dest: dest})
}

// TrashFolder moves path into the trash; Outcome.Key is its trash key
func (s *Session) TrashFolder(path string) (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.TrashCommand, Path: path})
}

// RestoreFolder puts the trashed folder filed under key back at its origin
func (s *Session) RestoreFolder(key string) (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.RestoreCommand, Key: key})
}

func (s *Session) PurgeTrash(key string) (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.PurgeCommand, Key: key})
}

func (s *Session) EmptyTrash() (Outcome, error) {
	return s.Apply(foldertree.CommandRequest{Type: foldertree.EmptyCommand})
}

// Apply runs one command under the write lock and publishes an Event when the
// tree changed. A request without an ID gets a fresh uuid.
func (s *Session) Apply(req foldertree.CommandRequest) (Outcome, error) {
	logger := util.GetLogger("Session.Apply")
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	s.mu.Lock()
	out, err := s.apply(req)
	s.mu.Unlock()

	if err != nil {
		logger.Debug().Str("id", req.ID).Str("type", string(req.Type)).Err(err).Msg("Command failed")
		return out, err
	}
	if out.Message != "" {
		logger.Info().Str("id", req.ID).Str("type", string(req.Type)).Msg(out.Message)
	}
	if out.Rerender {
		s.hub.publish(Event{
			ID:      req.ID,
			Type:    req.Type,
			Path:    req.Path,
			Dest:    req.Dest,
			Key:     req.Key,
			At:      time.Now(),
			Outcome: out,
		})
	}
	return out, nil
}

func (s *Session) apply(req foldertree.CommandRequest) (Outcome, error) {
	switch req.Type {
	case foldertree.AddCommand:
		existed := s.tree.Exists(req.Path, nil)
		n, err := s.tree.AddByPath(req.Path, nil)
		if err != nil {
			return Outcome{}, err
		}
		// merge hands back the existing folder untouched
		changed := !existed || s.cfg.AddPolicy != config.AddMerge
		return Outcome{Rerender: changed, Path: pathOf(n), NodeID: n.NodeID()}, nil

	case foldertree.DeleteCommand:
		existed := s.tree.Exists(req.Path, nil)
		if err := s.tree.Delete(req.Path, nil); err != nil {
			return Outcome{}, err
		}
		return Outcome{Rerender: existed}, nil

	case foldertree.MoveCommand:
		n, err := s.tree.Move(req.Path, req.Dest, nil)
		if err != nil {
			return guarded(err)
		}
		return Outcome{Rerender: true, Path: pathOf(n), NodeID: n.NodeID()}, nil

	case foldertree.TrashCommand:
		n, err := s.tree.Resolve(req.Path, nil)
		if err != nil {
			return Outcome{}, err
		}
		key, err := s.tree.Trash(req.Path)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Rerender: true, Key: key, NodeID: n.NodeID()}, nil

	case foldertree.RestoreCommand:
		n, err := s.tree.Restore(req.Key)
		if err != nil {
			return Outcome{}, err
		}
		if n == nil {
			return Outcome{}, nil
		}
		return Outcome{Rerender: true, Path: pathOf(n), NodeID: n.NodeID()}, nil

	case foldertree.PurgeCommand:
		_, existed := s.tree.TrashContainer().GetChild(req.Key)
		if err := s.tree.Purge(req.Key); err != nil {
			return Outcome{}, err
		}
		return Outcome{Rerender: existed, Key: req.Key}, nil

	case foldertree.EmptyCommand:
		cnt := s.tree.EmptyTrash()
		return Outcome{Rerender: cnt > 0, Count: cnt}, nil

	default:
		return Outcome{}, fmt.Errorf("unknown command type %q", req.Type)
	}
}

// FolderExists reports whether path names a folder under the root
func (s *Session) FolderExists(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Exists(path, nil)
}

// ResolvePath returns a view of the folder at path
func (s *Session) ResolvePath(path string) (NodeView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, err := s.tree.Resolve(path, nil)
	if err != nil {
		return NodeView{}, err
	}
	return viewOf(n), nil
}

// ReversePathOf finds the path of the live node with the given id. Trashed
// nodes are searched from the trash container, so their path starts with the
// trash key.
func (s *Session) ReversePathOf(id uint64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.tree.NodeByID(id)
	if !ok {
		return "", &tree.OpError{Op: "reverse", Path: fmt.Sprint(id), Err: tree.ErrNotFound}
	}
	root := s.tree.Root()
	if n.IsTrashed() {
		root = s.tree.TrashContainer()
	}
	return s.tree.ReversePath(n, root)
}

// NodeView returns the folder with the given id, trashed or not
func (s *Session) NodeView(id uint64) (NodeView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.tree.NodeByID(id)
	if !ok {
		return NodeView{}, false
	}
	return viewOf(n), true
}

// ChildrenOf lists the children of the folder with the given id, sorted by name
func (s *Session) ChildrenOf(id uint64) ([]NodeView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.tree.NodeByID(id)
	if !ok {
		return nil, false
	}
	return lo.Map(n.Children(), func(ch *tree.Node, _ int) NodeView {
		return viewOf(ch)
	}), true
}

// ChildOf looks up a single child of the folder with the given id
func (s *Session) ChildOf(id uint64, name string) (NodeView, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.tree.NodeByID(id)
	if !ok {
		return NodeView{}, false
	}
	ch, ok := n.GetChild(name)
	if !ok {
		return NodeView{}, false
	}
	return viewOf(ch), true
}

func (s *Session) Snapshot() tree.TreeSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Snapshot()
}

func (s *Session) TrashEntries() []foldertree.TrashEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.TrashEntries()
}

func viewOf(n *tree.Node) NodeView {
	return NodeView{
		ID:         n.NodeID(),
		Name:       n.Name(),
		Path:       pathOf(n),
		ChildCount: n.ChildCount(),
	}
}
