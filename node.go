package foldertree

import "time"

// NodeInfo provides read-only access to folder information for external consumers
type NodeInfo interface {
	// Name returns the folder's simple name (last path component)
	Name() string

	// NodeID returns the stable identity handle assigned by the owning tree
	NodeID() uint64

	// Path returns the path relative to the root of the region the node lives in
	Path() (string, error)

	// IsTrashed reports whether the node currently lives in the trash container
	IsTrashed() bool
}

// TrashEntry describes one subtree held in the trash container
type TrashEntry struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	NodeID    uint64    `json:"node_id"`
	Origin    string    `json:"origin"`
	TrashedAt time.Time `json:"trashed_at"`
}
