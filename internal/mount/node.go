package mount

import (
	"context"
	"errors"
	"syscall"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/samber/lo"

	"github.com/brettbedarf/foldertree/internal/util"
	"github.com/brettbedarf/foldertree/session"
	"github.com/brettbedarf/foldertree/tree"
)

const dirMode = fuse.S_IFDIR | 0o755

// dirNode is the kernel-facing view of one folder, addressed by its node id
// so it keeps pointing at the same folder across moves
type dirNode struct {
	fs.Inode
	sess    *session.Session
	id      uint64
	mounted time.Time
}

var (
	_ fs.NodeLookuper  = (*dirNode)(nil)
	_ fs.NodeReaddirer = (*dirNode)(nil)
	_ fs.NodeGetattrer = (*dirNode)(nil)
	_ fs.NodeMkdirer   = (*dirNode)(nil)
	_ fs.NodeRmdirer   = (*dirNode)(nil)
)

func (n *dirNode) child(view session.NodeView) *dirNode {
	return &dirNode{sess: n.sess, id: view.ID, mounted: n.mounted}
}

func (n *dirNode) fillAttr(view session.NodeView, attr *fuse.Attr) {
	attr.Mode = dirMode
	attr.Ino = view.ID
	attr.Nlink = uint32(2 + view.ChildCount)
	attr.Size = 4096
	attr.SetTimes(nil, &n.mounted, &n.mounted)
}

func (n *dirNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	view, ok := n.sess.NodeView(n.id)
	if !ok {
		return syscall.ENOENT
	}
	n.fillAttr(view, &out.Attr)
	return fs.OK
}

func (n *dirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	view, ok := n.sess.ChildOf(n.id, name)
	if !ok {
		return nil, syscall.ENOENT
	}
	n.fillAttr(view, &out.Attr)
	return n.NewInode(ctx, n.child(view), fs.StableAttr{Mode: dirMode, Ino: view.ID}), fs.OK
}

func (n *dirNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, errno := n.entries()
	if errno != fs.OK {
		return nil, errno
	}
	return fs.NewListDirStream(entries), fs.OK
}

func (n *dirNode) entries() ([]fuse.DirEntry, syscall.Errno) {
	children, ok := n.sess.ChildrenOf(n.id)
	if !ok {
		return nil, syscall.ENOENT
	}
	return lo.Map(children, func(ch session.NodeView, _ int) fuse.DirEntry {
		return fuse.DirEntry{Name: ch.Name, Mode: dirMode, Ino: ch.ID}
	}), fs.OK
}

// Mkdir adds a folder named name under this one
func (n *dirNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	view, errno := n.mkdir(name)
	if errno != fs.OK {
		return nil, errno
	}
	n.fillAttr(view, &out.Attr)
	return n.NewInode(ctx, n.child(view), fs.StableAttr{Mode: dirMode, Ino: view.ID}), fs.OK
}

func (n *dirNode) mkdir(name string) (session.NodeView, syscall.Errno) {
	logger := util.GetLogger("Mount.Mkdir")

	if _, exists := n.sess.ChildOf(n.id, name); exists {
		return session.NodeView{}, syscall.EEXIST
	}
	parent, err := n.sess.ReversePathOf(n.id)
	if err != nil {
		return session.NodeView{}, syscall.ENOENT
	}
	out, err := n.sess.AddFolder(tree.JoinPath(parent, name))
	if err != nil {
		logger.Debug().Err(err).Str("name", name).Msg("Mkdir failed")
		return session.NodeView{}, toErrno(err)
	}
	view, ok := n.sess.NodeView(out.NodeID)
	if !ok {
		return session.NodeView{}, syscall.ENOENT
	}
	return view, fs.OK
}

// Rmdir moves the folder into the trash rather than deleting it, so removals
// through the mount can be restored
func (n *dirNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	logger := util.GetLogger("Mount.Rmdir")

	if _, exists := n.sess.ChildOf(n.id, name); !exists {
		return syscall.ENOENT
	}
	parent, err := n.sess.ReversePathOf(n.id)
	if err != nil {
		return syscall.ENOENT
	}
	out, err := n.sess.TrashFolder(tree.JoinPath(parent, name))
	if err != nil {
		logger.Debug().Err(err).Str("name", name).Msg("Rmdir failed")
		return toErrno(err)
	}
	logger.Info().Str("name", name).Str("key", out.Key).Msg("Folder trashed via mount")
	return fs.OK
}

func toErrno(err error) syscall.Errno {
	switch {
	case errors.Is(err, tree.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, tree.ErrExists):
		return syscall.EEXIST
	case errors.Is(err, tree.ErrInvalidPath):
		return syscall.EINVAL
	default:
		return syscall.EIO
	}
}
