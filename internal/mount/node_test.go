package mount

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/foldertree/session"
	"github.com/brettbedarf/foldertree/tree"
)

func createTestRoot(t *testing.T, paths ...string) (*dirNode, *session.Session) {
	t.Helper()
	sess := session.New(nil)
	for _, p := range paths {
		_, err := sess.AddFolder(p)
		require.NoError(t, err)
	}
	return &dirNode{sess: sess, id: tree.RootID, mounted: time.Now()}, sess
}

func nodeAt(t *testing.T, root *dirNode, path string) *dirNode {
	t.Helper()
	view, err := root.sess.ResolvePath(path)
	require.NoError(t, err)
	return root.child(view)
}

func TestDirNode_Getattr(t *testing.T) {
	t.Parallel()
	root, _ := createTestRoot(t, "a/b", "a/c")

	var out fuse.AttrOut
	errno := nodeAt(t, root, "a").Getattr(context.Background(), nil, &out)
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, uint32(dirMode), out.Mode)
	assert.Equal(t, uint32(4), out.Nlink)
}

func TestDirNode_Entries(t *testing.T) {
	t.Parallel()
	root, _ := createTestRoot(t, "z", "a/b")

	entries, errno := root.entries()
	require.Equal(t, fs.OK, errno)
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Name)
	assert.Equal(t, "z", entries[1].Name)
	assert.NotZero(t, entries[0].Ino)

	stream, errno := root.Readdir(context.Background())
	require.Equal(t, fs.OK, errno)
	cnt := 0
	for stream.HasNext() {
		_, errno := stream.Next()
		require.Equal(t, fs.OK, errno)
		cnt++
	}
	assert.Equal(t, 2, cnt)
}

func TestDirNode_Mkdir(t *testing.T) {
	t.Parallel()
	root, sess := createTestRoot(t, "a")
	a := nodeAt(t, root, "a")

	view, errno := a.mkdir("new")
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, "a/new", view.Path)
	assert.True(t, sess.FolderExists("a/new"))

	_, errno = a.mkdir("new")
	assert.Equal(t, syscall.EEXIST, errno)

	view, errno = root.mkdir("top")
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, "top", view.Path)
}

func TestDirNode_Rmdir(t *testing.T) {
	t.Parallel()
	root, sess := createTestRoot(t, "a/b/c")
	a := nodeAt(t, root, "a")

	errno := a.Rmdir(context.Background(), "b")
	require.Equal(t, fs.OK, errno)
	assert.False(t, sess.FolderExists("a/b"))

	entries := sess.TrashEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "a/b", entries[0].Origin, "rmdir trashes so it can be restored")

	assert.Equal(t, syscall.ENOENT, a.Rmdir(context.Background(), "b"))
}

func TestDirNode_FollowsMoves(t *testing.T) {
	t.Parallel()
	root, sess := createTestRoot(t, "a/b", "z")
	b := nodeAt(t, root, "a/b")

	_, err := sess.MoveFolder("a/b", "z")
	require.NoError(t, err)

	view, errno := b.mkdir("inner")
	require.Equal(t, fs.OK, errno)
	assert.Equal(t, "z/b/inner", view.Path, "node ids stay valid across moves")
}

func TestDirNode_Gone(t *testing.T) {
	t.Parallel()
	root, sess := createTestRoot(t, "a")
	a := nodeAt(t, root, "a")

	_, err := sess.DeleteFolder("a")
	require.NoError(t, err)

	var out fuse.AttrOut
	assert.Equal(t, syscall.ENOENT, a.Getattr(context.Background(), nil, &out))
	_, errno := a.entries()
	assert.Equal(t, syscall.ENOENT, errno)
}

func TestToErrno(t *testing.T) {
	t.Parallel()

	assert.Equal(t, syscall.ENOENT, toErrno(&tree.OpError{Op: "add", Err: tree.ErrNotFound}))
	assert.Equal(t, syscall.EEXIST, toErrno(tree.ErrExists))
	assert.Equal(t, syscall.EINVAL, toErrno(tree.ErrInvalidPath))
	assert.Equal(t, syscall.EIO, toErrno(assert.AnError))
}
