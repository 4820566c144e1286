package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/foldertree/session"
	"github.com/brettbedarf/foldertree/tree"
)

func createTestREPL(t *testing.T, input string) (*REPL, *session.Session, *bytes.Buffer) {
	t.Helper()
	sess := session.New(nil)
	out := &bytes.Buffer{}
	return New(sess, strings.NewReader(input), out), sess, out
}

func TestExec_AddAndMove(t *testing.T) {
	t.Parallel()
	r, sess, out := createTestREPL(t, "")

	assert.False(t, r.Exec("add x y/x"))
	assert.True(t, sess.FolderExists("y/x"))
	assert.Contains(t, out.String(), "y")

	out.Reset()
	r.Exec("mv x y")
	assert.Contains(t, out.String(), "moved to /y/x_1")
	assert.True(t, sess.FolderExists("y/x_1"))
}

func TestExec_GuardMessage(t *testing.T) {
	t.Parallel()
	r, sess, out := createTestREPL(t, "")
	r.Exec("add a/b")
	before := sess.Snapshot()

	out.Reset()
	r.Exec("mv a a/b")
	assert.Contains(t, out.String(), tree.ErrCyclicMove.Error())
	assert.NotContains(t, out.String(), "root", "rejected moves do not redraw")

	out.Reset()
	r.Exec("mv a/b a/b")
	assert.Contains(t, out.String(), tree.ErrIdenticalMove.Error())
	assert.Equal(t, before, sess.Snapshot())
}

func TestExec_TrashRestore(t *testing.T) {
	t.Parallel()
	r, sess, out := createTestREPL(t, "")
	r.Exec("add a/child")

	out.Reset()
	r.Exec("trash a")
	entries := sess.TrashEntries()
	require.Len(t, entries, 1)
	key := entries[0].Key
	assert.Contains(t, out.String(), "trashed as "+key)
	assert.Contains(t, out.String(), key, "trash entries are drawn with their key")

	r.Exec("add a")
	out.Reset()
	r.Exec("restore " + key)
	assert.Contains(t, out.String(), "restored to /a_")
	assert.True(t, sess.FolderExists("a_/child"))

	out.Reset()
	r.Exec("restore " + key)
	assert.Contains(t, out.String(), "no trash entry")
}

func TestExec_PurgeEmpty(t *testing.T) {
	t.Parallel()
	r, sess, out := createTestREPL(t, "")
	r.Exec("add a b")
	r.Exec("trash a")
	r.Exec("trash b")

	key := sess.TrashEntries()[0].Key
	r.Exec("purge " + key)
	assert.Len(t, sess.TrashEntries(), 1)

	out.Reset()
	r.Exec("empty")
	assert.Contains(t, out.String(), "purged 1")
	assert.Empty(t, sess.TrashEntries())
}

func TestExec_Lookups(t *testing.T) {
	t.Parallel()
	r, sess, out := createTestREPL(t, "")
	r.Exec("add a/b")
	view, err := sess.ResolvePath("a/b")
	require.NoError(t, err)

	out.Reset()
	r.Exec("exists a/b")
	assert.Equal(t, "true\n", out.String())

	out.Reset()
	r.Exec("resolve a/b")
	assert.Contains(t, out.String(), "/a/b")

	out.Reset()
	r.Exec(fmt.Sprintf("path %d", view.ID))
	assert.Equal(t, "/a/b\n", out.String())

	out.Reset()
	r.Exec("path nope")
	assert.Contains(t, out.String(), "invalid node id")
}

func TestExec_Errors(t *testing.T) {
	t.Parallel()
	r, _, out := createTestREPL(t, "")

	r.Exec("frobnicate")
	assert.Contains(t, out.String(), "unknown command")

	out.Reset()
	r.Exec("mv onlyone")
	assert.Contains(t, out.String(), "usage: mv <source> <dest>")

	out.Reset()
	r.Exec("add")
	assert.Contains(t, out.String(), "usage: add")

	out.Reset()
	r.Exec("trash missing")
	assert.Contains(t, out.String(), "error:")

	out.Reset()
	r.Exec("rm missing")
	assert.Contains(t, out.String(), "nothing at missing")

	assert.False(t, r.Exec("   "))
	assert.True(t, r.Exec("quit"))
	assert.True(t, r.Exec("exit"))
}

func TestExec_Help(t *testing.T) {
	t.Parallel()
	r, _, out := createTestREPL(t, "")
	r.Exec("help")
	for name := range commands {
		assert.Contains(t, out.String(), name)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("until quit", func(t *testing.T) {
		t.Parallel()
		r, sess, _ := createTestREPL(t, "add a\nadd b\nquit\nadd c\n")
		require.NoError(t, r.Run(context.Background()))
		assert.True(t, sess.FolderExists("b"))
		assert.False(t, sess.FolderExists("c"), "lines after quit are ignored")
	})

	t.Run("until eof", func(t *testing.T) {
		t.Parallel()
		r, sess, out := createTestREPL(t, "add a\n")
		require.NoError(t, r.Run(context.Background()))
		assert.True(t, sess.FolderExists("a"))
		assert.Contains(t, out.String(), Prompt)
	})

	t.Run("until cancelled", func(t *testing.T) {
		t.Parallel()
		pr, pw := io.Pipe()
		defer pw.Close()
		sess := session.New(nil)
		r := New(sess, pr, &bytes.Buffer{})

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- r.Run(ctx) }()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancel")
		}
	})
}
