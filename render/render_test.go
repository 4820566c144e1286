package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/foldertree"
	"github.com/brettbedarf/foldertree/tree"
)

func createTestSnapshot(t *testing.T) (tree.TreeSnapshot, string) {
	t.Helper()
	tr := tree.NewTree(nil)
	for _, p := range []string{"docs/api", "docs/guides/intro", "src", "old/stuff"} {
		_, err := tr.AddByPath(p, nil)
		require.NoError(t, err)
	}
	key, err := tr.Trash("old")
	require.NoError(t, err)
	return tr.Snapshot(), key
}

func TestFolders(t *testing.T) {
	t.Parallel()

	snap, _ := createTestSnapshot(t)
	out := Folders(snap.Root)

	lines := strings.Split(out, "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "root")
	for _, name := range []string{"docs", "api", "guides", "intro", "src"} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "old", "trashed folders are not in the folder region")
	assert.Less(t, strings.Index(out, "docs"), strings.Index(out, "src"), "children sorted by name")
}

func TestTrash(t *testing.T) {
	t.Parallel()

	snap, key := createTestSnapshot(t)
	out := Trash(snap.Trash)

	assert.True(t, strings.HasPrefix(out, TrashLabel))
	assert.Contains(t, out, key, "entries are labelled with their restorable key")
	assert.Contains(t, out, "from /old")
	assert.Contains(t, out, "stuff")
}

func TestRender(t *testing.T) {
	t.Parallel()

	snap, key := createTestSnapshot(t)
	out := Render(snap)
	assert.Contains(t, out, "src")
	assert.Contains(t, out, key)

	snap.Trash = nil
	out = Render(snap)
	assert.NotContains(t, out, TrashLabel)
}

func TestEntryLabel(t *testing.T) {
	t.Parallel()

	e := tree.TrashedSnapshot{TrashEntry: foldertree.TrashEntry{
		Key:       "a.cs0l9bq8m5sg00a1b2c3",
		Name:      "a",
		Origin:    "x/a",
		TrashedAt: time.Now().Add(-3 * time.Hour),
	}}
	label := EntryLabel(e)
	assert.Contains(t, label, "a.cs0l9bq8m5sg00a1b2c3")
	assert.Contains(t, label, "from /x/a")
	assert.Contains(t, label, "3 hours ago")
}

func TestLines(t *testing.T) {
	t.Parallel()

	snap, _ := createTestSnapshot(t)
	assert.Equal(t, []string{
		"/docs",
		"/docs/api",
		"/docs/guides",
		"/docs/guides/intro",
		"/src",
	}, Lines(snap.Root))
}
