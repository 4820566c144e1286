package requests

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/foldertree"
)

func TestUnmarshalCommand(t *testing.T) {
	t.Parallel()

	t.Run("defaults id", func(t *testing.T) {
		t.Parallel()
		req, err := UnmarshalCommand([]byte(`{"type":"add","path":"a/b"}`))
		require.NoError(t, err)
		assert.Equal(t, foldertree.AddCommand, req.Type)
		assert.Equal(t, "a/b", req.Path)
		_, err = uuid.Parse(req.ID)
		assert.NoError(t, err, "generated id is a uuid")
	})

	t.Run("keeps supplied id", func(t *testing.T) {
		t.Parallel()
		req, err := UnmarshalCommand([]byte(`{"id":"cmd-1","type":"move","path":"a","dest":"b"}`))
		require.NoError(t, err)
		assert.Equal(t, "cmd-1", req.ID)
		assert.Equal(t, "b", req.Dest)
	})

	t.Run("malformed json", func(t *testing.T) {
		t.Parallel()
		_, err := UnmarshalCommand([]byte(`{"type":`))
		assert.Error(t, err)
	})
}

func TestConvertCommandDTO_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		dto     CommandDTO
		wantErr bool
	}{
		{"add with path", CommandDTO{Type: foldertree.AddCommand, Path: "a"}, false},
		{"add without path", CommandDTO{Type: foldertree.AddCommand}, true},
		{"delete without path", CommandDTO{Type: foldertree.DeleteCommand}, true},
		{"trash without path", CommandDTO{Type: foldertree.TrashCommand}, true},
		{"move with both", CommandDTO{Type: foldertree.MoveCommand, Path: "a", Dest: "b"}, false},
		{"move without dest", CommandDTO{Type: foldertree.MoveCommand, Path: "a"}, true},
		{"restore with key", CommandDTO{Type: foldertree.RestoreCommand, Key: "a.x"}, false},
		{"restore without key", CommandDTO{Type: foldertree.RestoreCommand, Path: "a"}, true},
		{"purge without key", CommandDTO{Type: foldertree.PurgeCommand}, true},
		{"empty needs nothing", CommandDTO{Type: foldertree.EmptyCommand}, false},
		{"unknown type", CommandDTO{Type: "rename", Path: "a"}, true},
		{"missing type", CommandDTO{Path: "a"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConvertCommandDTO(tt.dto)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

const yamlScript = `
- type: add
  path: projects/go
- type: add
  path: projects/rust
- type: move
  path: projects/rust
  dest: projects/go
- id: final
  type: trash
  path: projects
`

func TestParseScript(t *testing.T) {
	t.Parallel()

	t.Run("yaml list", func(t *testing.T) {
		t.Parallel()
		cmds, err := ParseScript([]byte(yamlScript), "yaml")
		require.NoError(t, err)
		require.Len(t, cmds, 4)
		assert.Equal(t, foldertree.MoveCommand, cmds[2].Type)
		assert.Equal(t, "projects/go", cmds[2].Dest)
		assert.Equal(t, "final", cmds[3].ID)
	})

	t.Run("yaml document", func(t *testing.T) {
		t.Parallel()
		doc := "commands:\n  - type: add\n    path: a\n  - type: empty\n"
		cmds, err := ParseScript([]byte(doc), "YML")
		require.NoError(t, err)
		require.Len(t, cmds, 2)
		assert.Equal(t, foldertree.EmptyCommand, cmds[1].Type)
	})

	t.Run("json list and document", func(t *testing.T) {
		t.Parallel()
		cmds, err := ParseScript([]byte(`[{"type":"add","path":"a"},{"type":"delete","path":"a"}]`), "json")
		require.NoError(t, err)
		assert.Len(t, cmds, 2)

		cmds, err = ParseScript([]byte(` {"commands":[{"type":"restore","key":"a.1"}]}`), "json")
		require.NoError(t, err)
		require.Len(t, cmds, 1)
		assert.Equal(t, "a.1", cmds[0].Key)
	})

	t.Run("invalid commands are skipped", func(t *testing.T) {
		t.Parallel()
		cmds, err := ParseScript([]byte(`[{"type":"add","path":"a"},{"type":"move","path":"a"},{"type":"nope"}]`), "json")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "command 1")
		assert.Contains(t, err.Error(), "command 2")
		require.Len(t, cmds, 1)
		assert.Equal(t, "a", cmds[0].Path)
	})

	t.Run("unsupported format", func(t *testing.T) {
		t.Parallel()
		_, err := ParseScript([]byte(`x`), "toml")
		assert.ErrorContains(t, err, "unsupported script format")
	})

	t.Run("empty yaml", func(t *testing.T) {
		t.Parallel()
		cmds, err := ParseScript(nil, "yaml")
		require.NoError(t, err)
		assert.Empty(t, cmds)
	})
}

func TestLoadScript(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "setup.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlScript), 0o644))

	cmds, err := LoadScript(path)
	require.NoError(t, err)
	assert.Len(t, cmds, 4)

	_, err = LoadScript(filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "failed to read script")
}
