package util

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLevelFromVerbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		verbose  int
		expected LogLevel
	}{
		{1, ErrorLevel},
		{2, WarnLevel},
		{3, InfoLevel},
		{4, DebugLevel},
		{5, TraceLevel},
		{0, ErrorLevel},   // clamped to 1
		{-3, ErrorLevel},  // clamped to 1
		{100, TraceLevel}, // clamped to 5
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelFromVerbose(tt.verbose), "verbose %d", tt.verbose)
	}
}

func TestZerologLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, zerolog.TraceLevel, zerologLevel(TraceLevel))
	assert.Equal(t, zerolog.ErrorLevel, zerologLevel(ErrorLevel))
	assert.Equal(t, zerolog.InfoLevel, zerologLevel(42), "unknown levels default to info")
}

func TestZerologWriter_StripsStdlogPrefix(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := zerologWriter{logger: zerolog.New(&buf), level: zerolog.InfoLevel}

	n, err := w.Write([]byte("2024/01/01 10:00:00 main.go:12: hello world\n"))
	assert.NoError(t, err)
	assert.Equal(t, len("2024/01/01 10:00:00 main.go:12: hello world\n"), n)
	assert.Contains(t, buf.String(), `"message":"hello world"`)

	buf.Reset()
	_, err = w.Write([]byte("GET /tree: 200\n"))
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), `"message":"GET /tree: 200"`, "unprefixed lines are kept whole")
}

func TestValueOrDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "x", ValueOrDefault(Pointer("x"), "y"))
	assert.Equal(t, "y", ValueOrDefault[string](nil, "y"))
}
