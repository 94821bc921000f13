package log

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestLevelsFilter(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden")
	Info("hidden too")
	Warn("shown", "input", "P1X")
	Error("failed", errors.New("boom"), "code", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] shown input=P1X")
	assert.Contains(t, out, "[ERROR] failed err=boom code=3")
}

func TestValuesWithSpacesAreQuoted(t *testing.T) {
	buf := capture(t, LevelDebug)
	Debug("parsed", "summary", "team sync", 7, "skipped", "odd")
	assert.Contains(t, buf.String(), `[DEBUG] parsed summary="team sync"`)
	assert.NotContains(t, buf.String(), "skipped")
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"":        LevelInfo,
		"warning": LevelWarn,
		"Error":   LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
