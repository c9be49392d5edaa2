package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")

	log := New(false, file)
	log.Info("contact submission delivered", zap.String("component", "contact_form"))
	log.Debug("not written at info level")
	_ = log.Sync()

	data, err := os.ReadFile(file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"msg":"contact submission delivered"`)
	assert.Contains(t, lines[0], `"component":"contact_form"`)
}

func TestNew_Development(t *testing.T) {
	log := New(true, "")
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}
