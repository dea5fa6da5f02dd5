package logging

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	std := logrus.StandardLogger()
	out, lvl, fmtr := std.Out, std.GetLevel(), std.Formatter
	t.Cleanup(func() {
		logrus.SetOutput(out)
		logrus.SetLevel(lvl)
		logrus.SetFormatter(fmtr)
	})
}

func TestSetup_WritesToFile(t *testing.T) {
	restoreLogger(t)
	path := filepath.Join(t.TempDir(), "radar.log")

	c, err := Setup("debug", path)
	require.NoError(t, err)
	logrus.WithField("component", "test").Debug("hello")
	require.NoError(t, c.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), "component=test")
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestSetup_DiscardsWithoutFile(t *testing.T) {
	restoreLogger(t)
	c, err := Setup("warn", "")
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.Equal(t, io.Discard, logrus.StandardLogger().Out)
}

func TestSetup_RejectsUnknownLevel(t *testing.T) {
	restoreLogger(t)
	_, err := Setup("loud", "")
	assert.Error(t, err)
}
