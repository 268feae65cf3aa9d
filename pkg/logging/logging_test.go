package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	require.NoError(t, SetLevel("debug"))
	defer func() { _ = SetLevel("info") }()

	GetLogger("score").WithField("beats", 4).Debug("SetTimeSignature")

	out := buf.String()
	assert.Contains(t, out, "app=drumscript")
	assert.Contains(t, out, "component=score")
	assert.Contains(t, out, "beats=4")
	assert.Contains(t, out, "SetTimeSignature")
}

func TestSetLevel(t *testing.T) {
	defer func() { _ = SetLevel("info") }()

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, logrus.WarnLevel, GetProjectLogger().Logger.GetLevel())

	assert.Error(t, SetLevel("chatty"))
	assert.Equal(t, logrus.WarnLevel, GetProjectLogger().Logger.GetLevel())
}
