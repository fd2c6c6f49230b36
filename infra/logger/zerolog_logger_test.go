package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func bufferedLogger(buf *bytes.Buffer) *ZerologLogger {
	z := zerolog.New(buf).With().Str("component", "test").Logger()
	return &ZerologLogger{log: z}
}

func TestZerologLoggerMethods(t *testing.T) {
	assert.NoError(t, os.Setenv("APP_ENV", "dev"))
	defer func() { assert.NoError(t, os.Unsetenv("APP_ENV")) }()
	l := NewZerologLogger("test")
	if l == nil {
		t.Fatalf("nil logger")
	}
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestSetLevel(t *testing.T) {
	defer func() { assert.NoError(t, SetLevel("info")) }()

	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		assert.NoError(t, SetLevel(lvl))
	}
	assert.Error(t, SetLevel("loud"))

	var buf bytes.Buffer
	l := bufferedLogger(&buf)

	assert.NoError(t, SetLevel("error"))
	l.Infof("suppressed")
	l.Warnf("suppressed")
	assert.Empty(t, buf.String())

	l.Errorf("emitted")
	assert.Contains(t, buf.String(), "emitted")

	assert.NoError(t, SetLevel("debug"))
	buf.Reset()
	l.Debugf("visible again")
	assert.Contains(t, buf.String(), "visible again")
}
