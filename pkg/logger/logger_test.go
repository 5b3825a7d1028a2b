package logger

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("json格式输出", func(t *testing.T) {
		l, err := New(Config{Level: "debug", Format: "json"})
		require.NoError(t, err)

		var buf bytes.Buffer
		l.SetOutput(&buf)
		l.WithField("book_id", 7).Debug("ingested")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "ingested", entry["msg"])
		assert.Equal(t, float64(7), entry["book_id"])
		assert.Equal(t, logrus.DebugLevel, l.GetLevel())
	})

	t.Run("默认级别为info", func(t *testing.T) {
		l, err := New(Config{})
		require.NoError(t, err)
		assert.Equal(t, logrus.InfoLevel, l.GetLevel())
		assert.IsType(t, &logrus.TextFormatter{}, l.Formatter)
	})

	t.Run("无效级别报错", func(t *testing.T) {
		_, err := New(Config{Level: "loud"})
		assert.Error(t, err)
	})

	t.Run("输出到文件", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")
		l, err := New(Config{Output: path})
		require.NoError(t, err)
		l.Info("hello")
		assert.FileExists(t, path)
	})
}
