package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
		want   logrus.Level
	}{
		{"Debug text", "debug", "text", logrus.DebugLevel},
		{"Warn json", "warn", "json", logrus.WarnLevel},
		{"Unknown level falls back to info", "chatty", "text", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := Setup(tt.level, tt.format, &buf)
			assert.Equal(t, tt.want, logger.GetLevel())

			logger.WithField("rows", 2).Error("converted")
			if tt.format == "json" {
				var entry map[string]interface{}
				require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
				assert.Equal(t, "converted", entry["msg"])
				assert.EqualValues(t, 2, entry["rows"])
			} else {
				assert.Contains(t, buf.String(), "msg=converted")
				assert.Contains(t, buf.String(), "rows=2")
			}
		})
	}
}

func TestOpenFile(t *testing.T) {
	w, err := OpenFile("")
	require.NoError(t, err)
	_, err = w.Write([]byte("dropped"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "smetacsv.log")
	w, err = OpenFile(path)
	require.NoError(t, err)
	logger := Setup("info", "text", w)
	logger.Info("hello")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=hello")
}
