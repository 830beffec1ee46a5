package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/linemk/storefront/internal/lib/logger"
	"github.com/stretchr/testify/assert"
)

func TestNew_ProdSkipsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.EnvProd, &buf)

	log.Debug("hidden")
	assert.Empty(t, buf.String())

	log.Info("visible", slog.String("op", "test"))
	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visible", entry["msg"])
	assert.Equal(t, "test", entry["op"])
}

func TestNew_DevLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.EnvDev, &buf)

	log.Debug("details")
	assert.Contains(t, buf.String(), `"msg":"details"`)
}

func TestNew_LocalIsPretty(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.EnvLocal, &buf)

	log.With(slog.String("op", "cart.Add")).Info("added", slog.Int64("userID", 7))
	out := buf.String()
	assert.True(t, strings.Contains(out, "added"))
	assert.True(t, strings.Contains(out, `"op": "cart.Add"`))
	assert.True(t, strings.Contains(out, `"userID": 7`))
}
