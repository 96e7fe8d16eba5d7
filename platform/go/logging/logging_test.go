package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLoggerEmitsCloudSeverity(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(Config{Component: "gym-api", Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "WARNING", entry["severity"])
	require.Equal(t, "kept", entry["message"])
	require.Equal(t, "gym-api", entry["component"])
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := NewLogger(Config{Level: "chatty"})
	require.Error(t, err)
}

func TestRequestLoggerSkipsPathsAndEnriches(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	handler := RequestLogger(base, "/metrics")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := Enrich(r.Context(), zap.String("client_id", "c-1"))
		logger, ok := FromContext(ctx)
		require.True(t, ok)
		logger.Info("handled")
		w.WriteHeader(http.StatusTeapot)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/programs", nil))

	completed := logs.FilterMessage("request completed").All()
	require.Len(t, completed, 1)
	require.Equal(t, "/api/v1/programs", completed[0].ContextMap()["path"])
	require.EqualValues(t, http.StatusTeapot, completed[0].ContextMap()["status"])

	handled := logs.FilterMessage("handled").All()
	require.Len(t, handled, 2)
	require.Equal(t, "c-1", handled[0].ContextMap()["client_id"])
}
