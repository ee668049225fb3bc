package correlation

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID_Length(t *testing.T) {
	id := NewID()
	assert.Len(t, id, 8)
}

func TestID_Missing(t *testing.T) {
	id, ok := ID(context.Background())
	assert.False(t, ok)
	assert.Empty(t, id)
}

func TestID_EmptyString(t *testing.T) {
	ctx := WithID(context.Background(), "")
	_, ok := ID(ctx)
	assert.False(t, ok)
}

func runMiddleware(t *testing.T, inbound string) (string, string) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if inbound != "" {
		req.Header.Set(Header, inbound)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen string
	err := Middleware()(func(c echo.Context) error {
		seen, _ = ID(c.Request().Context())
		return nil
	})(c)
	require.NoError(t, err)
	return seen, rec.Header().Get(Header)
}

func TestMiddleware_GeneratesID(t *testing.T) {
	seen, echoed := runMiddleware(t, "")
	assert.Len(t, seen, 8)
	assert.Equal(t, seen, echoed)
}

func TestMiddleware_ReusesInboundID(t *testing.T) {
	seen, echoed := runMiddleware(t, "req-42")
	assert.Equal(t, "req-42", seen)
	assert.Equal(t, "req-42", echoed)
}

func TestMiddleware_RejectsMalformedInboundID(t *testing.T) {
	seen, _ := runMiddleware(t, "bad id\nwith newline")
	assert.NotEqual(t, "bad id\nwith newline", seen)
	assert.Len(t, seen, 8)
}

func TestHandler_AddsCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(inner))

	ctx := WithID(context.Background(), "test1234")
	logger.InfoContext(ctx, "test message", "key", "value")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=test1234")
	assert.Contains(t, output, "key=value")
}

func TestHandler_NoCorrelationID_WhenMissing(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(inner))

	logger.InfoContext(context.Background(), "no correlation")

	assert.NotContains(t, buf.String(), "correlation_id")
}

func TestHandler_WithAttrs_PreservesCorrelation(t *testing.T) {
	var buf bytes.Buffer
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	logger := slog.New(NewHandler(inner)).With("component", "board")

	ctx := WithID(context.Background(), "attr1234")
	logger.InfoContext(ctx, "with attrs")

	output := buf.String()
	assert.Contains(t, output, "correlation_id=attr1234")
	assert.Contains(t, output, "component=board")
}
