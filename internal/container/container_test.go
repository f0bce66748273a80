package container

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/config"
	generativeAI "github.com/FACorreiaa/go-travel-assistant/internal/api/generative_ai"
)

func TestContainer_RoutesServeWithoutDatabaseCalls(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cfg, err := config.Load([]byte(`
jwt:
  secretKey: container-secret
  issuer: travel-assistant
navigation:
  services:
    - key: amap
      name: 高德地图
      urlTemplate: "https://uri.amap.com/navigation?to={address}"
      priority: 1
rateLimit:
  chatPerMinute: 10
`))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := NewContainer(&cfg, nil, mock, generativeAI.NewMockAssistant(), logger)
	defer c.Close()
	h := c.Router()

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/locations/navigation",
		strings.NewReader(`{"address":"天安门"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "uri.amap.com")

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	assert.NoError(t, mock.ExpectationsWereMet())
}
