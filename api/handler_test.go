package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recommend-service/model"
	"recommend-service/pipeline"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubRecommender struct {
	rec *pipeline.Recommendation
	err error
}

func (s stubRecommender) Recommend(context.Context, string) (*pipeline.Recommendation, error) {
	return s.rec, s.err
}

type stubDiagnostics struct {
	report model.DiagnosticsReport
}

func (s stubDiagnostics) Run(context.Context) model.DiagnosticsReport {
	return s.report
}

func serve(t *testing.T, h *Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	router := NewRouter(h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRecommendEndpoint(t *testing.T) {
	fetchedAt := time.Now()
	rec := &pipeline.Recommendation{
		Result: &model.SourceResult{Origin: model.OriginAPI, FetchedAt: fetchedAt},
		Products: []model.ProductRecord{
			{ID: "P1", Name: "Lamp", Price: model.Money{CurrencyCode: "USD", Units: 24, Nanos: 950_000_000}, Picture: "http://frontend/img/lamp.jpg"},
		},
		Explanation: "bright picks",
	}

	h := NewHandler(stubRecommender{rec: rec}, stubDiagnostics{}, nil)
	w := serve(t, h, "/api/recommend/user-42")

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		UserID      string `json:"user_id"`
		Source      string `json:"source"`
		Stale       bool   `json:"stale"`
		Explanation string `json:"explanation"`
		Products    []struct {
			ID    string `json:"id"`
			Name  string `json:"name"`
			Price struct {
				CurrencyCode string `json:"currency_code"`
				Units        int64  `json:"units"`
				Nanos        int32  `json:"nanos"`
			} `json:"price"`
			Picture string `json:"picture"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "user-42", body.UserID)
	assert.Equal(t, "api", body.Source)
	assert.False(t, body.Stale)
	assert.Equal(t, "bright picks", body.Explanation)
	require.Len(t, body.Products, 1)
	assert.Equal(t, "P1", body.Products[0].ID)
	assert.Equal(t, "USD", body.Products[0].Price.CurrencyCode)
	assert.Equal(t, int64(24), body.Products[0].Price.Units)
	assert.Equal(t, int32(950_000_000), body.Products[0].Price.Nanos)
}

func TestRecommendEndpointStaleCache(t *testing.T) {
	rec := &pipeline.Recommendation{
		Result:   &model.SourceResult{Origin: model.OriginCache, Stale: true, FetchedAt: time.Now()},
		Products: []model.ProductRecord{{ID: "P1", Name: "Lamp"}},
	}

	h := NewHandler(stubRecommender{rec: rec}, stubDiagnostics{}, nil)
	w := serve(t, h, "/api/recommend/user-42")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"cache"`)
	assert.Contains(t, w.Body.String(), `"stale":true`)
}

func TestRecommendEndpointAllSourcesFailed(t *testing.T) {
	err := fmt.Errorf("%w: connection refused", pipeline.ErrAllSourcesFailed)
	h := NewHandler(stubRecommender{err: err}, stubDiagnostics{}, nil)
	w := serve(t, h, "/api/recommend/user-42")

	require.Equal(t, http.StatusBadGateway, w.Code)

	var body struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "AllSourcesFailed", body.Error)
	assert.NotEmpty(t, body.Detail)
}

func TestHealthDetailsEndpoint(t *testing.T) {
	latency := int64(12)
	report := model.DiagnosticsReport{
		OverallStatus: model.StatusUnreachable,
		Components: []model.HealthCheckResult{
			{Name: "frontend_home", Protocol: model.ProtocolHTTP, Status: model.StatusOK, LatencyMs: &latency},
			{Name: "frontend_json", Protocol: model.ProtocolHTTP, Status: model.StatusUnreachable, Detail: "timeout"},
			{Name: "catalog", Protocol: model.ProtocolSkip, Status: model.StatusSkipped, Detail: "catalog is gRPC, no HTTP probe"},
		},
	}

	h := NewHandler(stubRecommender{err: errors.New("unused")}, stubDiagnostics{report: report}, nil)
	w := serve(t, h, "/api/health/details")

	// Probe failures are always reported as 200 data.
	require.Equal(t, http.StatusOK, w.Code)

	var body model.DiagnosticsReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, model.StatusUnreachable, body.OverallStatus)
	require.Len(t, body.Components, 3)
	assert.Equal(t, "frontend_home", body.Components[0].Name)
	require.NotNil(t, body.Components[0].LatencyMs)
	assert.Equal(t, int64(12), *body.Components[0].LatencyMs)
	assert.Nil(t, body.Components[1].LatencyMs)
}

func TestLivenessRoutes(t *testing.T) {
	h := NewHandler(stubRecommender{}, stubDiagnostics{}, nil)

	for _, path := range []string{"/", "/health", "/ready", "/api/health"} {
		w := serve(t, h, path)
		assert.Equal(t, http.StatusOK, w.Code, "path=%s", path)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	h := NewHandler(stubRecommender{}, stubDiagnostics{}, nil)
	w := serve(t, h, "/health")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
