package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfwatch/backend/config"
	"github.com/shelfwatch/backend/internal/domain"
	"github.com/shelfwatch/backend/internal/infrastructure/cache"
	"github.com/shelfwatch/backend/internal/infrastructure/catalog"
	"github.com/shelfwatch/backend/internal/infrastructure/kvstore"
	"github.com/shelfwatch/backend/internal/infrastructure/notify"
	"github.com/shelfwatch/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	// Run tests
	exitCode := m.Run()

	// Exit with the test result code
	os.Exit(exitCode)
}

// stubAdvisor is a canned advisor client for integration tests
type stubAdvisor struct {
	mutex sync.Mutex
	calls int
	err   error
}

func (s *stubAdvisor) Recommend(ctx context.Context, req domain.RestockRequest) (*domain.AdvisorResponse, error) {
	s.mutex.Lock()
	s.calls++
	err := s.err
	s.mutex.Unlock()

	if err != nil {
		return nil, err
	}
	return &domain.AdvisorResponse{
		AnalyzerSummary:   "analysis for " + req.ProductName,
		RestockSuggestion: fmt.Sprintf("Order %d units of %s", req.Quantity+20, req.ProductName),
		ReorderMessage:    "Draft reorder ready for " + req.ProductName,
	}, nil
}

func (s *stubAdvisor) callCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.calls
}

// testEnv wires a router to real infrastructure with a stubbed advisor
type testEnv struct {
	router   *gin.Engine
	advisor  *stubAdvisor
	recorder *notify.Recorder
	service  *usecase.DashboardService
}

// setupTestEnv creates a test router with default configuration
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*", "https://dashboard.shelfwatch.io"},
		},
		RateLimit: config.RateLimitConfig{
			PerIP: 6000,
		},
	}

	store := kvstore.NewMemory()
	recCache := cache.NewRecommendationCache(store, 30*time.Minute)
	productCatalog := catalog.NewMemory()
	recorder := notify.NewRecorder(notify.DefaultHistory)
	advisorStub := &stubAdvisor{}

	service := usecase.NewDashboardService(productCatalog, recCache, advisorStub, recorder, usecase.DashboardServiceConfig{
		Debounce:    20 * time.Millisecond,
		Concurrency: 3,
		ItemTimeout: time.Second,
	})
	t.Cleanup(service.Stop)

	handler := NewHandler(service, productCatalog, recCache, recorder)
	router := SetupRouter(cfg, handler)

	return &testEnv{
		router:   router,
		advisor:  advisorStub,
		recorder: recorder,
		service:  service,
	}
}

// waitForSettled blocks until a cycle at or past minGeneration settles
func waitForSettled(t *testing.T, env *testEnv, minGeneration uint64) domain.DashboardSnapshot {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := env.service.Snapshot()
		if snap.State == domain.StateSettled && snap.Generation >= minGeneration {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("dashboard did not settle at generation %d in time", minGeneration)
	return domain.DashboardSnapshot{}
}

const lowStockPayload = `[
	{"id":"p-1","name":"Whole Milk","stock":2,"reorderPoint":12},
	{"id":"p-2","name":"Sourdough Bread","stock":4},
	{"id":"p-3","name":"Free Range Eggs","stock":7},
	{"id":"p-4","name":"Salted Butter","stock":25}
]`

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response map[string]interface{}
		err := json.Unmarshal(w.Body.Bytes(), &response)
		if err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response["status"] != "healthy" {
			t.Errorf("status = %v, want healthy", response["status"])
		}
		if response["service"] != "shelfwatch-backend" {
			t.Errorf("service = %v, want shelfwatch-backend", response["service"])
		}
		version, ok := response["version"].(string)
		if !ok || strings.TrimSpace(version) == "" {
			t.Errorf("version = %v, want non-empty string", response["version"])
		}
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		env := setupTestEnv(t)

		methods := []string{"POST", "PUT", "DELETE", "PATCH"}

		for _, method := range methods {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()

			env.router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

// TestProductsEndpoints tests product list replacement and retrieval
func TestProductsEndpoints(t *testing.T) {
	t.Run("replaces and lists the product catalog", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(lowStockPayload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusAccepted)
		}

		var accepted struct {
			Accepted int `json:"accepted"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &accepted); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if accepted.Accepted != 4 {
			t.Errorf("accepted = %d, want 4", accepted.Accepted)
		}

		req, _ = http.NewRequest("GET", "/api/v1/products", nil)
		w = httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var listed struct {
			Products []domain.Product `json:"products"`
			Count    int              `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if listed.Count != 4 || len(listed.Products) != 4 {
			t.Errorf("count = %d with %d products, want 4", listed.Count, len(listed.Products))
		}
		if listed.Products[0].ID != "p-1" || listed.Products[0].Name != "Whole Milk" {
			t.Errorf("first product = %+v, want p-1 Whole Milk", listed.Products[0])
		}
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(`{not json`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("returns 400 when a product has no id", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := `[{"name":"Whole Milk","stock":2}]`
		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		errorMsg, ok := response["error"].(string)
		if !ok || !strings.Contains(errorMsg, "id is required") {
			t.Errorf("error = %v, want to contain 'id is required'", response["error"])
		}
	})

	t.Run("returns 400 for negative stock", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := `[{"id":"p-1","name":"Whole Milk","stock":-3}]`
		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})

	t.Run("accepts an empty product list", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(`[]`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusAccepted)
		}

		snap := waitForSettled(t, env, 1)
		if !snap.WellStocked {
			t.Error("WellStocked = false, want true for empty catalog")
		}
	})
}

// TestDashboardEndpoint tests the dashboard snapshot endpoint
func TestDashboardEndpoint(t *testing.T) {
	t.Run("starts idle with no recommendations", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/api/v1/dashboard", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var snap domain.DashboardSnapshot
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if snap.State != domain.StateIdle {
			t.Errorf("State = %s, want idle", snap.State)
		}
		if snap.Loading {
			t.Error("Loading = true, want false")
		}
		if len(snap.Recommendations) != 0 {
			t.Errorf("Recommendations = %d entries, want 0", len(snap.Recommendations))
		}
		if !strings.Contains(w.Body.String(), `"recommendations":[]`) {
			t.Errorf("recommendations should marshal as an empty array, body = %s", w.Body.String())
		}
	})

	t.Run("posting products produces a settled dashboard", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(lowStockPayload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusAccepted)
		}

		waitForSettled(t, env, 1)

		req, _ = http.NewRequest("GET", "/api/v1/dashboard", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var snap domain.DashboardSnapshot
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if snap.State != domain.StateSettled {
			t.Errorf("State = %s, want settled", snap.State)
		}
		if snap.Progress != 100 {
			t.Errorf("Progress = %d, want 100", snap.Progress)
		}
		if snap.Loading {
			t.Error("Loading = true, want false after settle")
		}
		if snap.WellStocked {
			t.Error("WellStocked = true, want false")
		}
		if snap.GeneratedAt.IsZero() {
			t.Error("GeneratedAt not set on settled snapshot")
		}

		wantSummary := domain.Summary{TotalProducts: 4, NeedsRestock: 3, CriticalCount: 2, WeeklyPriority: 3}
		if snap.Summary != wantSummary {
			t.Errorf("Summary = %+v, want %+v", snap.Summary, wantSummary)
		}

		if len(snap.Recommendations) != 3 {
			t.Fatalf("Recommendations = %d entries, want 3", len(snap.Recommendations))
		}

		// Sorted by priority rank, then ascending stock
		wantOrder := []string{"p-1", "p-2", "p-3"}
		wantPriorities := []domain.Priority{domain.PriorityCritical, domain.PriorityCritical, domain.PriorityHigh}
		for i, entry := range snap.Recommendations {
			if entry.Product.ID != wantOrder[i] {
				t.Errorf("Recommendations[%d].Product.ID = %s, want %s", i, entry.Product.ID, wantOrder[i])
			}
			if entry.Recommendation.Priority != wantPriorities[i] {
				t.Errorf("Recommendations[%d].Priority = %s, want %s", i, entry.Recommendation.Priority, wantPriorities[i])
			}
			if entry.FromCache {
				t.Errorf("Recommendations[%d].FromCache = true, want false on first cycle", i)
			}
		}

		if snap.Recommendations[0].Recommendation.Summary != "analysis for Whole Milk" {
			t.Errorf("Summary = %q, want advisor analysis for Whole Milk", snap.Recommendations[0].Recommendation.Summary)
		}

		if got := env.advisor.callCount(); got != 3 {
			t.Errorf("advisor calls = %d, want 3", got)
		}
	})

	t.Run("well stocked catalog publishes no recommendations", func(t *testing.T) {
		env := setupTestEnv(t)

		payload := `[{"id":"p-9","name":"Canned Soup","stock":60}]`
		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		snap := waitForSettled(t, env, 1)

		if !snap.WellStocked {
			t.Error("WellStocked = false, want true")
		}
		if len(snap.Recommendations) != 0 {
			t.Errorf("Recommendations = %d entries, want 0", len(snap.Recommendations))
		}
		if snap.Summary.TotalProducts != 1 || snap.Summary.NeedsRestock != 0 {
			t.Errorf("Summary = %+v, want 1 tracked and 0 restock", snap.Summary)
		}
		if got := env.advisor.callCount(); got != 0 {
			t.Errorf("advisor calls = %d, want 0", got)
		}
	})

	t.Run("advisor failures surface as fallback entries", func(t *testing.T) {
		env := setupTestEnv(t)
		env.advisor.err = domain.ErrAdvisorAPIFailure

		payload := `[{"id":"p-1","name":"Whole Milk","stock":2}]`
		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		snap := waitForSettled(t, env, 1)

		if len(snap.Recommendations) != 1 {
			t.Fatalf("Recommendations = %d entries, want 1", len(snap.Recommendations))
		}
		entry := snap.Recommendations[0]
		if entry.Recommendation.Suggestion != "Manual review recommended" {
			t.Errorf("Suggestion = %q, want manual review fallback", entry.Recommendation.Suggestion)
		}
		if entry.FromCache {
			t.Error("FromCache = true, want false for fallback entry")
		}
	})
}

// TestRefreshEndpoint tests the forced regeneration endpoint
func TestRefreshEndpoint(t *testing.T) {
	t.Run("returns 202 and reports the force flag", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/dashboard/refresh", strings.NewReader(`{"force":true}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusAccepted)
		}

		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["force"] != true {
			t.Errorf("force = %v, want true", response["force"])
		}

		snap := waitForSettled(t, env, 1)
		if !snap.WellStocked {
			t.Error("WellStocked = false, want true for empty catalog refresh")
		}
	})

	t.Run("force refresh bypasses the cache, plain refresh reuses it", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(lowStockPayload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		waitForSettled(t, env, 1)
		if got := env.advisor.callCount(); got != 3 {
			t.Fatalf("advisor calls after first cycle = %d, want 3", got)
		}

		// Forced refresh clears the cache and calls the advisor again
		req, _ = http.NewRequest("POST", "/api/v1/dashboard/refresh", strings.NewReader(`{"force":true}`))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusAccepted)
		}

		snap := waitForSettled(t, env, 2)
		if got := env.advisor.callCount(); got != 6 {
			t.Errorf("advisor calls after forced refresh = %d, want 6", got)
		}
		for i, entry := range snap.Recommendations {
			if entry.FromCache {
				t.Errorf("Recommendations[%d].FromCache = true, want false after forced refresh", i)
			}
		}

		// Plain refresh is served from the cache written by the forced cycle
		req, _ = http.NewRequest("POST", "/api/v1/dashboard/refresh", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusAccepted {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusAccepted)
		}

		snap = waitForSettled(t, env, 3)
		if got := env.advisor.callCount(); got != 6 {
			t.Errorf("advisor calls after plain refresh = %d, want 6", got)
		}
		for i, entry := range snap.Recommendations {
			if !entry.FromCache {
				t.Errorf("Recommendations[%d].FromCache = false, want true after plain refresh", i)
			}
		}
	})

	t.Run("returns 400 for malformed refresh payload", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/dashboard/refresh", strings.NewReader(`{"force":`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

// TestCacheEndpoints tests cache statistics and clearing
func TestCacheEndpoints(t *testing.T) {
	t.Run("reports stats and clears the cache", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(lowStockPayload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		waitForSettled(t, env, 1)

		req, _ = http.NewRequest("GET", "/api/v1/cache/stats", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var stats domain.CacheStats
		if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if stats.Valid != 3 || stats.Expired != 0 {
			t.Errorf("stats = %+v, want 3 valid, 0 expired", stats)
		}

		req, _ = http.NewRequest("DELETE", "/api/v1/cache", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		req, _ = http.NewRequest("GET", "/api/v1/cache/stats", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if stats.Valid != 0 || stats.Expired != 0 {
			t.Errorf("stats after clear = %+v, want empty", stats)
		}
	})
}

// TestNotificationsEndpoint tests the notification history endpoint
func TestNotificationsEndpoint(t *testing.T) {
	t.Run("returns cycle notifications newest first", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("POST", "/api/v1/products", strings.NewReader(lowStockPayload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		waitForSettled(t, env, 1)

		req, _ = http.NewRequest("GET", "/api/v1/notifications", nil)
		w = httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		var response struct {
			Notifications []notify.Notification `json:"notifications"`
			Count         int                   `json:"count"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}

		if response.Count != 1 || len(response.Notifications) != 1 {
			t.Fatalf("count = %d with %d notifications, want 1", response.Count, len(response.Notifications))
		}

		latest := response.Notifications[0]
		if latest.Level != notify.LevelSuccess {
			t.Errorf("Level = %s, want success", latest.Level)
		}
		if !strings.Contains(latest.Message, "Generated 3 restock recommendations") {
			t.Errorf("Message = %q, want generation summary", latest.Message)
		}
		if latest.ID == "" {
			t.Error("notification ID not set")
		}
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for the local dashboard", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "http://localhost:5173" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "http://localhost:5173")
		}

		gotCreds := w.Header().Get("Access-Control-Allow-Credentials")
		if gotCreds != "true" {
			t.Errorf("Access-Control-Allow-Credentials = %q, want %q", gotCreds, "true")
		}
	})

	t.Run("dashboard endpoint has CORS for the hosted frontend", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/api/v1/dashboard", nil)
		req.Header.Set("Origin", "https://dashboard.shelfwatch.io")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		gotOrigin := w.Header().Get("Access-Control-Allow-Origin")
		if gotOrigin != "https://dashboard.shelfwatch.io" {
			t.Errorf("Access-Control-Allow-Origin = %q, want %q", gotOrigin, "https://dashboard.shelfwatch.io")
		}
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	t.Run("recovers from panic without crashing server", func(t *testing.T) {
		env := setupTestEnv(t)

		// Add a test route that panics
		env.router.GET("/panic", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest("GET", "/panic", nil)
		w := httptest.NewRecorder()

		// This should not crash the test - recovery middleware should handle it
		env.router.ServeHTTP(w, req)

		// Gin's default recovery returns 500
		if w.Code != http.StatusInternalServerError {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
	})
}

// TestRequestIDIntegration tests the request ID header end-to-end
func TestRequestIDIntegration(t *testing.T) {
	t.Run("every response carries a request ID", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Header().Get("X-Request-Id") == "" {
			t.Error("X-Request-Id header not set")
		}
	})

	t.Run("caller supplied request ID is echoed", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/api/v1/dashboard", nil)
		req.Header.Set("X-Request-Id", "dash-poll-7")
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if got := w.Header().Get("X-Request-Id"); got != "dash-poll-7" {
			t.Errorf("X-Request-Id = %q, want dash-poll-7", got)
		}
	})
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	t.Run("v1 routes are accessible", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/api/v1/dashboard", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusOK)
		}
	})

	t.Run("non-versioned routes return 404", func(t *testing.T) {
		env := setupTestEnv(t)

		req, _ := http.NewRequest("GET", "/api/dashboard", nil)
		w := httptest.NewRecorder()

		env.router.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
	})
}

// TestJSONResponses tests that all responses are valid JSON
func TestJSONResponses(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/api/v1/dashboard"},
		{"GET", "/api/v1/products"},
		{"GET", "/api/v1/cache/stats"},
		{"GET", "/api/v1/notifications"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			env := setupTestEnv(t)

			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			env.router.ServeHTTP(w, req)

			gotContentType := w.Header().Get("Content-Type")
			wantContentType := "application/json; charset=utf-8"
			if gotContentType != wantContentType {
				t.Errorf("Content-Type = %q, want %q", gotContentType, wantContentType)
			}

			var response map[string]interface{}
			err := json.Unmarshal(w.Body.Bytes(), &response)
			if err != nil {
				t.Errorf("Response should be valid JSON, got error: %v", err)
			}
		})
	}
}
