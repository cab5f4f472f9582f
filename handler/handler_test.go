package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"co2-predictor/algo"
	"co2-predictor/cache"
	"co2-predictor/db"
	"co2-predictor/model"
	"co2-predictor/predictor"
	"co2-predictor/utils"
)

type countingRegressor struct {
	mu    sync.Mutex
	value float64
	calls int
}

func (r *countingRegressor) Predict([]float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.value, nil
}

type fakeStore struct {
	mu        sync.Mutex
	saved     []model.PredictionRecord
	counts    map[string]int
	locations []model.LocationLookup
	users     map[string]*model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counts: make(map[string]int),
		users:  make(map[string]*model.User),
		locations: []model.LocationLookup{
			{CityName: "Delhi", Latitude: 28.6139, Longitude: 77.2090, Country: "India"},
		},
	}
}

func (f *fakeStore) SavePrediction(_ context.Context, rec *model.PredictionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = uint(len(f.saved) + 1)
	f.saved = append(f.saved, *rec)
	return nil
}

func (f *fakeStore) IncrementPredictionCount(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[name]++
	return nil
}

func (f *fakeStore) ListPredictions(_ context.Context, limit, offset int) ([]model.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= len(f.saved) {
		return []model.PredictionRecord{}, nil
	}
	end := offset + limit
	if end > len(f.saved) {
		end = len(f.saved)
	}
	return f.saved[offset:end], nil
}

func (f *fakeStore) CountPredictions(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.saved)), nil
}

func (f *fakeStore) ListMetrics(context.Context) ([]model.ModelMetrics, error) {
	return []model.ModelMetrics{{ModelName: "XGBoost", R2Score: 0.85}}, nil
}

func (f *fakeStore) ListLocations(context.Context) ([]model.LocationLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.LocationLookup(nil), f.locations...), nil
}

func (f *fakeStore) GetLocation(_ context.Context, name string) (*model.LocationLookup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.locations {
		if f.locations[i].CityName == name {
			loc := f.locations[i]
			return &loc, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) UpsertLocation(_ context.Context, loc *model.LocationLookup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locations = append(f.locations, *loc)
	return nil
}

func (f *fakeStore) FindUser(_ context.Context, username string) (*model.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) Stats(context.Context) (*db.PredictionStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &db.PredictionStats{Total: int64(len(f.saved))}, nil
}

type testEnv struct {
	router *gin.Engine
	store  *fakeStore
	reg    *countingRegressor
}

func newTestEnv(t *testing.T, requiresScaling bool, c cache.Cache, opts RouterOptions) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := &countingRegressor{value: 0.82345}
	svc := predictor.NewService(&algo.Model{
		TypeName:        "RandomForestRegressor",
		RequiresScaling: requiresScaling,
		Regressor:       reg,
	}, nil)

	store := newFakeStore()
	h := New(svc, store, c, "test-secret")
	if err := h.RefreshLocations(context.Background()); err != nil {
		t.Fatal(err)
	}

	r := gin.New()
	if err := NewRouter(r, h, opts); err != nil {
		t.Fatal(err)
	}
	return &testEnv{router: r, store: store, reg: reg}
}

func (e *testEnv) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestPredictHandler_OK(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	w := env.do(http.MethodPost, "/api/predict/", `{"latitude": 28.6139, "longitude": "77.2090"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var result model.PredictionResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if result.PredictedCO2 != 0.8235 && result.PredictedCO2 != 0.8234 {
		t.Errorf("expected value rounded to 4 decimals, got %v", result.PredictedCO2)
	}
	if result.Units != "kg CO2/kWh" || result.ModelUsed != "RandomForestRegressor" {
		t.Errorf("unexpected result %+v", result)
	}
	if !strings.Contains(w.Body.String(), `"predicted_co2_emission"`) {
		t.Errorf("expected predicted_co2_emission field, got %s", w.Body.String())
	}
	if w.Header().Get(RequestIDHeader) == "" {
		t.Errorf("expected request id header")
	}

	if len(env.store.saved) != 1 {
		t.Fatalf("expected prediction to be recorded, got %d records", len(env.store.saved))
	}
	rec := env.store.saved[0]
	if rec.CityName == nil || *rec.CityName != "Delhi" {
		t.Errorf("expected record to be tagged with Delhi, got %v", rec.CityName)
	}
	if env.store.counts["RandomForestRegressor"] != 1 {
		t.Errorf("expected prediction count to be incremented")
	}
}

func TestPredictHandler_ClientErrors(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	cases := map[string]string{
		"invalid json":   `{invalid-json}`,
		"missing":        `{"latitude": 10}`,
		"text":           `{"latitude": "abc", "longitude": 10}`,
		"nan":            `{"latitude": "NaN", "longitude": 10}`,
		"latitude 91":    `{"latitude": 91, "longitude": 10}`,
		"longitude -181": `{"latitude": 10, "longitude": -181}`,
	}
	for name, body := range cases {
		w := env.do(http.MethodPost, "/api/predict", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", name, w.Code)
		}
		var resp model.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error == "" {
			t.Errorf("%s: expected error message, got %s", name, w.Body.String())
		}
	}

	if len(env.store.saved) != 0 {
		t.Errorf("failed predictions must not be recorded")
	}
}

func TestPredictHandler_ScalerUnavailable(t *testing.T) {
	env := newTestEnv(t, true, nil, RouterOptions{})

	w := env.do(http.MethodPost, "/api/predict", `{"latitude": 10, "longitude": 10}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "predicted_co2_emission") {
		t.Errorf("no numeric result may accompany an error: %s", w.Body.String())
	}
	if env.reg.calls != 0 {
		t.Errorf("model must not be invoked")
	}
}

func TestPredictHandler_Cache(t *testing.T) {
	lru, err := cache.NewLRU(16)
	if err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, false, lru, RouterOptions{})

	for i := 0; i < 3; i++ {
		w := env.do(http.MethodPost, "/api/predict", `{"latitude": 19.076, "longitude": 72.8777}`)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	}
	if env.reg.calls != 1 {
		t.Errorf("expected model to be invoked once, got %d", env.reg.calls)
	}
	if len(env.store.saved) != 3 {
		t.Errorf("expected every served prediction to be recorded, got %d", len(env.store.saved))
	}
}

func linearService(t *testing.T, intercept float64) *predictor.Service {
	t.Helper()
	coef := strings.TrimSuffix(strings.Repeat("0,", algo.FeatureCount), ",")
	data := fmt.Sprintf(`{"model_type": "LinearRegression", "coef": [%s], "intercept": %g}`, coef, intercept)
	m, err := algo.ParseModel([]byte(data), algo.DefaultScaledModels)
	if err != nil {
		t.Fatal(err)
	}
	return predictor.NewService(m, nil)
}

func TestPredictHandler_CacheFollowsArtifact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	shared, err := cache.NewLRU(16)
	if err != nil {
		t.Fatal(err)
	}

	body := `{"latitude": 19.076, "longitude": 72.8777}`
	for _, want := range []float64{0.5, 0.9} {
		r := gin.New()
		if err := NewRouter(r, New(linearService(t, want), nil, shared, "secret"), RouterOptions{}); err != nil {
			t.Fatal(err)
		}
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(body))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		var result model.PredictionResult
		if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
			t.Fatalf("invalid json: %v", err)
		}
		if result.ModelUsed != "LinearRegression" || result.PredictedCO2 != want {
			t.Errorf("expected %v from the loaded artifact, got %+v", want, result)
		}
	}
	if shared.Len() != 2 {
		t.Errorf("expected one entry per artifact, got %d", shared.Len())
	}
}

func TestPredictHandler_OverflowingNumber(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	var messages []string
	for _, body := range []string{
		`{"latitude": 1e400, "longitude": 10}`,
		`{"latitude": "1e400", "longitude": 10}`,
	} {
		w := env.do(http.MethodPost, "/api/predict", body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, w.Code)
		}
		var resp model.ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		messages = append(messages, resp.Error)
	}
	if messages[0] != messages[1] || !strings.Contains(messages[0], "NaN or Infinity") {
		t.Errorf("expected the non-finite error for both forms, got %q", messages)
	}

	w := env.do(http.MethodPost, "/api/predict/batch", `{"locations": [{"lat": 1e400, "lon": 10}]}`)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "NaN or Infinity") {
		t.Errorf("expected per-item non-finite error, got %d %s", w.Code, w.Body.String())
	}
}

func TestPredictBatchHandler(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	w := env.do(http.MethodPost, "/api/predict/batch",
		`{"locations": [{"latitude": 28.6, "longitude": 77.2}, {"lat": "abc", "lon": 77.2}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Count   int `json:"count"`
		Results []struct {
			Success      bool     `json:"success"`
			PredictedCO2 *float64 `json:"predicted_co2_emission"`
			Error        string   `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].Success || resp.Results[0].PredictedCO2 == nil {
		t.Errorf("expected first entry to succeed")
	}
	if resp.Results[1].Success || resp.Results[1].Error == "" || resp.Results[1].PredictedCO2 != nil {
		t.Errorf("expected second entry to fail without a value")
	}
}

func TestPredictBatchHandler_Limits(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	if w := env.do(http.MethodPost, "/api/predict/batch", `{"locations": []}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: expected 400, got %d", w.Code)
	}

	items := make([]string, predictor.MaxBatchSize+1)
	for i := range items {
		items[i] = `{"latitude": 1, "longitude": 2}`
	}
	body := `{"locations": [` + strings.Join(items, ",") + `]}`
	if w := env.do(http.MethodPost, "/api/predict/batch", body); w.Code != http.StatusBadRequest {
		t.Errorf("oversized batch: expected 400, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	env := newTestEnv(t, false, nil, RouterOptions{Limiter: limiter})

	body := `{"latitude": 10, "longitude": 10}`
	for i := 0; i < 2; i++ {
		if w := env.do(http.MethodPost, "/api/predict", body); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if w := env.do(http.MethodPost, "/api/predict", body); w.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", w.Code)
	}

	// 其他接口不受限流影响
	if w := env.do(http.MethodGet, "/api/model", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200 for model info, got %d", w.Code)
	}
}

func TestRateLimit_IgnoresForwardedFor(t *testing.T) {
	limiter := NewRateLimiter(2, time.Minute)
	defer limiter.Stop()
	env := newTestEnv(t, false, nil, RouterOptions{Limiter: limiter})

	body := `{"latitude": 10, "longitude": 10}`
	var codes []int
	for i := 1; i <= 5; i++ {
		w := env.do(http.MethodPost, "/api/predict", body, "X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i))
		codes = append(codes, w.Code)
	}
	want := []int{200, 200, 429, 429, 429}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, codes)
		}
	}

	// httptest 请求的连接地址是 192.0.2.1
	for _, rec := range env.store.saved {
		if rec.IPAddress == nil || *rec.IPAddress != "192.0.2.1" {
			t.Errorf("expected connection address to be recorded, got %v", rec.IPAddress)
		}
	}
}

func TestTrustedProxies(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{TrustedProxies: []string{"192.0.2.0/24"}})

	w := env.do(http.MethodPost, "/api/predict", `{"latitude": 10, "longitude": 10}`, "X-Forwarded-For", "203.0.113.7")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if rec := env.store.saved[0]; rec.IPAddress == nil || *rec.IPAddress != "203.0.113.7" {
		t.Errorf("expected forwarded address from a trusted proxy, got %v", rec.IPAddress)
	}

	h := New(linearService(t, 0.5), nil, nil, "secret")
	if err := NewRouter(gin.New(), h, RouterOptions{TrustedProxies: []string{"not-an-ip"}}); err == nil {
		t.Errorf("expected error for invalid proxy")
	}
}

func TestLoginAndAdmin(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})
	hash, err := utils.HashPassword("admin123")
	if err != nil {
		t.Fatal(err)
	}
	env.store.users["admin"] = &model.User{Username: "admin", Password: hash}

	if w := env.do(http.MethodGet, "/api/admin/predictions", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}
	if w := env.do(http.MethodPost, "/api/login", `{"username": "admin", "password": "nope"}`); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong password, got %d", w.Code)
	}

	w := env.do(http.MethodPost, "/api/login", `{"username": "admin", "password": "admin123"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil || login.Token == "" {
		t.Fatalf("expected token, got %s", w.Body.String())
	}
	auth := "Bearer " + login.Token

	env.do(http.MethodPost, "/api/predict", `{"latitude": 10, "longitude": 10}`)

	w = env.do(http.MethodGet, "/api/admin/predictions?limit=10", "", "Authorization", auth)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var page struct {
		Count   int64                    `json:"count"`
		Results []model.PredictionRecord `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if page.Count != 1 || len(page.Results) != 1 {
		t.Errorf("expected one record, got %+v", page)
	}
	if strings.Contains(w.Body.String(), "user_agent") {
		t.Errorf("requester metadata must not be exposed")
	}

	if w := env.do(http.MethodGet, "/api/admin/stats", "", "Authorization", auth); w.Code != http.StatusOK {
		t.Errorf("expected 200 for stats, got %d", w.Code)
	}

	w = env.do(http.MethodPost, "/api/admin/locations",
		`{"id": 1, "city_name": "Jaipur", "latitude": 26.9124, "longitude": 75.7873}`, "Authorization", auth)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if saved := env.store.locations[len(env.store.locations)-1]; saved.ID != 0 || saved.Country != "India" {
		t.Errorf("expected client id to be dropped and country defaulted, got %+v", saved)
	}
	if w := env.do(http.MethodGet, "/api/locations/Jaipur", ""); w.Code != http.StatusOK {
		t.Errorf("expected new location to be visible, got %d", w.Code)
	}

	if w := env.do(http.MethodGet, "/api/admin/stats", "", "Authorization", "Bearer garbage"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", w.Code)
	}
}

func TestLocationsAndMetrics(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	if w := env.do(http.MethodGet, "/api/locations", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/api/locations/Atlantis", ""); w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	w := env.do(http.MethodGet, "/api/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "XGBoost") {
		t.Errorf("expected metrics, got %d %s", w.Code, w.Body.String())
	}
}

func TestWithoutStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := predictor.NewService(&algo.Model{TypeName: "Ridge", Regressor: &countingRegressor{value: 1}}, nil)
	r := gin.New()
	if err := NewRouter(r, New(svc, nil, nil, "secret"), RouterOptions{}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"latitude": 1, "longitude": 2}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("prediction must work without persistence, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/metrics", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestPages(t *testing.T) {
	env := newTestEnv(t, false, nil, RouterOptions{})

	if w := env.do(http.MethodGet, "/", ""); w.Code != http.StatusFound {
		t.Errorf("expected redirect, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/dashboard", ""); w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w := env.do(http.MethodGet, "/ping", ""); !strings.Contains(w.Body.String(), "pong") {
		t.Errorf("expected pong, got %s", w.Body.String())
	}
	if w := env.do(http.MethodOptions, "/api/predict", ""); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
}
