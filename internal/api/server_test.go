package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"

	"github.com/nerrad567/gray-logic-extensions/internal/auth"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-extensions/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-extensions/internal/plugin"
	"github.com/nerrad567/gray-logic-extensions/internal/sdk"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

// MockManager implements sdk.DeviceManager.
type MockManager struct{}

func (MockManager) OnMixinEvent(context.Context, string, sdk.Interface, any) error { return nil }

func (MockManager) DeviceState(string) (sdk.DeviceState, error) {
	return sdk.DeviceState{}, sdk.ErrDeviceNotFound
}

// MockStorage implements sdk.Storage in memory.
type MockStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func (s *MockStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MockStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MockStorage) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MockStorage) Keys(context.Context) ([]string, error) { return nil, nil }

// MockRecorder records setting writes.
type MockRecorder struct {
	mu      sync.Mutex
	changes []string
}

func (r *MockRecorder) RecordSettingChange(mixinID, key string) {
	r.mu.Lock()
	r.changes = append(r.changes, mixinID+"/"+key)
	r.mu.Unlock()
}

type testEnv struct {
	server   *Server
	provider *plugin.Provider
	recorder *MockRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "json", Output: "stderr"}, "test")
	store := &MockStorage{values: make(map[string]string)}

	provider, err := plugin.New(plugin.Config{
		NativeID: "graylogic-labels",
		Group:    "Labels",
		GroupKey: "labels",
		Manager:  MockManager{},
		Storage:  func(string) sdk.Storage { return store },
		Logger:   logger,
	})
	if err != nil {
		t.Fatalf("plugin.New() error = %v", err)
	}

	// A plain switch: no Settings interface of its own.
	_, err = provider.Attach(context.Background(), struct{}{}, sdk.DeviceState{
		ID:         "dev-1",
		NativeID:   "switch-hall",
		Name:       "Hall Switch",
		Interfaces: []sdk.Interface{sdk.InterfaceOnOff},
	})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	recorder := &MockRecorder{}
	srv, err := New(Deps{
		Security: config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}},
		Logger:   logger,
		Provider: provider,
		Recorder: recorder,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{server: srv, provider: provider, recorder: recorder}
}

func signToken(t *testing.T, secret string, role auth.Role, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "installer",
		"role": string(role),
		"exp":  expires.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return signed
}

func (e *testEnv) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var apiErr Error
	if err := json.NewDecoder(rec.Body).Decode(&apiErr); err != nil {
		t.Fatalf("decoding error body: %v", err)
	}
	return apiErr
}

func TestNew_Validation(t *testing.T) {
	env := newTestEnv(t)
	logger := logging.Default()
	sec := config.SecurityConfig{JWT: config.JWTConfig{Secret: testSecret}}

	tests := []struct {
		name string
		deps Deps
	}{
		{"missing logger", Deps{Provider: env.provider, Security: sec}},
		{"missing provider", Deps{Logger: logger, Security: sec}},
		{"missing secret", Deps{Logger: logger, Provider: env.provider}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.deps); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestHealth_NoAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["mixins"] != float64(1) {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header not set")
	}
}

func TestMetrics_NoAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "graylogic_extensions_mixins_active") {
		t.Error("metrics output missing graylogic_extensions_mixins_active")
	}
}

func TestAuth(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
		{"wrong secret", signToken(t, "another-secret-another-secret-xx", auth.RoleAdmin, time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"expired", signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(-time.Hour)), http.StatusUnauthorized},
		{"unknown role", signToken(t, testSecret, auth.Role("root"), time.Now().Add(time.Hour)), http.StatusUnauthorized},
		{"valid", signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(time.Hour)), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/v1/mixins", "", tt.token)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				if got := decodeError(t, rec).Code; got != ErrCodeUnauthorized {
					t.Errorf("code = %q, want %q", got, ErrCodeUnauthorized)
				}
			}
		})
	}
}

func TestPermissions(t *testing.T) {
	env := newTestEnv(t)
	env.server.storage = &MockStorageAdmin{ids: map[string]int64{}}
	env.server.handler = env.server.buildRouter()

	tests := []struct {
		name   string
		role   auth.Role
		method string
		path   string
		body   string
		want   int
	}{
		{"panel reads", auth.RolePanel, http.MethodGet, "/api/v1/mixins/dev-1/settings", "", http.StatusOK},
		{"panel cannot write", auth.RolePanel, http.MethodPut, "/api/v1/mixins/dev-1/settings", `{"key":"labels:room","value":"Hall"}`, http.StatusForbidden},
		{"user writes", auth.RoleUser, http.MethodPut, "/api/v1/mixins/dev-1/settings", `{"key":"labels:room","value":"Hall"}`, http.StatusOK},
		{"user cannot manage storage", auth.RoleUser, http.MethodGet, "/api/v1/storage", "", http.StatusForbidden},
		{"owner manages storage", auth.RoleOwner, http.MethodGet, "/api/v1/storage", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := signToken(t, testSecret, tt.role, time.Now().Add(time.Hour))
			rec := env.do(t, tt.method, tt.path, tt.body, token)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want == http.StatusForbidden {
				if got := decodeError(t, rec).Code; got != ErrCodeForbidden {
					t.Errorf("code = %q, want %q", got, ErrCodeForbidden)
				}
			}
		})
	}
}

func TestListMixins(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(time.Hour))

	rec := env.do(t, http.MethodGet, "/api/v1/mixins", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		Mixins []mixinSummary `json:"mixins"`
		Count  int            `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []mixinSummary{{
		ID:         "dev-1",
		NativeID:   "switch-hall",
		Name:       "Hall Switch",
		Group:      "Labels",
		Interfaces: []sdk.Interface{sdk.InterfaceOnOff},
	}}
	if diff := cmp.Diff(want, body.Mixins); diff != "" {
		t.Errorf("mixins mismatch (-want +got):\n%s", diff)
	}
	if body.Count != 1 {
		t.Errorf("count = %d, want 1", body.Count)
	}
}

func TestGetSettings(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(time.Hour))

	rec := env.do(t, http.MethodGet, "/api/v1/mixins/dev-1/settings", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body settingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var keys []string
	for _, s := range body.Settings {
		keys = append(keys, s.Key)
	}
	want := []string{"labels:alias", "labels:room", "labels:favourite"}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestGetSettings_UnknownMixin(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(time.Hour))

	rec := env.do(t, http.MethodGet, "/api/v1/mixins/nope/settings", "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != ErrCodeNotFound {
		t.Errorf("code = %q, want %q", got, ErrCodeNotFound)
	}
}

func TestPutSetting(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(time.Hour))

	rec := env.do(t, http.MethodPut, "/api/v1/mixins/dev-1/settings",
		`{"key":"labels:alias","value":"Front Door"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var body settingsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Settings) == 0 || body.Settings[0].Value != "Front Door" {
		t.Errorf("settings = %+v, want alias Front Door first", body.Settings)
	}

	if diff := cmp.Diff([]string{"dev-1/labels:alias"}, env.recorder.changes); diff != "" {
		t.Errorf("recorded changes mismatch (-want +got):\n%s", diff)
	}
}

func TestPutSetting_Errors(t *testing.T) {
	env := newTestEnv(t)
	token := signToken(t, testSecret, auth.RoleAdmin, time.Now().Add(time.Hour))

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"unknown mixin", "/api/v1/mixins/nope/settings", `{"key":"labels:alias","value":"x"}`, http.StatusNotFound, ErrCodeNotFound},
		{"bad json", "/api/v1/mixins/dev-1/settings", `{`, http.StatusBadRequest, ErrCodeBadRequest},
		{"empty key", "/api/v1/mixins/dev-1/settings", `{"value":"x"}`, http.StatusBadRequest, ErrCodeBadRequest},
		{"unknown mixin key", "/api/v1/mixins/dev-1/settings", `{"key":"labels:colour","value":"red"}`, http.StatusBadRequest, ErrCodeValidation},
		{"invalid value", "/api/v1/mixins/dev-1/settings", `{"key":"labels:favourite","value":"maybe"}`, http.StatusBadRequest, ErrCodeValidation},
		{"device without settings", "/api/v1/mixins/dev-1/settings", `{"key":"brightness","value":50}`, http.StatusBadRequest, ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPut, tt.path, tt.body, token)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if got := decodeError(t, rec).Code; got != tt.wantErr {
				t.Errorf("code = %q, want %q", got, tt.wantErr)
			}
		})
	}

	if len(env.recorder.changes) != 0 {
		t.Errorf("recorded changes = %v, want none", env.recorder.changes)
	}
}

func TestServer_StartClose(t *testing.T) {
	env := newTestEnv(t)
	env.server.cfg = config.APIConfig{Host: "127.0.0.1", Port: 0}

	if err := env.server.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start error = nil, want error")
	}

	if err := env.server.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + env.server.Addr() + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	if err := env.server.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := env.server.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
