package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mindwell-ai/mindwell/internal/domain"
	"github.com/mindwell-ai/mindwell/internal/feedback"
	"github.com/mindwell-ai/mindwell/internal/logger"
	chatuc "github.com/mindwell-ai/mindwell/internal/usecase/chat"
	healthuc "github.com/mindwell-ai/mindwell/internal/usecase/health"
)

type fakeRetriever struct {
	matches []domain.Match
	err     error
}

func (f *fakeRetriever) Query(_ context.Context, _ string, _ int) ([]domain.Match, error) {
	return f.matches, f.err
}

type fakeGenerator struct {
	reply string
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, _ domain.GenerationRequest) (string, error) {
	return f.reply, f.err
}

func healthyCheck(_ context.Context) error { return nil }

func newTestRouter(t *testing.T, retriever *fakeRetriever, generator *fakeGenerator) http.Handler {
	t.Helper()

	fb, err := feedback.NewStore(filepath.Join(t.TempDir(), "feedback.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fb.Close() })

	chatSvc := chatuc.New(retriever, generator, nil)
	healthSvc := healthuc.New().WithCheck("database", healthuc.CheckerFunc(healthyCheck))

	server := NewServer(chatSvc, fb, healthSvc, zap.NewNop())
	r := chi.NewRouter()
	server.Routes(r)
	return r
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChat_OK(t *testing.T) {
	retriever := &fakeRetriever{matches: []domain.Match{
		{Text: "grounding passage", Source: "guide-1", Score: 0.9},
	}}
	generator := &fakeGenerator{reply: "Here is something that might help."}
	router := newTestRouter(t, retriever, generator)

	rec := postJSON(t, router, "/api/v1/chat", map[string]any{
		"message": "I can't sleep",
		"history": []string{"hi"},
		"persona": "companion",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Response != generator.reply {
		t.Errorf("response = %q", resp.Response)
	}
	if resp.Persona != "companion" {
		t.Errorf("persona = %q", resp.Persona)
	}
	if len(resp.Sources) != 1 || resp.Sources[0] != "guide-1" {
		t.Errorf("sources = %v", resp.Sources)
	}
}

func TestChat_MissingMessage(t *testing.T) {
	router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	rec := postJSON(t, router, "/api/v1/chat", map[string]any{"persona": "professional"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChat_MalformedBody(t *testing.T) {
	router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestChat_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		genErr     error
		wantStatus int
		wantCode   string
	}{
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited},
		{"provider error", domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeProviderError},
		{"generation failed", domain.ErrGenerationFailed, http.StatusBadGateway, codeGenerationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{err: tt.genErr})

			rec := postJSON(t, router, "/api/v1/chat", map[string]any{
				"message": "hello",
				"persona": "professional",
			})

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
		})
	}
}

func TestFeedback_OK(t *testing.T) {
	router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	rec := postJSON(t, router, "/api/v1/feedback", map[string]any{
		"feedback": "like",
		"message":  "That helped, thanks",
		"history":  []string{"hi"},
		"persona":  "yap",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp feedbackResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.ID == "" {
		t.Error("feedback id is empty")
	}
}

func TestFeedback_InvalidRating(t *testing.T) {
	router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	rec := postJSON(t, router, "/api/v1/feedback", map[string]any{
		"feedback": "meh",
		"message":  "text",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Status string                          `json:"status"`
		Checks map[string]healthuc.CheckResult `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != string(healthuc.Healthy) {
		t.Errorf("status = %q", body.Status)
	}
	if body.Checks["database"] != healthuc.CheckOK {
		t.Errorf("database check = %q", body.Checks["database"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, &fakeRetriever{}, &fakeGenerator{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestChat_UsesRequestScopedLogger(t *testing.T) {
	core, observed := observer.New(zapcore.WarnLevel)
	requestLogger := zap.New(core)

	fb, err := feedback.NewStore(filepath.Join(t.TempDir(), "feedback.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { fb.Close() })

	chatSvc := chatuc.New(&fakeRetriever{}, &fakeGenerator{err: errors.New("boom")}, nil)
	healthSvc := healthuc.New().WithCheck("database", healthuc.CheckerFunc(healthyCheck))
	server := NewServer(chatSvc, fb, healthSvc, zap.NewNop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := logger.ContextWithLogger(req.Context(), requestLogger)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	server.Routes(r)

	rec := postJSON(t, r, "/api/v1/chat", map[string]any{"message": "hello"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	if observed.FilterMessage("domain error").Len() != 1 {
		t.Errorf("domain error not logged via request-scoped logger; captured: %v", observed.All())
	}
	if observed.FilterMessage("internal error").Len() != 1 {
		t.Errorf("internal error not logged via request-scoped logger")
	}
}
