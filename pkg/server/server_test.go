package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pacer/pkg/repository"
	"github.com/m-mizutani/pacer/pkg/server"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"github.com/m-mizutani/pacer/pkg/usecase/coach"
	"google.golang.org/genai"
)

// stubGemini classifies everything as having no intent and replies with a
// fixed sentence, which is enough to exercise the HTTP layer.
type stubGemini struct{}

func (stubGemini) GenerateContent(ctx context.Context, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	text := "stub reply"
	if config != nil && config.ResponseMIMEType == "application/json" {
		text = `{"training_goal": "", "event_info": ""}`
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}, nil
}

func (stubGemini) GenerateWithSearch(ctx context.Context, contents []*genai.Content, systemPrompt string) (string, error) {
	return "stub search reply", nil
}

func (stubGemini) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0}
	}
	return vectors, nil
}

func (stubGemini) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func newTestServer(t *testing.T, staticDir string) *server.Server {
	t.Helper()
	store := repository.NewLocal(t.TempDir(), "test_chat")
	gt.NoError(t, store.Recreate(context.Background()))

	c := coach.New(coach.NewInput{
		Gemini:    stubGemini{},
		Retriever: archive.NewRetriever(stubGemini{}, store),
		Sessions:  coach.NewStore(),
	})
	return server.New(c, store, staticDir, 8000)
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	rec := postJSON(t, srv.Handler(), "/chat", map[string]string{"message": "hello"})
	gt.Equal(t, rec.Code, http.StatusOK)

	var resp struct {
		Response  string `json:"response"`
		SessionID string `json:"session_id"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	gt.Equal(t, resp.Response, "stub reply")
	gt.True(t, resp.SessionID != "")

	// A second request with the session id continues the same session.
	rec = postJSON(t, srv.Handler(), "/chat", map[string]string{
		"message":    "again",
		"session_id": resp.SessionID,
	})
	gt.Equal(t, rec.Code, http.StatusOK)

	var resp2 struct {
		SessionID string `json:"session_id"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp2))
	gt.Equal(t, resp2.SessionID, resp.SessionID)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t, "")

	rec := postJSON(t, srv.Handler(), "/chat", map[string]string{"message": ""})
	gt.Equal(t, rec.Code, http.StatusBadRequest)

	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader([]byte("not json")))
	rec2 := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec2, req)
	gt.Equal(t, rec2.Code, http.StatusBadRequest)
}

func TestResetEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	rec := postJSON(t, srv.Handler(), "/chat", map[string]string{"message": "hello"})
	var resp struct {
		SessionID string `json:"session_id"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = postJSON(t, srv.Handler(), "/reset", map[string]string{"session_id": resp.SessionID})
	gt.Equal(t, rec.Code, http.StatusOK)

	rec = postJSON(t, srv.Handler(), "/reset", map[string]string{})
	gt.Equal(t, rec.Code, http.StatusBadRequest)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	gt.Equal(t, rec.Code, http.StatusOK)

	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
		VectorDB string `json:"vector_db"`
		Vectors  int    `json:"vectors"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	gt.Equal(t, health.Status, "healthy")
	gt.Equal(t, health.VectorDB, "available")
	gt.Equal(t, health.Vectors, 0)
}

func TestIndexServesStaticPage(t *testing.T) {
	staticDir := t.TempDir()
	page := []byte("<html><body>pacer</body></html>")
	gt.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), page, 0644))

	srv := newTestServer(t, staticDir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("pacer")
}

func TestIndexWithoutStaticDir(t *testing.T) {
	srv := newTestServer(t, "")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	gt.Equal(t, rec.Code, http.StatusNotFound)
}
