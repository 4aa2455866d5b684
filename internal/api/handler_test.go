package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rfpforge/rfpforge/internal/config"
	"github.com/rfpforge/rfpforge/internal/coordinator"
	"github.com/rfpforge/rfpforge/internal/domain"
	"github.com/rfpforge/rfpforge/internal/storage"
	"github.com/rfpforge/rfpforge/internal/worker"
)

type stubWorker struct{ reply string }

func (w stubWorker) Handle(context.Context, string) (string, error) { return w.reply, nil }

type stubClassifier struct{ decision domain.RoutingDecision }

func (c stubClassifier) Classify(context.Context, string) domain.RoutingDecision {
	return c.decision
}

type stubExtractor struct{}

func (stubExtractor) Extract(context.Context, string) (string, error) { return "doc text", nil }

type stubRenderer struct{ path string }

func (r stubRenderer) Render(context.Context, string, []coordinator.Section, string) (string, error) {
	return r.path, nil
}

func testRouter(t *testing.T, apiKey string) (*gin.Engine, *storage.Facade) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	facade := &storage.Facade{
		Objects:  storage.NewMemoryObjectStore(),
		Sessions: storage.NewMemorySessionStore(),
	}
	registry := worker.NewRegistry([]worker.Spec{
		{Name: "content", Description: "proposal writing", Worker: stubWorker{reply: "generated section"}},
	})
	coord := coordinator.New(coordinator.Options{
		Registry:  registry,
		Router:    stubClassifier{decision: domain.RoutingDecision{Section: "general", Worker: "content", Rationale: "r"}},
		Facade:    facade,
		Extractor: stubExtractor{},
		Renderer:  stubRenderer{path: "/out/proposal.docx"},
		Logger:    zap.NewNop(),
		Config: config.CoordinatorConfig{
			RequestTimeoutSeconds: 30,
			SourcePreviewChars:    1000,
			SectionPreviewChars:   500,
			SnapshotEntryChars:    1000,
		},
	})

	r := SetupRouter(coord, facade, zap.NewNop(), RouterConfig{
		APIKey:      apiKey,
		Environment: config.EnvLocal,
		UploadDir:   t.TempDir(),
	})
	return r, facade
}

func doJSON(r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func multipartWriter(t *testing.T, buf *bytes.Buffer, fields map[string]string, fileField, fileName, fileBody string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile(fileField, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(fileBody))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}

func TestHealth(t *testing.T) {
	r, _ := testRouter(t, "")

	w := doJSON(r, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "local", body["environment"])
}

func TestProcessReturnsEnvelope(t *testing.T) {
	r, facade := testRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/v1/process", gin.H{"text": "Write the summary"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var env domain.ResultEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "general", env.Section)
	assert.Equal(t, "content", env.Agent)
	assert.Equal(t, "generated section", env.Output)
	require.NotEmpty(t, env.SessionID)

	snap, err := facade.Sessions.GetSession(context.Background(), env.SessionID)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ProposalState["general"])
}

func TestProcessRejectsMissingText(t *testing.T) {
	r, _ := testRouter(t, "")

	w := doJSON(r, http.MethodPost, "/api/v1/process", gin.H{"session_id": "s"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessMultipartUpload(t *testing.T) {
	r, _ := testRouter(t, "")

	var buf bytes.Buffer
	mw := multipartWriter(t, &buf, map[string]string{"text": "Summarize this"}, "file", "rfp.txt", "rfp body")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/process", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var env domain.ResultEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "generated section", env.Output)
	assert.Contains(t, env.Reasoning.ProcessingSteps[0], "completed successfully")
}

func TestGetSession(t *testing.T) {
	r, facade := testRouter(t, "")
	require.NoError(t, facade.Sessions.PutSession(context.Background(), "sess-1", &domain.Snapshot{
		ProposalState: map[string]string{"general": "content"},
	}))

	w := doJSON(r, http.MethodGet, "/api/v1/sessions/sess-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "sess-1", snap.SessionID)

	w = doJSON(r, http.MethodGet, "/api/v1/sessions/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompileEndpoint(t *testing.T) {
	r, facade := testRouter(t, "")
	require.NoError(t, facade.Sessions.PutSession(context.Background(), "sess-1", &domain.Snapshot{
		ProposalState: map[string]string{"general": "content"},
	}))

	w := doJSON(r, http.MethodPost, "/api/v1/sessions/sess-1/compile", gin.H{"format": "docx"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/out/proposal.docx")

	w = doJSON(r, http.MethodPost, "/api/v1/sessions/missing/compile", gin.H{"format": "docx"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/sessions/sess-1/compile", gin.H{"format": "html"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadContent(t *testing.T) {
	r, facade := testRouter(t, "")
	require.NoError(t, facade.Objects.PutBlob(context.Background(), "sessions/s/k", []byte("stored output"), "text/plain", nil))

	w := doJSON(r, http.MethodPost, "/api/v1/content", gin.H{"content_key": "sessions/s/k"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stored output")

	w = doJSON(r, http.MethodPost, "/api/v1/content", gin.H{"content_key": "missing"}, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuth(t *testing.T) {
	r, _ := testRouter(t, "secret")

	w := doJSON(r, http.MethodPost, "/api/v1/process", gin.H{"text": "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/process", gin.H{"text": "hi"},
		map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodPost, "/api/v1/process", gin.H{"text": "hi"},
		map[string]string{"Authorization": "Bearer secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	// Health stays open.
	w = doJSON(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
