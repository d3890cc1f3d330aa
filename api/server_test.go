package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datapulse/adapters/excel"
	"datapulse/adapters/llm"
	"datapulse/app"
	"datapulse/internal/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	service := app.NewAnalysisService(pipeline.NewOrchestrator(nil), nil, &llm.HeuristicNarrative{}, nil)
	return NewServer(service, excel.NewTableReader(), pipeline.DefaultOptions(), nil)
}

func multipartCSV(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func salesCSV() string {
	var b strings.Builder
	b.WriteString("id,category,amount\n")
	for i := 1; i <= 30; i++ {
		category := "A"
		if i%10 == 0 {
			category = "B"
		}
		amount := 50.0 + float64(i%7)
		if i >= 28 {
			amount *= 100
		}
		fmt.Fprintf(&b, "%d,%s,%.2f\n", i, category, amount)
	}
	return b.String()
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestUpload_CSV(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartCSV(t, "sales.csv", salesCSV())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Report struct {
			RunID    string `json:"run_id"`
			Filename string `json:"filename"`
			Summary  struct {
				Rows    int `json:"rows"`
				Columns int `json:"columns"`
			} `json:"summary"`
		} `json:"report"`
		NarrativeHTML string `json:"narrative_html"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.NotEmpty(t, resp.Report.RunID)
	assert.Equal(t, "sales.csv", resp.Report.Filename)
	assert.Equal(t, 30, resp.Report.Summary.Rows)
	assert.Equal(t, 3, resp.Report.Summary.Columns)
	assert.Contains(t, resp.NarrativeHTML, "<h2")
}

func TestUpload_RejectsUnsupportedExtension(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartCSV(t, "data.json", "{}")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only xlsx, xls and csv")
}

func TestUpload_MissingFileField(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(""))
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_MalformedCSVIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	body, contentType := multipartCSV(t, "broken.csv", "a,b\n\"unclosed,1\n")

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs/does-not-exist", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRuns_EmptyWithoutStore(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "runs")
}

func TestRenderMarkdown(t *testing.T) {
	html := renderMarkdown("## Summary\n\n- **finding** one\n")
	assert.Contains(t, html, "<h2")
	assert.Contains(t, html, "<strong>finding</strong>")
}
