package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"datapulse/domain/analysis"
	"datapulse/domain/core"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// handleUpload accepts an xlsx/csv upload, runs the full pipeline on it and
// returns the report. The file-reading and analysis concerns stay separate:
// the reader produces a RawTable, the service does the rest.
func (s *Server) handleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xlsx" && ext != ".xls" && ext != ".csv" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only xlsx, xls and csv files are accepted"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	raw, err := s.reader.ReadFrom(f, fileHeader.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := s.service.Run(c.Request.Context(), raw, fileHeader.Filename, s.opts)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse(report))
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id := core.RunID(c.Param("id"))
	report, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportResponse(report))
}

func (s *Server) renderError(c *gin.Context, err error) {
	switch {
	case core.IsSchemaError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case core.IsTimeoutError(err):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrRunNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// reportResponse decorates the report with an HTML rendering of the
// markdown narrative for browser consumers.
func reportResponse(report *analysis.Report) gin.H {
	resp := gin.H{"report": report}
	if report.Narrative != "" {
		resp["narrative_html"] = renderMarkdown(report.Narrative)
	}
	return resp
}

func renderMarkdown(src string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return string(markdown.ToHTML([]byte(src), p, renderer))
}
