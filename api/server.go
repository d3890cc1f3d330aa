package api

import (
	"datapulse/app"
	"datapulse/internal"
	"datapulse/internal/pipeline"
	"datapulse/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server is the public HTTP surface: spreadsheet upload, analysis runs and
// run retrieval. It owns no analysis state; everything goes through the
// analysis service.
type Server struct {
	engine  *gin.Engine
	service *app.AnalysisService
	reader  ports.TableReader
	opts    pipeline.Options
	log     *internal.Logger
}

// NewServer wires the router
func NewServer(service *app.AnalysisService, reader ports.TableReader, opts pipeline.Options, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		engine:  engine,
		service: service,
		reader:  reader,
		opts:    opts,
		log:     logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)

	api := s.engine.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)
}

// Start blocks serving the API
func (s *Server) Start(port string) error {
	s.log.Info("api listening on :%s", port)
	return s.engine.Run(":" + port)
}
