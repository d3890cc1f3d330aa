package ops

import (
	"net/http"
	"net/http/pprof"

	"datapulse/internal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the internal ops listener: liveness probe plus pprof handlers.
// It runs beside the public API on its own port and is only started when
// profiling is enabled.
type Server struct {
	router *chi.Mux
	log    *internal.Logger
}

// NewServer builds the ops router
func NewServer(logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.DefaultLogger
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/debug/pprof/", pprof.Index)
	r.Get("/debug/pprof/cmdline", pprof.Cmdline)
	r.Get("/debug/pprof/profile", pprof.Profile)
	r.Get("/debug/pprof/symbol", pprof.Symbol)
	r.Get("/debug/pprof/trace", pprof.Trace)
	r.Handle("/debug/pprof/{name}", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		pprof.Handler(chi.URLParam(req, "name")).ServeHTTP(w, req)
	}))

	return &Server{router: r, log: logger}
}

// Start blocks serving the ops endpoints
func (s *Server) Start(port string) error {
	s.log.Info("ops listener on :%s", port)
	return http.ListenAndServe(":"+port, s.router)
}
