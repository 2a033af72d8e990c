package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"issue-classifier/internal/domain/entity"
	"issue-classifier/internal/logging"
)

// Service is the application surface the HTTP handlers need.
type Service interface {
	ModelLoaded() bool
	DescriptionEnabled() bool
	IssueTypes() []entity.TaxonomyEntry
	ClassifyURL(ctx context.Context, url string) (*entity.ClassificationVerdict, error)
	ClassifyBytes(ctx context.Context, data []byte) (*entity.ClassificationVerdict, error)
	DescribeURL(ctx context.Context, url string, issue entity.IssueType) (string, error)
}

type Server struct {
	svc           Service
	maxUploadSize int64
	log           *slog.Logger
	srv           *http.Server
}

func NewServer(addr string, svc Service, maxUploadSize int64) *Server {
	s := &Server{
		svc:           svc,
		maxUploadSize: maxUploadSize,
		log:           logging.New("rest"),
	}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(s.log), cors())

	r.GET("/health", s.health)
	r.GET("/issue-types", s.issueTypes)
	r.POST("/classify", s.classify)
	r.POST("/generate-description", s.generateDescription)
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.srv.Addr)
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

// statusFor maps an application error to an HTTP status.
func statusFor(err error) int {
	switch {
	case entity.IsInputError(err):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrDescriberUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "error", err)
	}
	c.JSON(status, errorResponse{Success: false, Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Success: false, Error: msg})
}
