// Package server exposes the processed table over a read-only HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oscarl77/tech-job-market-analysis/internal/filter"
	"github.com/oscarl77/tech-job-market-analysis/internal/models"
	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

// Reader is the slice of the store the API reads from.
type Reader interface {
	LoadProcessed(ctx context.Context) ([]models.ProcessedPosting, error)
	Ping(ctx context.Context) error
}

type Server struct {
	store  Reader
	logger *slog.Logger
	now    func() time.Time
	router *gin.Engine
}

func New(store Reader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{store: store, logger: logger, now: time.Now}
	s.router = s.routes()
	return s
}

// Handler returns the gin engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", s.health)
	r.GET("/postings", s.listPostings)
	r.GET("/stats", s.summary)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// maxAgeDaysLimit is about a century; larger values would overflow a time.Duration.
const maxAgeDaysLimit = 36500

// postingQuery holds the optional filters of GET /postings. Text filters are
// case-insensitive exact matches.
type postingQuery struct {
	Region     string `form:"region"`
	Seniority  string `form:"seniority"`
	City       string `form:"city"`
	Skill      string `form:"skill"`
	MaxAgeDays int    `form:"max_age_days"`
	Limit      int    `form:"limit"`
}

func (q postingQuery) matches(p models.ProcessedPosting, now time.Time) bool {
	if q.Region != "" && !strings.EqualFold(q.Region, p.Region) {
		return false
	}
	if q.Seniority != "" && !strings.EqualFold(q.Seniority, string(p.Seniority)) {
		return false
	}
	if q.City != "" && !strings.EqualFold(q.City, p.City) {
		return false
	}
	if q.Skill != "" && !hasSkill(p.Skills, q.Skill) {
		return false
	}
	maxAge := time.Duration(q.MaxAgeDays) * 24 * time.Hour
	return filter.IsRecent(p.DatePosted, now, maxAge)
}

func hasSkill(skills []string, want string) bool {
	for _, s := range skills {
		if strings.EqualFold(s, want) {
			return true
		}
	}
	return false
}

type postingResponse struct {
	SearchCategory      string   `json:"search_category"`
	JobTitle            string   `json:"job_title"`
	CompanyName         string   `json:"company_name"`
	Seniority           string   `json:"seniority"`
	SalaryNumeric       int      `json:"salary_numeric"`
	EmploymentTypeClean string   `json:"employment_type_clean"`
	City                string   `json:"city"`
	Region              string   `json:"region"`
	DatePosted          *string  `json:"date_posted"`
	Skills              []string `json:"skills"`
}

func toResponse(p models.ProcessedPosting) postingResponse {
	r := postingResponse{
		SearchCategory:      p.SearchCategory,
		JobTitle:            p.JobTitle,
		CompanyName:         p.CompanyName,
		Seniority:           string(p.Seniority),
		SalaryNumeric:       p.SalaryNumeric,
		EmploymentTypeClean: p.EmploymentTypeClean,
		City:                p.City,
		Region:              p.Region,
		Skills:              p.Skills,
	}
	if d, ok := p.DatePosted.Get(); ok {
		s := d.Format(time.DateOnly)
		r.DatePosted = &s
	}
	if r.Skills == nil {
		r.Skills = []string{}
	}
	return r
}

func (s *Server) listPostings(c *gin.Context) {
	var q postingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if q.MaxAgeDays < 0 || q.Limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_age_days and limit must not be negative"})
		return
	}
	if q.MaxAgeDays > maxAgeDaysLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("max_age_days must be at most %d", maxAgeDaysLimit)})
		return
	}

	postings, err := s.store.LoadProcessed(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to load processed postings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load postings"})
		return
	}

	now := s.now()
	out := make([]postingResponse, 0, len(postings))
	for _, p := range postings {
		if !q.matches(p, now) {
			continue
		}
		out = append(out, toResponse(p))
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "postings": out})
}

func (s *Server) summary(c *gin.Context) {
	top := 0
	if v := c.Query("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "top must be a non-negative integer"})
			return
		}
		top = n
	}

	postings, err := s.store.LoadProcessed(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to load processed postings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load postings"})
		return
	}
	c.JSON(http.StatusOK, stats.Summarize(postings, top))
}
