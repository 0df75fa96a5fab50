// Package server exposes the tracker views as a JSON API over gin.
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ALT-F4-LLC/tracker/internal/auth"
	"github.com/ALT-F4-LLC/tracker/internal/dashboard"
	"github.com/ALT-F4-LLC/tracker/internal/db"
)

// Options configure the handlers.
type Options struct {
	// Env "dev" keeps gin in debug mode; anything else selects release mode.
	Env       string
	PageSize  int
	Dashboard dashboard.Options
}

// NewRouter builds the engine with every route registered.
func NewRouter(store db.Store, sessions auth.Provider, log zerolog.Logger, opts Options) *gin.Engine {
	if opts.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	h := NewHandlers(store, sessions, log, opts)

	r.GET("/healthz", h.Healthz)

	api := r.Group("/api")
	api.GET("/dashboard", h.Dashboard)
	api.GET("/board", h.Board)
	api.POST("/board/move", h.requireSession, h.MoveOnBoard)

	issues := api.Group("/issues")
	// ?status=&q=&sort=&dir=; sort alone means ascending, see listParams.
	issues.GET("", h.ListIssues)
	issues.GET("/recent", h.RecentIssues)
	issues.POST("", h.requireSession, h.CreateIssue)
	issues.GET("/:id", h.GetIssue)
	issues.PATCH("/:id", h.requireSession, h.EditIssue)
	issues.PUT("/:id/status", h.requireSession, h.ChangeStatus)
	issues.DELETE("/:id", h.requireSession, h.DeleteIssue)
	issues.GET("/:id/comments", h.ListComments)
	issues.POST("/:id/comments", h.requireSession, h.AddComment)

	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := log.Info()
		if c.Writer.Status() >= 500 {
			ev = log.Error()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("http")
	}
}
