// Package httpapi exposes the scoring and calling workflows over HTTP.
// Every handler is an error boundary: failures below it become a JSON
// {"error": ...} response and provider errors are logged, never echoed.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amishk599/hirecall/internal/ats"
	"github.com/amishk599/hirecall/internal/calls"
	"github.com/amishk599/hirecall/internal/model"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Deps are the components the handlers call into.
type Deps struct {
	Scorer       *ats.Scorer
	Intake       *ats.Intake
	Shortlister  *ats.Shortlister
	Orchestrator *calls.Orchestrator
	Calls        model.CallStore
	Jobs         model.JobPostStore
	// Limiters are keyed by route name, e.g. "apply-for-job". Routes
	// without an entry are not limited.
	Limiters       map[string]Limiter
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type handler struct {
	Deps
}

// NewRouter builds the gin engine serving the /api routes.
func NewRouter(d Deps) *gin.Engine {
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 10 << 20
	}
	h := &handler{Deps: d}

	r := gin.New()
	r.MaxMultipartMemory = d.MaxUploadBytes
	r.Use(requestLogger(d.Logger), recovery(d.Logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/ats-score-application", h.scoreApplication)
	api.POST("/check-ats-score", h.limit("check-ats-score"), h.checkATSScore)
	api.POST("/apply-for-job", h.limit("apply-for-job"), h.applyForJob)
	api.POST("/check-email-applied", h.checkEmailApplied)
	api.POST("/manual-ats-check", h.manualATSCheck)
	api.POST("/shortlist-candidate", h.shortlistCandidate)
	api.POST("/send-shortlist-email", h.sendShortlistEmail)

	api.POST("/create-initial-calls", h.createInitialCalls)
	api.POST("/register-initial-call", h.registerInitialCall)
	api.POST("/get-initial-call", h.getInitialCall)
	api.POST("/webhook-call-completed", h.webhookCallCompleted)
	api.GET("/initial-call-config", h.getCallConfig)
	api.POST("/initial-call-config", h.upsertCallConfig)
	api.GET("/initial-calls", h.listInitialCalls)
	api.POST("/update-initial-call", h.updateInitialCall)

	return r
}
