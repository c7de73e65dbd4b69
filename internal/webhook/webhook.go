// Package webhook receives GitHub push events and turns each pushed commit
// into a documentation update task.
package webhook

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fyrsmithlabs/docsmith/internal/config"
	"github.com/fyrsmithlabs/docsmith/internal/logging"
	"github.com/fyrsmithlabs/docsmith/internal/orchestrator"
	"github.com/fyrsmithlabs/docsmith/internal/task"
)

// validSHARegex is the shape check for commit SHAs arriving in webhook
// payloads.
var validSHARegex = regexp.MustCompile(`^[0-9a-f]{40}$`)

// TaskRunner runs one documentation task to completion.
type TaskRunner interface {
	Run(ctx context.Context, t task.DocumentationTask) (*orchestrator.Outcome, error)
}

// Handler validates GitHub webhook deliveries and dispatches update tasks.
// Dispatch is asynchronous: GitHub expects a prompt response, and a pipeline
// run takes far longer than a webhook timeout.
type Handler struct {
	runner  TaskRunner
	secret  config.Secret
	spaceID string
	logger  *logging.Logger

	mu           sync.Mutex
	rateLimiters map[string]*rate.Limiter
	lastCleanup  time.Time
}

// NewHandler creates a webhook handler dispatching into the given runner.
func NewHandler(runner TaskRunner, secret config.Secret, spaceID string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		runner:  runner,
		secret:  secret,
		spaceID: spaceID,
		logger:  logger.Named("webhook"),
	}
}

// Handle processes one webhook delivery. Push events are accepted with 202;
// other event types are acknowledged and ignored.
func (h *Handler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	clientIP := clientIP(c.Request())
	if !h.limiter(clientIP).Allow() {
		h.logger.Warn(ctx, "rate limit exceeded", zap.String("ip", clientIP))
		return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
	}

	// Cap the payload at 1MB.
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, 1<<20)

	payload, err := github.ValidatePayload(c.Request(), []byte(h.secret.Value()))
	if err != nil {
		h.logger.Warn(ctx, "invalid webhook signature", zap.Error(err))
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid signature"})
	}

	event, err := github.ParseWebHook(github.WebHookType(c.Request()), payload)
	if err != nil {
		h.logger.Warn(ctx, "failed to parse webhook", zap.Error(err))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	switch e := event.(type) {
	case *github.PushEvent:
		dispatched := h.handlePush(ctx, e)
		return c.JSON(http.StatusAccepted, map[string]any{
			"status":     "accepted",
			"dispatched": dispatched,
		})
	default:
		h.logger.Debug(ctx, "ignoring event type", zap.String("type", github.WebHookType(c.Request())))
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}
}

// handlePush dispatches one update task per pushed commit and returns how
// many were started. Commits with malformed SHAs are skipped, not fatal: one
// bad commit in a push must not block the rest.
func (h *Handler) handlePush(ctx context.Context, event *github.PushEvent) int {
	dispatched := 0
	for _, commit := range event.Commits {
		sha := commit.GetID()
		if !validSHARegex.MatchString(sha) {
			h.logger.Warn(ctx, "skipping commit with malformed sha", zap.String("sha", sha))
			continue
		}

		t := task.NewUpdate(h.spaceID, sha, "")
		h.logger.Info(ctx, "dispatching update task",
			zap.String("commit", sha),
			zap.String("repo", event.GetRepo().GetFullName()),
		)

		go func() {
			// The request context dies with the HTTP response; the run
			// gets its own.
			runCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			outcome, err := h.runner.Run(runCtx, t)
			if err != nil {
				h.logger.Error(runCtx, "webhook-triggered task failed",
					zap.String("task_id", t.ID),
					zap.Error(err),
				)
				return
			}
			h.logger.Info(runCtx, "webhook-triggered task finished",
				zap.String("task_id", t.ID),
				zap.Bool("success", outcome.Success),
				zap.String("page_id", outcome.PageID),
			)
		}()
		dispatched++
	}
	return dispatched
}

// limiter returns the per-IP rate limiter: 60 requests per minute with a
// burst of 10. The map is rebuilt hourly so dead IPs do not accumulate.
func (h *Handler) limiter(ip string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.rateLimiters == nil || time.Since(h.lastCleanup) > time.Hour {
		h.rateLimiters = make(map[string]*rate.Limiter)
		h.lastCleanup = time.Now()
	}

	limiter, ok := h.rateLimiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(1), 10)
		h.rateLimiters[ip] = limiter
	}
	return limiter
}

// clientIP extracts the client address, preferring proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return ip
	}
	return r.RemoteAddr
}
