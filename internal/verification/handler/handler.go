// Package handler exposes the verification trigger endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/moderation"
	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	"veridoc/internal/submission"
	"veridoc/pkg/domain"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/httputil"
)

// Service runs the verification pipeline.
type Service interface {
	Verify(ctx context.Context, submissionID domain.SubmissionID) (moderation.Record, error)
}

// SubmissionAccess enforces the owner-or-reviewer read boundary before the
// pipeline runs.
type SubmissionAccess interface {
	Get(ctx context.Context, id domain.SubmissionID, actorID, role string) (submission.Submission, error)
}

// Handler handles the verification endpoint.
type Handler struct {
	logger       *slog.Logger
	pipeline     Service
	submissions  SubmissionAccess
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new verification Handler.
func New(
	pipeline Service,
	submissions SubmissionAccess,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		pipeline:     pipeline,
		submissions:  submissions,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the verification route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Device)
		router.Use(middleware.Logger(h.logger))
		// The extraction hop dominates; budget more than the default read timeout.
		router.Use(middleware.Timeout(60 * time.Second))
		router.Use(middleware.LatencyMiddleware(h.metrics))
		router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		router.Post("/submissions/{submissionID}/verify", h.handleVerify)
	})
}

type verifyResponse struct {
	SubmissionID string `json:"submission_id"`
	Status       string `json:"status"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	submissionID, err := domain.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	// Owner-or-reviewer boundary; the pipeline itself does not authorize.
	if _, err := h.submissions.Get(ctx, submissionID, middleware.GetUserID(ctx), middleware.GetRole(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	record, err := h.pipeline.Verify(ctx, submissionID)
	if err != nil {
		h.logger.WarnContext(ctx, "verification pipeline failed",
			"request_id", requestID,
			"submission_id", submissionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if middleware.GetRole(ctx) == middleware.RoleReviewer {
		httputil.WriteJSON(w, http.StatusCreated, moderation.NewReviewerView(record))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, verifyResponse{
		SubmissionID: record.SubmissionID.String(),
		Status:       record.DerivedStatus(),
	})
}
