// Package handler exposes the moderation HTTP surface: the collaborator
// signals webhook and the audience-split moderation read.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"veridoc/internal/moderation"
	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	"veridoc/pkg/domain"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/audit"
	"veridoc/pkg/platform/httputil"
)

// Service defines the interface for moderation operations.
type Service interface {
	RecordSignals(ctx context.Context, submissionID domain.SubmissionID, face moderation.FaceMatchResult, liveliness moderation.LivelinessResult) error
	ForReviewer(ctx context.Context, submissionID domain.SubmissionID) (moderation.ReviewerView, error)
	ForOwner(ctx context.Context, submissionID domain.SubmissionID, actorID string) (moderation.OwnerView, error)
}

// AuditPublisher emits audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Handler handles moderation endpoints.
type Handler struct {
	logger       *slog.Logger
	moderations  Service
	auditor      AuditPublisher
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
	// bcrypt hash of the shared secret the signals collaborators present.
	signalsSecretHash string
}

// New creates a new moderation Handler.
func New(
	moderations Service,
	auditor AuditPublisher,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	signalsSecretHash string) *Handler {
	return &Handler{
		logger:            logger,
		moderations:       moderations,
		auditor:           auditor,
		metrics:           metrics,
		jwtValidator:      jwtValidator,
		signalsSecretHash: signalsSecretHash,
	}
}

// Register registers the moderation routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	// Collaborator webhook: shared-secret auth, no user JWT.
	r.Group(func(webhook chi.Router) {
		webhook.Use(middleware.Recovery(h.logger))
		webhook.Use(middleware.RequestID)
		webhook.Use(middleware.Logger(h.logger))
		webhook.Use(middleware.Timeout(10 * time.Second))
		webhook.Use(middleware.ContentTypeJSON)
		webhook.Use(middleware.LatencyMiddleware(h.metrics))
		webhook.Post("/submissions/{submissionID}/signals", h.handleSignals)
	})

	r.Group(func(reads chi.Router) {
		reads.Use(middleware.Recovery(h.logger))
		reads.Use(middleware.RequestID)
		reads.Use(middleware.Logger(h.logger))
		reads.Use(middleware.Timeout(30 * time.Second))
		reads.Use(middleware.LatencyMiddleware(h.metrics))
		reads.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		reads.Get("/submissions/{submissionID}/moderation", h.handleGetModeration)
	})
}

type signalsRequest struct {
	FaceMatch  moderation.FaceMatchResult  `json:"face_match"`
	Liveliness moderation.LivelinessResult `json:"liveliness"`
}

func (h *Handler) handleSignals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if !h.verifySecret(r.Header.Get("X-Signals-Secret")) {
		h.logger.WarnContext(ctx, "signals webhook auth failed",
			"request_id", requestID,
		)
		if err := h.auditor.Emit(ctx, audit.Event{
			Action:    string(audit.EventSignalsAuthFailed),
			RequestID: requestID,
		}); err != nil {
			h.logger.ErrorContext(ctx, "failed to emit audit event", "error", err)
		}
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid signals secret"))
		return
	}

	submissionID, err := domain.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	var req signalsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.moderations.RecordSignals(ctx, submissionID, req.FaceMatch, req.Liveliness); err != nil {
		h.logger.WarnContext(ctx, "failed to record signals",
			"request_id", requestID,
			"submission_id", submissionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetModeration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	submissionID, err := domain.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	if middleware.GetRole(ctx) == middleware.RoleReviewer {
		view, err := h.moderations.ForReviewer(ctx, submissionID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, view)
		return
	}

	view, err := h.moderations.ForOwner(ctx, submissionID, middleware.GetUserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load moderation",
			"request_id", requestID,
			"submission_id", submissionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) verifySecret(presented string) bool {
	if h.signalsSecretHash == "" || presented == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(h.signalsSecretHash), []byte(presented)) == nil
}
