// Package handler exposes the submission HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veridoc/internal/platform/metrics"
	"veridoc/internal/platform/middleware"
	"veridoc/internal/submission"
	"veridoc/pkg/domain"
	dErrors "veridoc/pkg/domain-errors"
	"veridoc/pkg/platform/httputil"
)

// Service defines the interface for submission operations.
type Service interface {
	Create(ctx context.Context, req submission.CreateRequest) (submission.Submission, error)
	Get(ctx context.Context, id domain.SubmissionID, actorID, role string) (submission.Submission, error)
	Decide(ctx context.Context, id domain.SubmissionID, target string, reviewerID domain.ReviewerID, comment string) (submission.Submission, error)
	History(ctx context.Context, id domain.SubmissionID) ([]submission.StatusChange, error)
}

// Handler handles submission endpoints.
type Handler struct {
	logger       *slog.Logger
	submissions  Service
	metrics      *metrics.Metrics
	jwtValidator middleware.JWTValidator
}

// New creates a new submission Handler.
func New(
	submissions Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		submissions:  submissions,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register registers the submission routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(router chi.Router) {
		router.Use(middleware.Recovery(h.logger))
		router.Use(middleware.RequestID)
		router.Use(middleware.Device)
		router.Use(middleware.Logger(h.logger))
		router.Use(middleware.Timeout(30 * time.Second))
		router.Use(middleware.ContentTypeJSON)
		router.Use(middleware.LatencyMiddleware(h.metrics))
		router.Use(middleware.RequireAuth(h.jwtValidator, h.logger))

		router.Post("/submissions", h.handleCreate)
		router.Get("/submissions/{submissionID}", h.handleGet)

		router.Group(func(reviewer chi.Router) {
			reviewer.Use(middleware.RequireRole(middleware.RoleReviewer, h.logger))
			reviewer.Post("/submissions/{submissionID}/status", h.handleDecide)
			reviewer.Get("/submissions/{submissionID}/history", h.handleHistory)
		})
	})
}

type createRequest struct {
	DocumentType     string                  `json:"document_type"`
	SelfReported     submission.SelfReported `json:"self_reported"`
	DocumentImageRef string                  `json:"document_image_ref"`
	SelfieImageRef   string                  `json:"selfie_image_ref"`
}

type decideRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

type submissionResponse struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"user_id"`
	DocumentType     string                  `json:"document_type"`
	SelfReported     submission.SelfReported `json:"self_reported"`
	DocumentImageRef string                  `json:"document_image_ref"`
	SelfieImageRef   string                  `json:"selfie_image_ref"`
	Status           string                  `json:"status"`
	ReviewedBy       string                  `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time              `json:"reviewed_at,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

type statusChangeResponse struct {
	PreviousStatus string    `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	ReviewerID     string    `json:"reviewer_id"`
	Comment        string    `json:"comment,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
}

func toSubmissionResponse(sub submission.Submission) submissionResponse {
	resp := submissionResponse{
		ID:               sub.ID.String(),
		UserID:           sub.UserID.String(),
		DocumentType:     string(sub.DocumentType),
		SelfReported:     sub.SelfReported,
		DocumentImageRef: sub.DocumentImageRef,
		SelfieImageRef:   sub.SelfieImageRef,
		Status:           string(sub.Status),
		ReviewedAt:       sub.ReviewedAt,
		CreatedAt:        sub.CreatedAt,
		UpdatedAt:        sub.UpdatedAt,
	}
	if sub.ReviewedBy != nil {
		resp.ReviewedBy = sub.ReviewedBy.String()
	}
	return resp
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	userID, err := domain.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create submission request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sub, err := h.submissions.Create(ctx, submission.CreateRequest{
		UserID:           userID,
		DocumentType:     req.DocumentType,
		SelfReported:     req.SelfReported,
		DocumentImageRef: req.DocumentImageRef,
		SelfieImageRef:   req.SelfieImageRef,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "failed to create submission",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toSubmissionResponse(sub))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	submissionID, err := domain.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	sub, err := h.submissions.Get(ctx, submissionID, middleware.GetUserID(ctx), middleware.GetRole(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to load submission",
			"request_id", requestID,
			"submission_id", submissionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	submissionID, err := domain.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	reviewerID, err := domain.ParseReviewerID(middleware.GetUserID(ctx))
	if err != nil {
		h.logger.ErrorContext(ctx, "reviewer ID missing from context despite auth middleware",
			"request_id", requestID,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sub, err := h.submissions.Decide(ctx, submissionID, req.Status, reviewerID, req.Comment)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to decide submission",
			"request_id", requestID,
			"submission_id", submissionID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toSubmissionResponse(sub))
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	submissionID, err := domain.ParseSubmissionID(chi.URLParam(r, "submissionID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid submission id"))
		return
	}

	changes, err := h.submissions.History(ctx, submissionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := make([]statusChangeResponse, 0, len(changes))
	for _, change := range changes {
		resp = append(resp, statusChangeResponse{
			PreviousStatus: string(change.PreviousStatus),
			NewStatus:      string(change.NewStatus),
			ReviewerID:     change.ReviewerID.String(),
			Comment:        change.Comment,
			ChangedAt:      change.ChangedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
