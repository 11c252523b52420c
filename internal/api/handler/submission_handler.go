package handler

import (
	"encoding/json"
	"net/http"

	"debugweek/internal/api/middleware"
	"debugweek/internal/app/service"
	"debugweek/internal/common"
	"debugweek/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

// RegisterRoutes is mounted under /challenges/{challengeID}/submissions.
func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.submit)
}

type submitRequest struct {
	Code string `json:"code"`
}

type submitResponse struct {
	Status       model.SubmissionStatus `json:"status"`
	Output       string                 `json:"output"`
	PointsEarned int                    `json:"points_earned"`
	Error        string                 `json:"error,omitempty"`
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	challengeID := chi.URLParam(r, "challengeID")

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	_, grade, err := h.submissionService.Submit(r.Context(), userID, challengeID, req.Code)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	common.RespondWithJSON(w, http.StatusOK, submitResponse{
		Status:       grade.Status,
		Output:       grade.Output,
		PointsEarned: grade.PointsEarned,
		Error:        grade.Error,
	})
}
