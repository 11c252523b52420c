package handler

import (
	"encoding/json"
	"net/http"

	"debugweek/internal/app/service"
	"debugweek/internal/common"

	"github.com/go-chi/chi/v5"
)

// ExecuteHandler backs the unauthenticated "try it" sandbox: run code, return
// its output, persist nothing.
type ExecuteHandler struct {
	gradeService *service.GradeService
}

func NewExecuteHandler(gradeService *service.GradeService) *ExecuteHandler {
	return &ExecuteHandler{gradeService: gradeService}
}

func (h *ExecuteHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.execute)
}

type executeRequest struct {
	Code string `json:"code"`
}

func (h *ExecuteHandler) execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.gradeService.Execute(r.Context(), req.Code)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
