package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"debugweek/internal/api/middleware"
	"debugweek/internal/app/service"
	"debugweek/internal/common"

	"github.com/go-chi/chi/v5"
)

type WeekHandler struct {
	weekService      *service.WeekService
	challengeService *service.ChallengeService
}

func NewWeekHandler(ws *service.WeekService, cs *service.ChallengeService) *WeekHandler {
	return &WeekHandler{weekService: ws, challengeService: cs}
}

func (h *WeekHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listWeeks)
	r.Get("/{weekNumber}/challenges", h.weekChallenges)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.createWeek)
		admin.Put("/{weekNumber}", h.updateWeek)
		admin.Get("/{weekNumber}/challenges/manage", h.manageChallenges)
	})
}

func (h *WeekHandler) listWeeks(w http.ResponseWriter, r *http.Request) {
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	weeks, err := h.weekService.ListWeeks(r.Context(), role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, weeks)
}

func (h *WeekHandler) weekChallenges(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	role, _ := middleware.GetUserRoleFromContext(r.Context())

	weekNumber, err := strconv.Atoi(chi.URLParam(r, "weekNumber"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid week number")
		return
	}

	view, err := h.weekService.GetWeekChallenges(r.Context(), weekNumber, userID, role)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *WeekHandler) createWeek(w http.ResponseWriter, r *http.Request) {
	var req service.WeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	week, err := h.weekService.CreateWeek(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, week)
}

func (h *WeekHandler) updateWeek(w http.ResponseWriter, r *http.Request) {
	weekNumber, err := strconv.Atoi(chi.URLParam(r, "weekNumber"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid week number")
		return
	}

	var req service.WeekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	week, err := h.weekService.UpdateWeek(r.Context(), weekNumber, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, week)
}

func (h *WeekHandler) manageChallenges(w http.ResponseWriter, r *http.Request) {
	weekNumber, err := strconv.Atoi(chi.URLParam(r, "weekNumber"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid week number")
		return
	}

	week, challenges, err := h.challengeService.ListForWeek(r.Context(), weekNumber)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"week":       week,
		"challenges": challenges,
	})
}
