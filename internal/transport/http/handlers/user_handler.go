package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/service"
	"github.com/opensourcefinder/server/internal/transport/http/middleware"
	"github.com/opensourcefinder/server/pkg/validator"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService       *service.UserService
	engagementService *service.EngagementService
	log               *logrus.Entry
}

func NewUserHandler(userService *service.UserService, engagementService *service.EngagementService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		engagementService: engagementService,
		log:               logging.C("user-handler"),
	}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetMe(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeUserError(w, err, "get profile")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	var input service.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProfile(input.Handle, input.Website); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.userService.EditProfile(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeUserError(w, err, "edit profile")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.DeleteAccount(r.Context(), middleware.GetUserID(r.Context())); err != nil {
		h.writeUserError(w, err, "delete account")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userService.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeUserError(w, err, "get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) Bookmarks(w http.ResponseWriter, r *http.Request) {
	projects, err := h.userService.ListBookmarks(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeUserError(w, err, "list bookmarks")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *UserHandler) ToggleBookmark(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("projectId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid project ID")
		return
	}

	result, err := h.engagementService.ToggleBookmark(r.Context(), middleware.GetUserID(r.Context()), projectID)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found")
		} else {
			h.log.WithError(err).Error("toggle bookmark")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *UserHandler) writeUserError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrHandleTaken):
		writeError(w, http.StatusConflict, "HANDLE_TAKEN", "Handle is already taken")
	default:
		h.log.WithError(err).Error(op)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
