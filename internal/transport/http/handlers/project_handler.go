package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/service"
	"github.com/opensourcefinder/server/internal/transport/http/middleware"
	"github.com/opensourcefinder/server/pkg/validator"
	"github.com/sirupsen/logrus"
)

type ProjectHandler struct {
	projectService    *service.ProjectService
	engagementService *service.EngagementService
	log               *logrus.Entry
}

func NewProjectHandler(projectService *service.ProjectService, engagementService *service.EngagementService) *ProjectHandler {
	return &ProjectHandler{
		projectService:    projectService,
		engagementService: engagementService,
		log:               logging.C("project-handler"),
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.RegisterProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProjectSubmission(input.Owner, input.Name, input.Tags); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	project, err := h.projectService.Register(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.writeProjectError(w, err, "create project")
		return
	}

	writeJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Owner string `json:"owner"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProjectSubmission(input.Owner, input.Name, nil); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	preview, err := h.projectService.Preview(r.Context(), input.Owner, input.Name)
	if err != nil {
		h.writeProjectError(w, err, "preview project")
		return
	}

	writeJSON(w, http.StatusOK, preview)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		h.log.WithError(err).Error("list projects")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid project ID")
		return
	}

	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		h.writeProjectError(w, err, "get project")
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid project ID")
		return
	}

	var input service.EditProjectInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateProjectSubmission(input.Owner, input.Name, nil); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	project, err := h.projectService.Edit(r.Context(), middleware.GetUserID(r.Context()), id, input)
	if err != nil {
		h.writeProjectError(w, err, "edit project")
		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	name := r.PathValue("name")

	if err := h.projectService.Delete(r.Context(), middleware.GetUserID(r.Context()), owner, name); err != nil {
		h.writeProjectError(w, err, "delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ProjectHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid project ID")
		return
	}

	result, err := h.engagementService.ToggleLike(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeProjectError(w, err, "toggle like")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ProjectHandler) RefreshMine(w http.ResponseWriter, r *http.Request) {
	summary, err := h.projectService.RefreshAllForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoLinkedAccount):
			writeError(w, http.StatusBadRequest, "NO_LINKED_ACCOUNT", "No GitHub account linked to this profile")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
		default:
			h.log.WithError(err).Error("refresh projects")
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// writeProjectError maps the project error taxonomy onto HTTP statuses. An
// absent source repository is permanent (410), any other upstream failure is
// retryable (502).
func (h *ProjectHandler) writeProjectError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrProjectNotFound):
		writeError(w, http.StatusNotFound, "PROJECT_NOT_FOUND", "Project not found")
	case errors.Is(err, service.ErrDuplicateProject):
		writeError(w, http.StatusConflict, "PROJECT_EXISTS", "This repository is already registered")
	case errors.Is(err, service.ErrRepoGone):
		writeError(w, http.StatusGone, "REPO_GONE", "The source repository does not exist")
	case errors.Is(err, service.ErrUpstreamUnavailable):
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Could not reach the source repository service")
	case errors.Is(err, service.ErrNotProjectOwner):
		writeError(w, http.StatusForbidden, "NOT_OWNER", "Only the submitting user can modify this project")
	default:
		h.log.WithError(err).Error(op)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
