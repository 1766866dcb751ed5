package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/service"
	"github.com/opensourcefinder/server/internal/transport/http/middleware"
	"github.com/opensourcefinder/server/pkg/validator"
	"github.com/sirupsen/logrus"
)

type InquiryHandler struct {
	inquiryService *service.InquiryService
	log            *logrus.Entry
}

func NewInquiryHandler(inquiryService *service.InquiryService) *InquiryHandler {
	return &InquiryHandler{
		inquiryService: inquiryService,
		log:            logging.C("inquiry-handler"),
	}
}

func (h *InquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.InquiryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateInquiry(input.Name, input.Email, input.Subject, input.Message); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	inquiry, err := h.inquiryService.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		h.log.WithError(err).Error("create inquiry")
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusCreated, inquiry)
}
