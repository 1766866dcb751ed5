package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opensourcefinder/server/internal/domain"
	"github.com/opensourcefinder/server/internal/logging"
	"github.com/opensourcefinder/server/internal/repository"
	"github.com/sirupsen/logrus"
)

type InquiryService struct {
	inquiryRepo repository.InquiryRepository
	log         *logrus.Entry
}

func NewInquiryService(inquiryRepo repository.InquiryRepository) *InquiryService {
	return &InquiryService{
		inquiryRepo: inquiryRepo,
		log:         logging.C("inquiry-service"),
	}
}

type InquiryInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (s *InquiryService) Create(ctx context.Context, userID uuid.UUID, input InquiryInput) (*domain.Inquiry, error) {
	inquiry := &domain.Inquiry{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      input.Name,
		Email:     input.Email,
		Subject:   input.Subject,
		Message:   input.Message,
		CreatedAt: time.Now(),
	}

	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("creating inquiry: %w", err)
	}

	s.log.WithFields(logrus.Fields{"inquiry": inquiry.ID, "subject": input.Subject}).Info("inquiry received")
	return inquiry, nil
}
