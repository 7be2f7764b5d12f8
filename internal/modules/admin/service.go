package admin

import (
	"context"
	"fmt"

	"voiceagent/internal/domain"
	"voiceagent/internal/repository"
)

type Service struct {
	businesses *repository.BusinessRepository
}

func NewService(businesses *repository.BusinessRepository) *Service {
	return &Service{businesses: businesses}
}

func (s *Service) CreateBusiness(ctx context.Context, req *CreateBusinessRequest) (*domain.Business, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b := &domain.Business{
		ExternalID:       req.ExternalID,
		Name:             req.Name,
		Timezone:         req.Timezone,
		Phone:            req.Phone,
		TransferPhone:    req.TransferPhone,
		Hours:            req.Hours,
		Policies:         req.Policies,
		CalendarProvider: req.CalendarProvider,
		CalendarID:       req.CalendarID,
		CalendarSettings: req.CalendarSettings,
	}
	if err := s.businesses.Create(ctx, b); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateExternalID, req.ExternalID)
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	return s.businesses.List(ctx)
}

func (s *Service) GetBusiness(ctx context.Context, id int64) (*domain.Business, error) {
	b, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) UpdateBusiness(ctx context.Context, id int64, req *UpdateBusinessRequest) (*domain.Business, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	b, err := s.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ExternalID != nil {
		b.ExternalID = *req.ExternalID
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Timezone != nil {
		b.Timezone = *req.Timezone
	}
	if req.Phone != nil {
		b.Phone = *req.Phone
	}
	if req.TransferPhone != nil {
		b.TransferPhone = *req.TransferPhone
	}
	if len(req.Hours) > 0 {
		b.Hours = req.Hours
	}
	if len(req.Policies) > 0 {
		b.Policies = req.Policies
	}
	if req.CalendarProvider != nil {
		b.CalendarProvider = *req.CalendarProvider
	}
	if req.CalendarID != nil {
		b.CalendarID = *req.CalendarID
	}
	if len(req.CalendarSettings) > 0 {
		b.CalendarSettings = req.CalendarSettings
	}

	if err := s.businesses.Update(ctx, b); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateExternalID, b.ExternalID)
		}
		return nil, err
	}
	return b, nil
}
