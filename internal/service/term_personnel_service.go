package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/models"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type termPersonnelRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TermPersonnel, error)
	FindByID(ctx context.Context, id string) (*models.TermPersonnel, error)
	Create(ctx context.Context, p *models.TermPersonnel) error
	Update(ctx context.Context, p *models.TermPersonnel) error
	Delete(ctx context.Context, id string) error
}

// TermPersonnelRequest is the payload for creating or replacing a personnel entry.
type TermPersonnelRequest struct {
	Name       string               `json:"name" validate:"required,max=200"`
	Role       models.PersonnelRole `json:"role" validate:"required"`
	Phone      *string              `json:"phone" validate:"omitempty,max=50"`
	Extension  *string              `json:"extension" validate:"omitempty,max=10"`
	RoomNumber *string              `json:"room_number" validate:"omitempty,max=50"`
}

// TermPersonnelService manages role-holders of a term.
type TermPersonnelService struct {
	repo      termPersonnelRepository
	terms     termFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermPersonnelService constructs a TermPersonnelService.
func NewTermPersonnelService(repo termPersonnelRepository, terms termFinder, validate *validator.Validate, logger *zap.Logger) *TermPersonnelService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermPersonnelService{repo: repo, terms: terms, validator: validate, logger: logger}
}

// ListByTerm returns a term's personnel.
func (s *TermPersonnelService) ListByTerm(ctx context.Context, termID string) ([]models.TermPersonnel, error) {
	if err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list personnel")
	}
	if items == nil {
		items = []models.TermPersonnel{}
	}
	return items, nil
}

// Create adds a personnel entry to a term.
func (s *TermPersonnelService) Create(ctx context.Context, termID string, req TermPersonnelRequest) (*models.TermPersonnel, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	if err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	p := &models.TermPersonnel{TermID: termID}
	applyPersonnel(p, req)
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create personnel")
	}
	return p, nil
}

// Update replaces a personnel entry.
func (s *TermPersonnelService) Update(ctx context.Context, id string, req TermPersonnelRequest) (*models.TermPersonnel, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "personnel not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personnel")
	}
	applyPersonnel(p, req)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, mapMutationError(err, "personnel not found", "failed to update personnel")
	}
	return p, nil
}

// Delete removes a personnel entry.
func (s *TermPersonnelService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapMutationError(err, "personnel not found", "failed to delete personnel")
	}
	return nil
}

func (s *TermPersonnelService) validate(req TermPersonnelRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid personnel payload")
	}
	if !models.ValidPersonnelRole(models.PersonnelRole(strings.ToUpper(string(req.Role)))) {
		return appErrors.Clone(appErrors.ErrValidation, "unknown personnel role")
	}
	return nil
}

func (s *TermPersonnelService) ensureTerm(ctx context.Context, termID string) error {
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "court term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load court term")
	}
	return nil
}

func applyPersonnel(p *models.TermPersonnel, req TermPersonnelRequest) {
	p.Name = strings.Join(strings.Fields(req.Name), " ")
	p.Role = models.PersonnelRole(strings.ToUpper(string(req.Role)))
	p.Phone = optional(req.Phone)
	p.Extension = optional(req.Extension)
	p.RoomNumber = optional(req.RoomNumber)
}
