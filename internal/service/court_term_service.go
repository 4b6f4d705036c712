package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/models"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type courtTermRepository interface {
	List(ctx context.Context, filter models.CourtTermFilter) ([]models.CourtTerm, int, error)
	FindByID(ctx context.Context, id string) (*models.CourtTerm, error)
	ExistsByNumber(ctx context.Context, termNumber, excludeID string) (bool, error)
	Create(ctx context.Context, term *models.CourtTerm) error
	Update(ctx context.Context, term *models.CourtTerm) error
	Delete(ctx context.Context, id string) error
}

type termAssignmentLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TermAssignmentDetail, error)
}

type termPersonnelLister interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TermPersonnel, error)
}

// CourtTermRequest is the payload for creating or replacing a court term. Dates
// use the YYYY-MM-DD layout.
type CourtTermRequest struct {
	TermNumber  string  `json:"term_number" validate:"required,max=20"`
	TermName    string  `json:"term_name" validate:"required,max=200"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
	Location    string  `json:"location" validate:"max=300"`
	Description *string `json:"description"`
}

// CourtTermService manages court terms.
type CourtTermService struct {
	repo        courtTermRepository
	assignments termAssignmentLister
	personnel   termPersonnelLister
	audit       auditLogger
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCourtTermService constructs a CourtTermService.
func NewCourtTermService(repo courtTermRepository, assignments termAssignmentLister, personnel termPersonnelLister, audit auditLogger, validate *validator.Validate, logger *zap.Logger) *CourtTermService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourtTermService{repo: repo, assignments: assignments, personnel: personnel, audit: audit, validator: validate, logger: logger}
}

// List returns paginated terms.
func (s *CourtTermService) List(ctx context.Context, filter models.CourtTermFilter) ([]models.CourtTerm, *models.Pagination, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	terms, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list court terms")
	}
	if terms == nil {
		terms = []models.CourtTerm{}
	}
	return terms, buildPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a term with its assignments and personnel.
func (s *CourtTermService) Get(ctx context.Context, id string) (*models.CourtTermDetail, error) {
	term, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	assignments, err := s.assignments.ListByTerm(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	personnel, err := s.personnel.ListByTerm(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load personnel")
	}
	if assignments == nil {
		assignments = []models.TermAssignmentDetail{}
	}
	if personnel == nil {
		personnel = []models.TermPersonnel{}
	}
	return &models.CourtTermDetail{CourtTerm: *term, Assignments: assignments, Personnel: personnel}, nil
}

// Create adds a term with a unique term number.
func (s *CourtTermService) Create(ctx context.Context, req CourtTermRequest) (*models.CourtTerm, error) {
	term, err := s.build(req)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueNumber(ctx, term.TermNumber, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, term); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create court term")
	}
	return term, nil
}

// Update replaces a term's header fields.
func (s *CourtTermService) Update(ctx context.Context, id string, req CourtTermRequest) (*models.CourtTerm, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	term, err := s.build(req)
	if err != nil {
		return nil, err
	}
	if term.TermNumber != existing.TermNumber {
		if err := s.ensureUniqueNumber(ctx, term.TermNumber, id); err != nil {
			return nil, err
		}
	}
	term.ID = existing.ID
	term.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, term); err != nil {
		return nil, mapMutationError(err, "court term not found", "failed to update court term")
	}
	return term, nil
}

// Delete removes a term together with its assignments and personnel.
func (s *CourtTermService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	term, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapMutationError(err, "court term not found", "failed to delete court term")
	}
	if s.audit != nil {
		log := &models.AuditLog{
			Action:     models.AuditActionTermDelete,
			Resource:   "court_term",
			ResourceID: &id,
			OldValues:  auditPayload(map[string]string{"term_number": term.TermNumber, "term_name": term.TermName}),
		}
		if actor != nil {
			log.UserID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record term delete audit log", zap.Error(err))
		}
	}
	return nil
}

func (s *CourtTermService) find(ctx context.Context, id string) (*models.CourtTerm, error) {
	term, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "court term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load court term")
	}
	return term, nil
}

func (s *CourtTermService) build(req CourtTermRequest) (*models.CourtTerm, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid court term payload")
	}
	start, end, err := parseTermDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	return &models.CourtTerm{
		TermNumber:  normalizeTermNumber(req.TermNumber),
		TermName:    strings.TrimSpace(req.TermName),
		StartDate:   start,
		EndDate:     end,
		Location:    strings.TrimSpace(req.Location),
		Description: optional(req.Description),
	}, nil
}

func (s *CourtTermService) ensureUniqueNumber(ctx context.Context, number, excludeID string) error {
	exists, err := s.repo.ExistsByNumber(ctx, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check term number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "term number already exists")
	}
	return nil
}

// parseTermDates parses both dates and requires end >= start; equal dates make a
// one-day term.
func parseTermDates(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateLayout, strings.TrimSpace(startRaw))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "start_date must use YYYY-MM-DD")
	}
	end, err := time.Parse(models.DateLayout, strings.TrimSpace(endRaw))
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "end_date must use YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}
	return start, end, nil
}

func normalizeTermNumber(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), " "))
}
