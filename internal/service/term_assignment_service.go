package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/roommatch"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type termAssignmentRepository interface {
	ListByTerm(ctx context.Context, termID string) ([]models.TermAssignmentDetail, error)
	FindByID(ctx context.Context, id string) (*models.TermAssignmentDetail, error)
	ExistsByPart(ctx context.Context, termID, partCode, excludeID string) (bool, error)
	NextSortOrder(ctx context.Context, termID string) (int, error)
	Create(ctx context.Context, a *models.TermAssignment) error
	Update(ctx context.Context, a *models.TermAssignment) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, termID string, ids []string) error
}

type termFinder interface {
	FindByID(ctx context.Context, id string) (*models.CourtTerm, error)
}

// roomResolver is satisfied by RoomService.
type roomResolver interface {
	Get(ctx context.Context, id string) (*models.RoomDetail, error)
	Index(ctx context.Context) (*roommatch.Index, error)
}

// TermAssignmentRequest is the payload for creating or replacing an assignment.
// When RoomID is empty the RoomNumber text is matched against the inventory.
type TermAssignmentRequest struct {
	PartCode     string   `json:"part_code" validate:"required,max=20"`
	RoomID       *string  `json:"room_id"`
	RoomNumber   string   `json:"room_number" validate:"max=50"`
	JusticeName  string   `json:"justice_name" validate:"max=200"`
	ClerkNames   []string `json:"clerk_names" validate:"max=10,dive,max=200"`
	SergeantName *string  `json:"sergeant_name"`
	Phone        *string  `json:"phone" validate:"omitempty,max=50"`
	Fax          *string  `json:"fax" validate:"omitempty,max=50"`
	TelExtension *string  `json:"tel_extension" validate:"omitempty,max=10"`
}

// ReorderRequest lists every assignment id of a term in the new display order.
type ReorderRequest struct {
	AssignmentIDs []string `json:"assignment_ids" validate:"required,min=1,dive,required"`
}

// TermAssignmentService manages the part/justice/room rows of a term.
type TermAssignmentService struct {
	repo      termAssignmentRepository
	terms     termFinder
	rooms     roomResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermAssignmentService constructs a TermAssignmentService.
func NewTermAssignmentService(repo termAssignmentRepository, terms termFinder, rooms roomResolver, validate *validator.Validate, logger *zap.Logger) *TermAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermAssignmentService{repo: repo, terms: terms, rooms: rooms, validator: validate, logger: logger}
}

// ListByTerm returns a term's assignments in display order.
func (s *TermAssignmentService) ListByTerm(ctx context.Context, termID string) ([]models.TermAssignmentDetail, error) {
	if err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByTerm(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	if items == nil {
		items = []models.TermAssignmentDetail{}
	}
	return items, nil
}

// Create appends an assignment to the end of the term's order.
func (s *TermAssignmentService) Create(ctx context.Context, termID string, req TermAssignmentRequest) (*models.TermAssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if err := s.ensureTerm(ctx, termID); err != nil {
		return nil, err
	}
	assignment := &models.TermAssignment{TermID: termID}
	if err := s.apply(ctx, assignment, req, ""); err != nil {
		return nil, err
	}
	next, err := s.repo.NextSortOrder(ctx, termID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute sort order")
	}
	assignment.SortOrder = next
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return s.get(ctx, assignment.ID)
}

// Update replaces an assignment, keeping its position.
func (s *TermAssignmentService) Update(ctx context.Context, id string, req TermAssignmentRequest) (*models.TermAssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	assignment := existing.TermAssignment
	if err := s.apply(ctx, &assignment, req, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &assignment); err != nil {
		return nil, mapMutationError(err, "assignment not found", "failed to update assignment")
	}
	return s.get(ctx, id)
}

// Delete removes an assignment.
func (s *TermAssignmentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapMutationError(err, "assignment not found", "failed to delete assignment")
	}
	return nil
}

// Reorder rewrites the display order. The request must name every assignment of
// the term exactly once.
func (s *TermAssignmentService) Reorder(ctx context.Context, termID string, req ReorderRequest) ([]models.TermAssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reorder payload")
	}
	current, err := s.ListByTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(current))
	for _, a := range current {
		known[a.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(req.AssignmentIDs))
	for _, id := range req.AssignmentIDs {
		if _, ok := known[id]; !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignment "+id+" does not belong to this term")
		}
		if _, dup := seen[id]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "assignment "+id+" is listed twice")
		}
		seen[id] = struct{}{}
	}
	if len(seen) != len(known) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "every assignment of the term must be listed")
	}
	if err := s.repo.Reorder(ctx, termID, req.AssignmentIDs); err != nil {
		return nil, mapMutationError(err, "assignment not found", "failed to reorder assignments")
	}
	return s.ListByTerm(ctx, termID)
}

func (s *TermAssignmentService) apply(ctx context.Context, a *models.TermAssignment, req TermAssignmentRequest, excludeID string) error {
	part := strings.ToUpper(strings.TrimSpace(req.PartCode))
	exists, err := s.repo.ExistsByPart(ctx, a.TermID, part, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check part code")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "part "+part+" already has an assignment in this term")
	}

	a.PartCode = part
	a.RoomNumber = strings.TrimSpace(req.RoomNumber)
	a.RoomID = nil
	if err := s.resolveRoom(ctx, a, optional(req.RoomID)); err != nil {
		return err
	}
	a.JusticeName = strings.TrimSpace(req.JusticeName)
	a.ClerkNames = cleanNames(req.ClerkNames)
	a.SergeantName = optional(req.SergeantName)
	a.Phone = optional(req.Phone)
	a.Fax = optional(req.Fax)
	a.TelExtension = optional(req.TelExtension)
	return nil
}

// resolveRoom links an explicit room id, or matches the raw room text. Unmatched
// text is kept as entered.
func (s *TermAssignmentService) resolveRoom(ctx context.Context, a *models.TermAssignment, roomID *string) error {
	if roomID != nil {
		room, err := s.rooms.Get(ctx, *roomID)
		if err != nil {
			if appErrors.FromError(err).Code == appErrors.ErrNotFound.Code {
				return appErrors.Clone(appErrors.ErrValidation, "room does not exist")
			}
			return err
		}
		a.RoomID = &room.ID
		if a.RoomNumber == "" {
			a.RoomNumber = room.RoomNumber
		}
		return nil
	}
	if a.RoomNumber == "" {
		return nil
	}
	idx, err := s.rooms.Index(ctx)
	if err != nil {
		s.logger.Warn("room index unavailable; keeping raw room number", zap.Error(err))
		return nil
	}
	if match := idx.Match(a.RoomNumber); match.Room != nil {
		a.RoomID = &match.Room.ID
	}
	return nil
}

func (s *TermAssignmentService) ensureTerm(ctx context.Context, termID string) error {
	if _, err := s.terms.FindByID(ctx, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "court term not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load court term")
	}
	return nil
}

func (s *TermAssignmentService) get(ctx context.Context, id string) (*models.TermAssignmentDetail, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	return item, nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if trimmed := strings.Join(strings.Fields(n), " "); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
