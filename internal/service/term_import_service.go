package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/roommatch"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

const maxImportTextLength = 200_000

type termTextParser interface {
	Parse(text string, mode models.ImportMode) models.TermImportData
}

type roomIndexer interface {
	Index(ctx context.Context) (*roommatch.Index, error)
}

type documentChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type termImportRepository interface {
	ExistsByNumber(ctx context.Context, termNumber, excludeID string) (bool, error)
	CreateWithDetails(ctx context.Context, term *models.CourtTerm, assignments []models.TermAssignment, personnel []models.TermPersonnel, documentID *string) error
}

type termDetailGetter interface {
	Get(ctx context.Context, id string) (*models.CourtTermDetail, error)
}

// ParseRequest is the payload for extracting a term from pasted or OCR text.
type ParseRequest struct {
	Text       string            `json:"text" validate:"required"`
	Mode       models.ImportMode `json:"mode" validate:"omitempty,oneof=auto list table"`
	DocumentID *string           `json:"document_id"`
}

// TermImportService turns schedule text into a reviewable preview and commits
// reviewed previews as new terms.
type TermImportService struct {
	parser    termTextParser
	rooms     roomIndexer
	documents documentChecker
	repo      termImportRepository
	terms     termDetailGetter
	audit     auditLogger
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTermImportService constructs a TermImportService.
func NewTermImportService(parser termTextParser, rooms roomIndexer, documents documentChecker, repo termImportRepository, terms termDetailGetter, audit auditLogger, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TermImportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermImportService{
		parser:    parser,
		rooms:     rooms,
		documents: documents,
		repo:      repo,
		terms:     terms,
		audit:     audit,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Parse extracts a preview. It never fails on unrecognised text; problems are
// reported as warnings. Room matching, the source document check and the
// duplicate term check run concurrently.
func (s *TermImportService) Parse(ctx context.Context, req ParseRequest) (*models.TermImportData, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid parse payload")
	}
	if utf8.RuneCountInString(req.Text) > maxImportTextLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("text exceeds %d characters", maxImportTextLength))
	}
	mode := req.Mode
	if mode == "" {
		mode = models.ImportModeAuto
	}

	data := s.parser.Parse(req.Text, mode)
	documentID := optional(req.DocumentID)
	data.SourceDocumentID = documentID

	var (
		roomWarnings []string
		duplicate    bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		roomWarnings = s.matchRooms(gctx, data.Assignments)
		return nil
	})
	if documentID != nil && s.documents != nil {
		g.Go(func() error {
			ok, err := s.documents.Exists(gctx, *documentID)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check source document")
			}
			if !ok {
				return appErrors.Clone(appErrors.ErrNotFound, "source document not found")
			}
			return nil
		})
	}
	if data.Term.TermNumber != "" {
		g.Go(func() error {
			exists, err := s.repo.ExistsByNumber(gctx, data.Term.TermNumber, "")
			if err != nil {
				s.logger.Warn("duplicate term check failed", zap.Error(err))
				return nil
			}
			duplicate = exists
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data.Warnings = append(data.Warnings, roomWarnings...)
	if duplicate {
		data.Warnings = append(data.Warnings, fmt.Sprintf("term %s already exists; change the term number before committing", data.Term.TermNumber))
	}
	s.metrics.RecordImportParse(string(data.Mode), data.Placeholder, data.Confidence)
	return &data, nil
}

// Commit validates a reviewed preview like a term create and stores the term,
// its assignments and personnel in one transaction.
func (s *TermImportService) Commit(ctx context.Context, data models.TermImportData, actor *models.JWTClaims) (*models.CourtTermDetail, error) {
	term, err := s.buildTerm(data.Term)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByNumber(ctx, term.TermNumber, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check term number")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "term number already exists")
	}

	assignments, err := s.buildAssignments(ctx, data.Assignments)
	if err != nil {
		return nil, err
	}
	personnel, err := buildPersonnel(data.Personnel)
	if err != nil {
		return nil, err
	}

	documentID := optional(data.SourceDocumentID)
	if err := s.repo.CreateWithDetails(ctx, term, assignments, personnel, documentID); err != nil {
		s.metrics.RecordImportCommit(false)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "source document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import term")
	}
	s.metrics.RecordImportCommit(true)

	if s.audit != nil {
		log := &models.AuditLog{
			Action:     models.AuditActionTermImport,
			Resource:   "court_term",
			ResourceID: &term.ID,
			NewValues: auditPayload(map[string]interface{}{
				"term_number": term.TermNumber,
				"assignments": len(assignments),
				"personnel":   len(personnel),
				"document_id": documentID,
			}),
		}
		if actor != nil {
			log.UserID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record term import audit log", zap.Error(err))
		}
	}
	s.logger.Info("term imported",
		zap.String("term_id", term.ID),
		zap.String("term_number", term.TermNumber),
		zap.Int("assignments", len(assignments)),
		zap.Int("personnel", len(personnel)),
	)
	return s.terms.Get(ctx, term.ID)
}

// matchRooms sets RoomID on assignments whose room text resolves and returns a
// warning per unresolved room.
func (s *TermImportService) matchRooms(ctx context.Context, assignments []models.ImportAssignment) []string {
	if len(assignments) == 0 || s.rooms == nil {
		return nil
	}
	idx, err := s.rooms.Index(ctx)
	if err != nil {
		s.logger.Warn("room index unavailable during import preview", zap.Error(err))
		return []string{"room inventory unavailable; rooms were not matched"}
	}
	var warnings []string
	for i := range assignments {
		a := &assignments[i]
		if a.RoomNumber == "" {
			continue
		}
		match := idx.Match(a.RoomNumber)
		if match.Room == nil {
			warnings = append(warnings, fmt.Sprintf("assignment %d (%s): room %q not found in inventory", i+1, label(*a), a.RoomNumber))
			continue
		}
		id := match.Room.ID
		a.RoomID = &id
	}
	return warnings
}

func (s *TermImportService) buildTerm(t models.ImportTerm) (*models.CourtTerm, error) {
	req := CourtTermRequest{
		TermNumber: t.TermNumber,
		TermName:   t.TermName,
		StartDate:  t.StartDate,
		EndDate:    t.EndDate,
		Location:   t.Location,
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "term number, name and dates are required")
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
		Description: optionalString(t.Description),
	}, nil
}

func (s *TermImportService) buildAssignments(ctx context.Context, items []models.ImportAssignment) ([]models.TermAssignment, error) {
	out := make([]models.TermAssignment, 0, len(items))
	parts := make(map[string]struct{}, len(items))
	var idx *roommatch.Index
	for i, item := range items {
		part := strings.ToUpper(strings.TrimSpace(item.PartCode))
		if part == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("assignment %d has no part code", i+1))
		}
		if _, dup := parts[part]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("part %s appears more than once", part))
		}
		parts[part] = struct{}{}

		a := models.TermAssignment{
			PartCode:     part,
			RoomID:       optional(item.RoomID),
			RoomNumber:   strings.TrimSpace(item.RoomNumber),
			JusticeName:  strings.TrimSpace(item.JusticeName),
			ClerkNames:   cleanNames(item.ClerkNames),
			SergeantName: optionalString(item.SergeantName),
			Phone:        optionalString(item.Phone),
			Fax:          optionalString(item.Fax),
			TelExtension: optionalString(item.TelExtension),
			SortOrder:    i,
		}
		if (a.RoomID != nil || a.RoomNumber != "") && s.rooms != nil {
			if idx == nil {
				loaded, err := s.rooms.Index(ctx)
				if err != nil {
					return nil, err
				}
				idx = loaded
			}
			if a.RoomID != nil {
				room, ok := idx.Room(*a.RoomID)
				if !ok {
					return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("assignment %d (%s): room does not exist", i+1, part))
				}
				if a.RoomNumber == "" {
					a.RoomNumber = room.RoomNumber
				}
			} else if match := idx.Match(a.RoomNumber); match.Room != nil {
				id := match.Room.ID
				a.RoomID = &id
			}
		}
		out = append(out, a)
	}
	return out, nil
}

func buildPersonnel(items []models.ImportPersonnel) ([]models.TermPersonnel, error) {
	out := make([]models.TermPersonnel, 0, len(items))
	for i, item := range items {
		name := strings.Join(strings.Fields(item.Name), " ")
		if name == "" {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("personnel %d has no name", i+1))
		}
		role := models.PersonnelRole(strings.ToUpper(string(item.Role)))
		if !models.ValidPersonnelRole(role) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("personnel %d has unknown role %q", i+1, item.Role))
		}
		out = append(out, models.TermPersonnel{
			Name:       name,
			Role:       role,
			Phone:      optionalString(item.Phone),
			Extension:  optionalString(item.Extension),
			RoomNumber: optionalString(item.RoomNumber),
		})
	}
	return out, nil
}

func label(a models.ImportAssignment) string {
	if a.PartCode != "" {
		return "part " + a.PartCode
	}
	if a.JusticeName != "" {
		return a.JusticeName
	}
	return "unnamed"
}
