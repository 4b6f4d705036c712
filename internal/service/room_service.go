package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/court-facilities-api/internal/models"
	"github.com/noah-isme/court-facilities-api/internal/roommatch"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

const (
	roomCachePattern   = "rooms:*"
	roomListNamespace  = "rooms:list"
	roomIndexCacheKey  = "rooms:index"
	defaultPhotoMaxLen = 10 * 1024 * 1024
)

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error)
	ListAll(ctx context.Context) ([]models.RoomDetail, error)
	FindByID(ctx context.Context, id string) (*models.RoomDetail, error)
	ExistsByNumber(ctx context.Context, floorID, roomNumber, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	UpdateStatus(ctx context.Context, id string, status models.RoomStatus) error
	UpdatePhotos(ctx context.Context, id string, photos models.CourtroomPhotos) error
	Delete(ctx context.Context, id string) error
}

type floorLookup interface {
	FindFloorByID(ctx context.Context, id string) (*models.Floor, error)
}

// RoomRequest is the payload for creating or replacing a room.
type RoomRequest struct {
	FloorID         string            `json:"floor_id" validate:"required"`
	RoomNumber      string            `json:"room_number" validate:"required,max=50"`
	Name            string            `json:"name" validate:"required,max=200"`
	RoomType        models.RoomType   `json:"room_type" validate:"required"`
	Status          models.RoomStatus `json:"status"`
	Description     *string           `json:"description"`
	PhoneNumber     *string           `json:"phone_number" validate:"omitempty,max=50"`
	CurrentFunction *string           `json:"current_function"`
	IsStorage       bool              `json:"is_storage"`
	StorageCapacity *int              `json:"storage_capacity" validate:"omitempty,gte=0"`
	StorageType     *string           `json:"storage_type"`
	StorageNotes    *string           `json:"storage_notes"`
}

// RoomStatusRequest changes only a room's status.
type RoomStatusRequest struct {
	Status models.RoomStatus `json:"status" validate:"required"`
}

// RoomServiceConfig tunes caching and photo handling.
type RoomServiceConfig struct {
	CacheTTL         time.Duration
	MaxPhotoSize     int64
	AllowedPhotoMIME []string
	APIPrefix        string
}

// RoomService manages the room inventory and courtroom photos.
type RoomService struct {
	repo      roomRepository
	floors    floorLookup
	cache     *CacheService
	storage   fileStorage
	signer    urlSigner
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RoomServiceConfig
	photoMIME map[string]struct{}
	now       func() time.Time
}

// NewRoomService constructs a RoomService.
func NewRoomService(repo roomRepository, floors floorLookup, cache *CacheService, storage fileStorage, signer urlSigner, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg RoomServiceConfig) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxPhotoSize <= 0 {
		cfg.MaxPhotoSize = defaultPhotoMaxLen
	}
	if len(cfg.AllowedPhotoMIME) == 0 {
		cfg.AllowedPhotoMIME = []string{"image/png", "image/jpeg"}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	return &RoomService{
		repo:      repo,
		floors:    floors,
		cache:     cache,
		storage:   storage,
		signer:    signer,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		photoMIME: mimeSet(cfg.AllowedPhotoMIME),
		now:       time.Now,
	}
}

type cachedRoomPage struct {
	Rooms []models.RoomDetail `json:"rooms"`
	Total int                 `json:"total"`
}

// List returns paginated rooms, served from cache when possible. The boolean
// reports a cache hit.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, *models.Pagination, bool, error) {
	if filter.RoomType != "" && !models.ValidRoomType(filter.RoomType) {
		return nil, nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid room_type filter")
	}
	if filter.Status != "" && !models.ValidRoomStatus(filter.Status) {
		return nil, nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid status filter")
	}

	var page cachedRoomPage
	hit, err := s.cache.Remember(ctx, Key(roomListNamespace, filter), s.cfg.CacheTTL, &page, func() error {
		rooms, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return err
		}
		if rooms == nil {
			rooms = []models.RoomDetail{}
		}
		page = cachedRoomPage{Rooms: rooms, Total: total}
		return nil
	})
	if err != nil {
		return nil, nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	return page.Rooms, buildPagination(filter.Page, filter.PageSize, page.Total), hit, nil
}

// Get returns a room with floor and building names.
func (s *RoomService) Get(ctx context.Context, id string) (*models.RoomDetail, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create adds a room to a floor.
func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.RoomDetail, error) {
	room := &models.Room{}
	if err := s.apply(ctx, room, req, ""); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	s.invalidate(ctx)
	return s.Get(ctx, room.ID)
}

// Update replaces a room's attributes.
func (s *RoomService) Update(ctx context.Context, id string, req RoomRequest) (*models.RoomDetail, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	room := existing.Room
	if err := s.apply(ctx, &room, req, id); err != nil {
		return nil, err
	}
	if room.RoomType != models.RoomTypeCourtroom && !room.CourtroomPhotos.Empty() {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "remove courtroom photos before changing the room type")
	}
	if err := s.repo.Update(ctx, &room); err != nil {
		return nil, mapMutationError(err, "room not found", "failed to update room")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// UpdateStatus changes a room's availability.
func (s *RoomService) UpdateStatus(ctx context.Context, id string, req RoomStatusRequest) (*models.RoomDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.ValidRoomStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid room status")
	}
	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, mapMutationError(err, "room not found", "failed to update room status")
	}
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes a room and its stored photos.
func (s *RoomService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapMutationError(err, "room not found", "failed to delete room")
	}
	for _, view := range []models.PhotoView{models.PhotoViewJudge, models.PhotoViewAudience} {
		s.removeFile(room.CourtroomPhotos.Get(view))
	}
	s.invalidate(ctx)

	if s.audit != nil {
		log := &models.AuditLog{
			Action:     models.AuditActionRoomDelete,
			Resource:   "room",
			ResourceID: &id,
			OldValues:  auditPayload(map[string]string{"room_number": room.RoomNumber, "building": room.BuildingName}),
		}
		if actor != nil {
			log.UserID = &actor.UserID
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record room delete audit log", zap.Error(err))
		}
	}
	return nil
}

// Index returns the room match index, cached alongside the room listings.
func (s *RoomService) Index(ctx context.Context) (*roommatch.Index, error) {
	var rooms []models.RoomDetail
	_, err := s.cache.Remember(ctx, roomIndexCacheKey, s.cfg.CacheTTL, &rooms, func() error {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return err
		}
		rooms = all
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	return roommatch.NewIndex(rooms), nil
}

// MatchRoomNumber resolves free text such as "Rm. 1234" to a room.
func (s *RoomService) MatchRoomNumber(ctx context.Context, query string) (models.RoomMatch, error) {
	if strings.TrimSpace(query) == "" {
		return models.RoomMatch{}, appErrors.Clone(appErrors.ErrValidation, "query is required")
	}
	idx, err := s.Index(ctx)
	if err != nil {
		return models.RoomMatch{}, err
	}
	return idx.Match(query), nil
}

// UploadPhoto stores a courtroom photo for the given view, replacing any
// previous one.
func (s *RoomService) UploadPhoto(ctx context.Context, id string, view models.PhotoView, upload Upload) (*models.RoomDetail, error) {
	if !models.ValidPhotoView(view) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "view must be judge_view or audience_view")
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if room.RoomType != models.RoomTypeCourtroom {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "photos are only kept for courtrooms")
	}
	mimeType, err := checkUpload(upload, s.cfg.MaxPhotoSize, s.photoMIME)
	if err != nil {
		return nil, err
	}

	relPath := path.Join("rooms", id, fmt.Sprintf("%s_%d_%s%s", view, s.now().Unix(), randomSuffix(), mimeExtension(mimeType)))
	if _, err := s.storage.SaveStream(relPath, upload.Content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store photo")
	}

	previous := room.CourtroomPhotos.Get(view)
	photos := room.CourtroomPhotos
	photos.Set(view, &relPath)
	if err := s.repo.UpdatePhotos(ctx, id, photos); err != nil {
		s.removeFile(&relPath)
		return nil, mapMutationError(err, "room not found", "failed to save photo reference")
	}
	s.removeFile(previous)
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// DeletePhoto removes a courtroom photo.
func (s *RoomService) DeletePhoto(ctx context.Context, id string, view models.PhotoView) error {
	if !models.ValidPhotoView(view) {
		return appErrors.Clone(appErrors.ErrValidation, "view must be judge_view or audience_view")
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	current := room.CourtroomPhotos.Get(view)
	if current == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	photos := room.CourtroomPhotos
	photos.Set(view, nil)
	if err := s.repo.UpdatePhotos(ctx, id, photos); err != nil {
		return mapMutationError(err, "room not found", "failed to clear photo reference")
	}
	s.removeFile(current)
	s.invalidate(ctx)
	return nil
}

// PhotoURL signs a download link for a courtroom photo.
func (s *RoomService) PhotoURL(ctx context.Context, id string, view models.PhotoView) (*SignedURL, error) {
	if !models.ValidPhotoView(view) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "view must be judge_view or audience_view")
	}
	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	current := room.CourtroomPhotos.Get(view)
	if current == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
	}
	token, expiresAt, err := s.signer.Generate(id, *current)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign photo url")
	}
	return &SignedURL{URL: fmt.Sprintf("%s/files/photos/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token), ExpiresAt: expiresAt}, nil
}

// OpenPhoto validates a signed token and opens the photo it names. Tokens for a
// photo that has since been replaced are rejected.
func (s *RoomService) OpenPhoto(ctx context.Context, token string) (*FileDownload, error) {
	roomID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	room, err := s.Get(ctx, roomID)
	if err != nil {
		return nil, err
	}
	judge, audience := room.CourtroomPhotos.JudgeView, room.CourtroomPhotos.AudienceView
	if (judge == nil || *judge != relPath) && (audience == nil || *audience != relPath) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "photo no longer exists")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open photo")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat photo")
	}
	mimeType := "image/jpeg"
	if strings.HasSuffix(relPath, ".png") {
		mimeType = "image/png"
	}
	return &FileDownload{File: file, Filename: path.Base(relPath), MimeType: mimeType, SizeBytes: info.Size()}, nil
}

func (s *RoomService) apply(ctx context.Context, room *models.Room, req RoomRequest, excludeID string) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	if !models.ValidRoomType(req.RoomType) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid room_type")
	}
	status := req.Status
	if status == "" {
		status = models.RoomStatusActive
	}
	if !models.ValidRoomStatus(status) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid room status")
	}
	if !req.IsStorage && (req.StorageCapacity != nil || optional(req.StorageType) != nil || optional(req.StorageNotes) != nil) {
		return appErrors.Clone(appErrors.ErrValidation, "storage attributes require is_storage")
	}

	if _, err := s.floors.FindFloorByID(ctx, req.FloorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "floor does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}

	number := strings.ToUpper(strings.TrimSpace(req.RoomNumber))
	exists, err := s.repo.ExistsByNumber(ctx, req.FloorID, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "room number already exists on this floor")
	}

	room.FloorID = req.FloorID
	room.RoomNumber = number
	room.Name = strings.TrimSpace(req.Name)
	room.RoomType = req.RoomType
	room.Status = status
	room.Description = optional(req.Description)
	room.PhoneNumber = optional(req.PhoneNumber)
	room.CurrentFunction = optional(req.CurrentFunction)
	room.IsStorage = req.IsStorage
	room.StorageCapacity = req.StorageCapacity
	room.StorageType = optional(req.StorageType)
	room.StorageNotes = optional(req.StorageNotes)
	return nil
}

func (s *RoomService) invalidate(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, roomCachePattern)
}

func (s *RoomService) removeFile(relPath *string) {
	if relPath == nil || s.storage == nil {
		return
	}
	if err := s.storage.Delete(*relPath); err != nil {
		s.logger.Warn("failed to remove photo file", zap.String("path", *relPath), zap.Error(err))
	}
}
