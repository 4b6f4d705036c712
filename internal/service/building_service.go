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

type buildingRepository interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, int, error)
	FindByID(ctx context.Context, id string) (*models.Building, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, building *models.Building) error
	Delete(ctx context.Context, id string) error
	CountFloors(ctx context.Context, buildingID string) (int, error)
	ListFloors(ctx context.Context, buildingID string) ([]models.Floor, error)
	FindFloorByID(ctx context.Context, id string) (*models.Floor, error)
	FloorNumberExists(ctx context.Context, buildingID string, number int, excludeID string) (bool, error)
	CreateFloor(ctx context.Context, floor *models.Floor) error
	UpdateFloor(ctx context.Context, floor *models.Floor) error
	DeleteFloor(ctx context.Context, id string) error
	CountRoomsOnFloor(ctx context.Context, floorID string) (int, error)
}

// BuildingRequest is the payload for creating or updating a building.
type BuildingRequest struct {
	Name    string                `json:"name" validate:"required,max=200"`
	Address string                `json:"address" validate:"max=500"`
	Status  models.BuildingStatus `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
}

// FloorRequest is the payload for creating or updating a floor.
type FloorRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	FloorNumber int    `json:"floor_number" validate:"gte=-10,lte=200"`
}

// BuildingService manages buildings and their floors.
type BuildingService struct {
	repo      buildingRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBuildingService constructs a BuildingService. Floor and building changes
// invalidate room listings because those embed floor and building names.
func NewBuildingService(repo buildingRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BuildingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildingService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns paginated buildings.
func (s *BuildingService) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, *models.Pagination, error) {
	buildings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list buildings")
	}
	return buildings, buildPagination(filter.Page, filter.PageSize, total), nil
}

// Get returns a building with its floors.
func (s *BuildingService) Get(ctx context.Context, id string) (*models.BuildingDetail, error) {
	building, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	floors, err := s.repo.ListFloors(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floors")
	}
	if floors == nil {
		floors = []models.Floor{}
	}
	return &models.BuildingDetail{Building: *building, Floors: floors}, nil
}

// Create adds a building with a unique name.
func (s *BuildingService) Create(ctx context.Context, req BuildingRequest) (*models.Building, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid building payload")
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureUniqueName(ctx, name, ""); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.BuildingStatusActive
	}
	building := &models.Building{Name: name, Address: strings.TrimSpace(req.Address), Status: status}
	if err := s.repo.Create(ctx, building); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create building")
	}
	return building, nil
}

// Update modifies a building.
func (s *BuildingService) Update(ctx context.Context, id string, req BuildingRequest) (*models.Building, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid building payload")
	}
	building, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if !strings.EqualFold(name, building.Name) {
		if err := s.ensureUniqueName(ctx, name, id); err != nil {
			return nil, err
		}
	}
	building.Name = name
	building.Address = strings.TrimSpace(req.Address)
	if req.Status != "" {
		building.Status = req.Status
	}
	if err := s.repo.Update(ctx, building); err != nil {
		return nil, mapMutationError(err, "building not found", "failed to update building")
	}
	s.invalidateRooms(ctx)
	return building, nil
}

// Delete removes a building that has no floors.
func (s *BuildingService) Delete(ctx context.Context, id string) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountFloors(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check floors")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "building still has floors")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapMutationError(err, "building not found", "failed to delete building")
	}
	return nil
}

// ListFloors returns the floors of a building ordered by number.
func (s *BuildingService) ListFloors(ctx context.Context, buildingID string) ([]models.Floor, error) {
	if _, err := s.find(ctx, buildingID); err != nil {
		return nil, err
	}
	floors, err := s.repo.ListFloors(ctx, buildingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list floors")
	}
	if floors == nil {
		floors = []models.Floor{}
	}
	return floors, nil
}

// CreateFloor adds a floor with a number unique within the building.
func (s *BuildingService) CreateFloor(ctx context.Context, buildingID string, req FloorRequest) (*models.Floor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid floor payload")
	}
	if _, err := s.find(ctx, buildingID); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueFloor(ctx, buildingID, req.FloorNumber, ""); err != nil {
		return nil, err
	}
	floor := &models.Floor{BuildingID: buildingID, Name: strings.TrimSpace(req.Name), FloorNumber: req.FloorNumber}
	if err := s.repo.CreateFloor(ctx, floor); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create floor")
	}
	return floor, nil
}

// UpdateFloor renames or renumbers a floor.
func (s *BuildingService) UpdateFloor(ctx context.Context, id string, req FloorRequest) (*models.Floor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid floor payload")
	}
	floor, err := s.findFloor(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FloorNumber != floor.FloorNumber {
		if err := s.ensureUniqueFloor(ctx, floor.BuildingID, req.FloorNumber, id); err != nil {
			return nil, err
		}
	}
	floor.Name = strings.TrimSpace(req.Name)
	floor.FloorNumber = req.FloorNumber
	if err := s.repo.UpdateFloor(ctx, floor); err != nil {
		return nil, mapMutationError(err, "floor not found", "failed to update floor")
	}
	s.invalidateRooms(ctx)
	return floor, nil
}

// DeleteFloor removes a floor that has no rooms.
func (s *BuildingService) DeleteFloor(ctx context.Context, id string) error {
	if _, err := s.findFloor(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountRoomsOnFloor(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check rooms")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "floor still has rooms")
	}
	if err := s.repo.DeleteFloor(ctx, id); err != nil {
		return mapMutationError(err, "floor not found", "failed to delete floor")
	}
	return nil
}

func (s *BuildingService) find(ctx context.Context, id string) (*models.Building, error) {
	building, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "building not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load building")
	}
	return building, nil
}

func (s *BuildingService) findFloor(ctx context.Context, id string) (*models.Floor, error) {
	floor, err := s.repo.FindFloorByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "floor not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load floor")
	}
	return floor, nil
}

func (s *BuildingService) ensureUniqueName(ctx context.Context, name, excludeID string) error {
	exists, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check building name")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "building name already exists")
	}
	return nil
}

func (s *BuildingService) ensureUniqueFloor(ctx context.Context, buildingID string, number int, excludeID string) error {
	exists, err := s.repo.FloorNumberExists(ctx, buildingID, number, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check floor number")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "floor number already exists in building")
	}
	return nil
}

func (s *BuildingService) invalidateRooms(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, roomCachePattern)
}

// mapMutationError converts a repository write error; sql.ErrNoRows means the
// row vanished between load and write.
func mapMutationError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}
