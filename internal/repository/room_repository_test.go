package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

var roomDetailColumns = []string{"id", "floor_id", "room_number", "name", "room_type", "status", "description",
	"phone_number", "current_function", "is_storage", "storage_capacity", "storage_type", "storage_notes",
	"courtroom_photos", "created_at", "updated_at", "floor_name", "floor_number", "building_id", "building_name"}

func TestRoomRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(roomDetailColumns).
		AddRow("r1", "f1", "300", "Courtroom 300", "COURTROOM", "ACTIVE", nil, nil, nil, false, nil, nil, nil,
			[]byte(`{"judge_view":"rooms/r1/judge.png"}`), now, now, "Third", 3, "b1", "Main")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND r.floor_id = $1 AND r.room_type = $2 ORDER BY r.room_number ASC LIMIT 20 OFFSET 0")).
		WithArgs("f1", models.RoomTypeCourtroom).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM rooms r JOIN floors f ON f.id = r.floor_id JOIN buildings b ON b.id = f.building_id WHERE 1=1 AND r.floor_id = $1 AND r.room_type = $2")).
		WithArgs("f1", models.RoomTypeCourtroom).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rooms, total, err := repo.List(context.Background(), models.RoomFilter{FloorID: "f1", RoomType: models.RoomTypeCourtroom})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Main", rooms[0].BuildingName)
	require.NotNil(t, rooms[0].CourtroomPhotos.JudgeView)
	assert.Equal(t, "rooms/r1/judge.png", *rooms[0].CourtroomPhotos.JudgeView)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryUpdatePhotos(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	path := "rooms/r1/audience.jpg"
	photos := models.CourtroomPhotos{AudienceView: &path}
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rooms SET courtroom_photos = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("r1", []byte(`{"audience_view":"rooms/r1/audience.jpg"}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePhotos(context.Background(), "r1", photos))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryExistsByNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM rooms WHERE floor_id = $1 AND UPPER(room_number) = UPPER($2) LIMIT 1")).
		WithArgs("f1", "300").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByNumber(context.Background(), "f1", "300", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
