package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermAssignmentRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "term_id", "part_code", "room_id", "room_number", "justice_name", "clerk_names",
		"sergeant_name", "phone", "fax", "tel_extension", "sort_order", "created_at", "updated_at", "room_name", "floor_name", "building_name"}).
		AddRow("a1", "t1", "12", "r1", "300", "John Smith", "{\"Jane Doe\",\"Mark Lee\"}", nil, nil, nil, nil, 0, now, now, "Courtroom 300", "Third", "Main")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.term_id = $1 ORDER BY a.sort_order ASC, a.part_code ASC")).
		WithArgs("t1").
		WillReturnRows(rows)

	items, err := repo.ListByTerm(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, pq.StringArray{"Jane Doe", "Mark Lee"}, items[0].ClerkNames)
	require.NotNil(t, items[0].RoomName)
	assert.Equal(t, "Courtroom 300", *items[0].RoomName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermAssignmentRepositoryReorder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermAssignmentRepository(db)

	query := regexp.QuoteMeta("UPDATE term_assignments SET sort_order = $3, updated_at = $4 WHERE id = $1 AND term_id = $2")
	mock.ExpectBegin()
	mock.ExpectExec(query).WithArgs("a2", "t1", 0, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("a1", "t1", 1, sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Reorder(context.Background(), "t1", []string{"a2", "a1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermAssignmentRepositoryReorderForeignID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE term_assignments SET sort_order").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Reorder(context.Background(), "t1", []string{"other-term-assignment"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermAssignmentRepositoryNextSortOrder(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(sort_order), -1) + 1 FROM term_assignments WHERE term_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	next, err := repo.NextSortOrder(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 3, next)
	assert.NoError(t, mock.ExpectationsWereMet())
}
