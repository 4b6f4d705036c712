package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

func TestTermPersonnelRepositoryListByTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermPersonnelRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "term_id", "name", "role", "phone", "extension", "room_number", "created_at", "updated_at"}).
		AddRow("p1", "term-1", "Hon. A. Rivera", "JUSTICE", nil, nil, "1234A", now, now).
		AddRow("p2", "term-1", "M. Chen", "CLERK", "212-555-0100", "4410", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM term_personnel WHERE term_id = $1 ORDER BY role ASC, name ASC")).
		WithArgs("term-1").
		WillReturnRows(rows)

	items, err := repo.ListByTerm(context.Background(), "term-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, models.PersonnelRoleJustice, items[0].Role)
	require.NotNil(t, items[0].RoomNumber)
	assert.Equal(t, "1234A", *items[0].RoomNumber)
	assert.Nil(t, items[0].Phone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermPersonnelRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermPersonnelRepository(db)

	mock.ExpectExec("INSERT INTO term_personnel").
		WillReturnResult(sqlmock.NewResult(1, 1))

	p := &models.TermPersonnel{TermID: "term-1", Name: "J. Ortiz", Role: models.PersonnelRoleSergeant}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermPersonnelRepositoryUpdateMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermPersonnelRepository(db)

	mock.ExpectExec("UPDATE term_personnel SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.TermPersonnel{ID: "missing", Name: "X", Role: models.PersonnelRoleOther})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTermPersonnelRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermPersonnelRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM term_personnel WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
