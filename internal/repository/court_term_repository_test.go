package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
)

func sampleTerm() *models.CourtTerm {
	return &models.CourtTerm{
		TermNumber: "IV",
		TermName:   "Term IV 2025",
		StartDate:  time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		Location:   "60 Centre Street",
	}
}

func TestCourtTermRepositoryListActiveOn(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourtTermRepository(db)

	day := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "term_number", "term_name", "start_date", "end_date", "location", "description", "created_at", "updated_at"}).
		AddRow("t1", "IV", "Term IV", day, day, "", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM court_terms WHERE 1=1 AND start_date <= $1 AND end_date >= $1 ORDER BY start_date DESC LIMIT 20 OFFSET 0")).
		WithArgs(day).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM court_terms WHERE 1=1 AND start_date <= $1 AND end_date >= $1")).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	terms, total, err := repo.List(context.Background(), models.CourtTermFilter{ActiveOn: &day})
	require.NoError(t, err)
	assert.Len(t, terms, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourtTermRepositoryCreateWithDetailsCommits(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourtTermRepository(db)

	docID := "doc-1"
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO court_terms").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO term_assignments").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO term_personnel").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE term_documents SET term_id = $2 WHERE id = $1")).
		WithArgs(docID, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	term := sampleTerm()
	assignments := []models.TermAssignment{{PartCode: "12", JusticeName: "John Smith", RoomNumber: "300"}}
	personnel := []models.TermPersonnel{{Name: "John Smith", Role: models.PersonnelRoleJustice}}

	require.NoError(t, repo.CreateWithDetails(context.Background(), term, assignments, personnel, &docID))
	assert.NotEmpty(t, term.ID)
	assert.Equal(t, term.ID, assignments[0].TermID)
	assert.Equal(t, term.ID, personnel[0].TermID)
	assert.NotNil(t, assignments[0].ClerkNames)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourtTermRepositoryCreateWithDetailsRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourtTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO court_terms").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO term_assignments").WillReturnError(errors.New("duplicate part"))
	mock.ExpectRollback()

	assignments := []models.TermAssignment{{PartCode: "12", JusticeName: "John Smith"}}
	err := repo.CreateWithDetails(context.Background(), sampleTerm(), assignments, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert imported assignment 12")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourtTermRepositoryExistsByNumber(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourtTermRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM court_terms WHERE UPPER(term_number) = UPPER($1) AND id <> $2 LIMIT 1")).
		WithArgs("IV", "t1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByNumber(context.Background(), "IV", "t1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
