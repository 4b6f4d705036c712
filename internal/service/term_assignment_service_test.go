package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/court-facilities-api/internal/models"
	appErrors "github.com/noah-isme/court-facilities-api/pkg/errors"
)

type assignmentFixture struct {
	svc    *TermAssignmentService
	repo   *fakeAssignmentRepo
	rooms  *roomFixture
	termID string
	roomID string
}

func newAssignmentFixture(t *testing.T) assignmentFixture {
	t.Helper()
	terms := newFakeTermRepo()
	term := &models.CourtTerm{TermNumber: "IV", StartDate: time.Now(), EndDate: time.Now()}
	require.NoError(t, terms.Create(context.Background(), term))

	rooms := newRoomFixture(t)
	room, err := rooms.svc.Create(context.Background(), courtroomRequest(rooms.floor, "1234A"))
	require.NoError(t, err)

	repo := newFakeAssignmentRepo()
	return assignmentFixture{
		svc:    NewTermAssignmentService(repo, terms, rooms.svc, nil, nil),
		repo:   repo,
		rooms:  &rooms,
		termID: term.ID,
		roomID: room.ID,
	}
}

func TestTermAssignmentServiceCreateMatchesRoomText(t *testing.T) {
	fx := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.termID, TermAssignmentRequest{
		PartCode:    "part 1",
		RoomNumber:  "Rm. 1234-a",
		JusticeName: "Hon. A. Smith",
		ClerkNames:  []string{" J.  Doe ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "PART 1", created.PartCode)
	require.NotNil(t, created.RoomID)
	assert.Equal(t, fx.roomID, *created.RoomID)
	assert.Equal(t, "Rm. 1234-a", created.RoomNumber)
	assert.Equal(t, []string{"J. Doe"}, []string(created.ClerkNames))
	assert.Equal(t, 1, created.SortOrder)

	unmatched, err := fx.svc.Create(ctx, fx.termID, TermAssignmentRequest{PartCode: "2", RoomNumber: "Room 9999"})
	require.NoError(t, err)
	assert.Nil(t, unmatched.RoomID)
	assert.Equal(t, "Room 9999", unmatched.RoomNumber)
	assert.Equal(t, 2, unmatched.SortOrder)

	_, err = fx.svc.Create(ctx, fx.termID, TermAssignmentRequest{PartCode: "PART 1"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = fx.svc.Create(ctx, "no-term", TermAssignmentRequest{PartCode: "3"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTermAssignmentServiceExplicitRoom(t *testing.T) {
	fx := newAssignmentFixture(t)
	ctx := context.Background()

	created, err := fx.svc.Create(ctx, fx.termID, TermAssignmentRequest{PartCode: "7", RoomID: strPtr(fx.roomID)})
	require.NoError(t, err)
	assert.Equal(t, "1234A", created.RoomNumber)

	_, err = fx.svc.Create(ctx, fx.termID, TermAssignmentRequest{PartCode: "8", RoomID: strPtr("room-missing")})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	updated, err := fx.svc.Update(ctx, created.ID, TermAssignmentRequest{PartCode: "7", RoomNumber: "Courtroom annex"})
	require.NoError(t, err)
	assert.Nil(t, updated.RoomID)
	assert.Equal(t, created.SortOrder, updated.SortOrder)
}

func TestTermAssignmentServiceReorder(t *testing.T) {
	fx := newAssignmentFixture(t)
	ctx := context.Background()
	var ids []string
	for _, part := range []string{"1", "2", "3"} {
		a, err := fx.svc.Create(ctx, fx.termID, TermAssignmentRequest{PartCode: part})
		require.NoError(t, err)
		ids = append(ids, a.ID)
	}

	_, err := fx.svc.Reorder(ctx, fx.termID, ReorderRequest{AssignmentIDs: ids[:2]})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = fx.svc.Reorder(ctx, fx.termID, ReorderRequest{AssignmentIDs: []string{ids[0], ids[0], ids[1]}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = fx.svc.Reorder(ctx, fx.termID, ReorderRequest{AssignmentIDs: []string{ids[0], ids[1], "asg-foreign"}})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	ordered, err := fx.svc.Reorder(ctx, fx.termID, ReorderRequest{AssignmentIDs: []string{ids[2], ids[0], ids[1]}})
	require.NoError(t, err)
	require.Len(t, ordered, 3)
	assert.Equal(t, []string{"3", "1", "2"}, []string{ordered[0].PartCode, ordered[1].PartCode, ordered[2].PartCode})

	require.NoError(t, fx.svc.Delete(ctx, ids[0]))
	err = fx.svc.Delete(ctx, ids[0])
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
