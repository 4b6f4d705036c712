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

func TestTermPersonnelServiceLifecycle(t *testing.T) {
	terms := newFakeTermRepo()
	term := &models.CourtTerm{TermNumber: "II", StartDate: time.Now(), EndDate: time.Now()}
	require.NoError(t, terms.Create(context.Background(), term))
	svc := NewTermPersonnelService(newFakePersonnelRepo(), terms, nil, nil)
	ctx := context.Background()

	created, err := svc.Create(ctx, term.ID, TermPersonnelRequest{Name: " Mary Major ", Role: "chief_clerk", Extension: strPtr("4410")})
	require.NoError(t, err)
	assert.Equal(t, "Mary Major", created.Name)
	assert.Equal(t, models.PersonnelRoleChiefClerk, created.Role)

	_, err = svc.Create(ctx, term.ID, TermPersonnelRequest{Name: "Someone", Role: "BAILIFF"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(ctx, "missing", TermPersonnelRequest{Name: "Someone", Role: models.PersonnelRoleClerk})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	updated, err := svc.Update(ctx, created.ID, TermPersonnelRequest{Name: "Mary Major", Role: models.PersonnelRoleAdministrativeJudge})
	require.NoError(t, err)
	assert.Equal(t, models.PersonnelRoleAdministrativeJudge, updated.Role)
	assert.Nil(t, updated.Extension)

	list, err := svc.ListByTerm(ctx, term.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	list, err = svc.ListByTerm(ctx, term.ID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
