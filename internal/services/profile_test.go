package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"therapy-admin-server/internal/models"
	"therapy-admin-server/internal/testutil"
)

func TestUpdateOwnNormalisesSpecialty(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	therapist := testutil.CreateProfile(t, db, "sam", models.RoleTherapist, models.ProfileStatusActive)
	staff := testutil.CreateProfile(t, db, "tia", models.RoleStaffAdmin, models.ProfileStatusActive)

	got, err := svc.UpdateOwn(ctx, therapist.ID, ProfileInput{FullName: " Sam Lee ", Specialty: "Psychologist"})
	require.NoError(t, err)
	assert.Equal(t, "Sam Lee", got.FullName)
	require.NotNil(t, got.Specialty)
	assert.Equal(t, "Psychologist", *got.Specialty)

	got, err = svc.UpdateOwn(ctx, therapist.ID, ProfileInput{FullName: "Sam Lee"})
	require.NoError(t, err)
	require.NotNil(t, got.Specialty)
	assert.Equal(t, "Psychologist", *got.Specialty)

	got, err = svc.UpdateOwn(ctx, staff.ID, ProfileInput{FullName: "Tia", Specialty: "Counselor"})
	require.NoError(t, err)
	assert.Nil(t, got.Specialty)
	assert.False(t, got.IsTherapist())

	_, err = svc.UpdateOwn(ctx, "missing", ProfileInput{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAvatar(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	svc := NewProfileService(db)
	p := testutil.CreateProfile(t, db, "uma", models.RoleTherapist, models.ProfileStatusActive)

	require.NoError(t, svc.SetAvatar(ctx, p.ID, "http://cdn/avatars/x.png"))
	got, err := svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/avatars/x.png", got.AvatarURL)

	assert.ErrorIs(t, svc.SetAvatar(ctx, "missing", "u"), ErrNotFound)
}

func TestContentAuthorLookups(t *testing.T) {
	ctx := context.Background()
	svc := NewContentService(testutil.NewDB(t), OrderByCount)
	m, err := svc.CreateModule(ctx, "owner-1", ModuleInput{Title: "Mine"})
	require.NoError(t, err)
	l, err := svc.CreateLesson(ctx, m.ID, LessonInput{Title: "L"})
	require.NoError(t, err)
	st, err := svc.CreateStep(ctx, l.ID, StepInput{Type: models.StepTypeText})
	require.NoError(t, err)

	author, err := svc.LessonAuthor(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", author)

	author, err = svc.StepAuthor(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", author)

	_, err = svc.LessonAuthor(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
