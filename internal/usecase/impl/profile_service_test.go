package impl

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/state"
	"harbor/internal/state/statetest"
	"harbor/internal/usecase"
)

func createTestProfileService(env *testEnv) usecase.ProfileUsecase {
	return NewProfileService(ProfileServiceParams{
		Users:  env.gw.Users,
		Ports:  env.gw.Ports,
		Blobs:  env.gw.Blobs,
		Images: env.images,
		Logger: env.logger,
	})
}

func TestProfileService_FetchProfile(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestProfileService(env)

	rec := &statetest.Recorder{}
	user, err := srv.FetchProfile(context.Background(), rec, "demo-seller")
	require.NoError(t, err)
	assert.Equal(t, "Piet", user.FirstName)
	assert.Equal(t, []state.ActionType{state.TypeFetchProfileRequest, state.TypeFetchProfileSuccess}, rec.Types())

	rec.Reset()
	_, err = srv.FetchProfile(context.Background(), rec, "ghost")
	require.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	assert.Equal(t, "User profile not found", terminalFailure(t, rec.Last()))
}

func TestProfileService_UpdateProfile_OnlySetFields(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestProfileService(env)
	rec := &statetest.Recorder{}
	phone := "+31 10 555 0199"
	ports := []string{"BEANR", "NLRTM"}

	user, err := srv.UpdateProfile(context.Background(), rec, "demo-buyer", usecase.UpdateProfileInput{Phone: &phone, PortIDs: &ports})
	require.NoError(t, err)

	assert.Equal(t, phone, user.Phone)
	assert.Equal(t, "Mara", user.FirstName)
	assert.Equal(t, "9321483", user.VesselIMO)
	require.Len(t, user.Ports, 2)
	assert.Equal(t, "BEANR", user.Ports[0].ID)
	assert.Equal(t, []state.ActionType{state.TypeUpdateProfileRequest, state.TypeUpdateProfileSuccess}, rec.Types())
}

func TestProfileService_UpdateProfile_Errors(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestProfileService(env)

	imo := "12"
	rec := &statetest.Recorder{}
	_, err := srv.UpdateProfile(context.Background(), rec, "demo-buyer", usecase.UpdateProfileInput{VesselIMO: &imo})
	require.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	assert.Empty(t, rec.Actions())

	ports := []string{"ZZZZZ"}
	_, err = srv.UpdateProfile(context.Background(), rec, "demo-buyer", usecase.UpdateProfileInput{PortIDs: &ports})
	require.ErrorIs(t, err, domainerrors.ErrUserPortNotFound)
	assert.Equal(t, []state.ActionType{state.TypeUpdateProfileRequest, state.TypeUpdateProfileFailure}, rec.Types())
}

func TestProfileService_UpdateProfilePhoto(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestProfileService(env)
	rec := &statetest.Recorder{}
	ctx := context.Background()

	url, err := srv.UpdateProfilePhoto(ctx, rec, "demo-buyer", pngUpload(t, "me.png", 30))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://blobs.test/"))
	success, ok := rec.Last().(state.UpdateProfilePhotoSuccess)
	require.True(t, ok)
	assert.Equal(t, url, success.URL)

	contentType, data, found := env.store.Blob("users/demo-buyer/profilePhoto/me_png")
	require.True(t, found)
	assert.Equal(t, "image/jpeg", contentType)
	assert.NotEmpty(t, data)

	user, err := env.gw.Users.FindByID(ctx, "demo-buyer")
	require.NoError(t, err)
	assert.Equal(t, url, user.ProfilePhoto)
}

func TestProfileService_RegisterPushToken(t *testing.T) {
	env := newTestEnv(t)
	srv := createTestProfileService(env)
	ctx := context.Background()

	require.NoError(t, srv.RegisterPushToken(ctx, "demo-seller", "fcm-1"))
	require.ErrorIs(t, srv.RegisterPushToken(ctx, "demo-seller", ""), domainerrors.ErrValidationFailed)

	user, err := env.gw.Users.FindByID(ctx, "demo-seller")
	require.NoError(t, err)
	assert.Equal(t, []string{"fcm-1"}, user.FCMTokens)
}
