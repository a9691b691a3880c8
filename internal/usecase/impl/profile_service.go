package impl

import (
	"bytes"
	"context"
	"log/slog"
	"path"

	"go.uber.org/fx"

	"harbor/internal/domain/entity"
	domainerrors "harbor/internal/domain/errors"
	"harbor/internal/domain/repository"
	"harbor/internal/domain/service"
	"harbor/internal/errors"
	"harbor/internal/state"
	"harbor/internal/usecase"
	"harbor/internal/util"
)

// ProfileServiceParams holds dependencies for the profile action creators, injected by Fx
type ProfileServiceParams struct {
	fx.In

	Users  repository.UserRepository
	Ports  repository.PortRepository
	Blobs  service.BlobStorage
	Images service.ImageProcessor
	Logger *slog.Logger
}

// profileService implements the ProfileUsecase interface.
type profileService struct {
	users  repository.UserRepository
	ports  repository.PortRepository
	blobs  service.BlobStorage
	images service.ImageProcessor
	logger *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		users:  params.Users,
		ports:  params.Ports,
		blobs:  params.Blobs,
		images: params.Images,
		logger: params.Logger,
	}
}

func (srv *profileService) FetchProfile(ctx context.Context, d state.Dispatcher, uid string) (*entity.User, error) {
	loggerFrom(ctx, srv.logger).Debug("Getting user profile", slog.String("user_id", uid))
	d.Dispatch(state.FetchProfileRequest{})

	user, err := srv.users.FindByID(ctx, uid)
	if err != nil {
		err = domainError(err)
		d.Dispatch(state.FetchProfileFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.FetchProfileSuccess{Profile: user})

	return user, nil
}

func (srv *profileService) UpdateProfile(ctx context.Context, d state.Dispatcher, uid string, input usecase.UpdateProfileInput) (*entity.User, error) {
	if err := usecase.ValidateInput(input); err != nil {
		return nil, err
	}

	logger := loggerFrom(ctx, srv.logger)
	logger.Info("Updating user profile", slog.String("user_id", uid))
	d.Dispatch(state.UpdateProfileRequest{})

	user, err := srv.updateProfile(ctx, uid, input)
	if err != nil {
		logger.Warn("Profile update failed", slog.String("user_id", uid), slog.Any("error", err))
		d.Dispatch(state.UpdateProfileFailure{Failed: state.Fail(err)})

		return nil, err
	}

	d.Dispatch(state.UpdateProfileSuccess{Profile: user})

	return user, nil
}

func (srv *profileService) updateProfile(ctx context.Context, uid string, input usecase.UpdateProfileInput) (*entity.User, error) {
	update := repository.UserUpdate{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Phone:      input.Phone,
		VesselIMO:  input.VesselIMO,
		VesselMMSI: input.VesselMMSI,
	}
	if input.PortIDs != nil {
		ports, err := resolvePorts(ctx, srv.ports, *input.PortIDs)
		if err != nil {
			return nil, err
		}
		update.Ports = &ports
	}

	if update.IsEmpty() {
		user, err := srv.users.FindByID(ctx, uid)

		return user, domainError(err)
	}

	user, err := srv.users.Update(ctx, uid, update)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainError(err)
		}

		return nil, errors.Wrap(domainerrors.ErrUserUpdateFailed, err.Error())
	}

	return user, nil
}

func (srv *profileService) UpdateProfilePhoto(ctx context.Context, d state.Dispatcher, uid string, photo usecase.Upload) (string, error) {
	logger := loggerFrom(ctx, srv.logger)
	d.Dispatch(state.UpdateProfilePhotoRequest{})

	url, err := srv.uploadPhoto(ctx, uid, photo)
	if err != nil {
		logger.Warn("Profile photo upload failed", slog.String("user_id", uid), slog.Any("error", err))
		d.Dispatch(state.UpdateProfilePhotoFailure{Failed: state.Fail(err)})

		return "", err
	}

	d.Dispatch(state.UpdateProfilePhotoSuccess{URL: url})

	return url, nil
}

func (srv *profileService) uploadPhoto(ctx context.Context, uid string, photo usecase.Upload) (string, error) {
	img, err := srv.images.Process(photo.Reader)
	if err != nil {
		return "", err
	}

	blobPath := path.Join("users", uid, "profilePhoto", entity.SanitizeFileName(photo.FileName))
	url, err := srv.blobs.Upload(ctx, blobPath, img.ContentType, bytes.NewReader(img.Data))
	if err != nil {
		return "", errors.Wrap(domainerrors.ErrUploadFailed, err.Error())
	}

	loggerFrom(ctx, srv.logger).Info("Profile photo uploaded",
		slog.String("user_id", uid),
		slog.String("size", util.FormatBytes(int64(len(img.Data)))))

	if _, err := srv.users.Update(ctx, uid, repository.UserUpdate{ProfilePhoto: &url}); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", domainError(err)
		}

		return "", errors.Wrap(domainerrors.ErrUserUpdateFailed, err.Error())
	}

	return url, nil
}

func (srv *profileService) RegisterPushToken(ctx context.Context, uid, token string) error {
	if token == "" {
		return errors.Wrap(domainerrors.ErrValidationFailed, "push token is required")
	}

	if err := srv.users.AddFCMToken(ctx, uid, token); err != nil {
		return domainError(err)
	}

	loggerFrom(ctx, srv.logger).Debug("Push token registered", slog.String("user_id", uid))

	return nil
}
