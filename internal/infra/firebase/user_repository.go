package firebase

import (
	"context"

	"cloud.google.com/go/firestore"

	"harbor/internal/domain/constants"
	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
	"harbor/internal/errors"
)

type userRepository struct {
	fs *firestore.Client
}

// NewUserRepository stores profiles in the users collection keyed by UID.
func NewUserRepository(c *Clients) repository.UserRepository {
	return &userRepository{fs: c.Firestore}
}

func (r *userRepository) doc(id string) *firestore.DocumentRef {
	return r.fs.Collection(constants.CollectionUsers).Doc(id)
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	snap, err := r.doc(id).Get(ctx)
	if isNotFound(err) {
		return nil, errors.WithStack(repository.ErrUserNotFound)
	}
	if err != nil {
		return nil, gatewayError(err, "get user "+id)
	}

	var d userDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, errors.Wrapf(err, "decode user %s", id)
	}

	return userFromDoc(snap.Ref.ID, d), nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	_, err := r.doc(user.ID).Create(ctx, userToDoc(user))
	if isAlreadyExists(err) {
		return errors.Wrapf(err, "user %s already exists", user.ID)
	}

	return gatewayError(err, "create user "+user.ID)
}

func (r *userRepository) Update(ctx context.Context, id string, update repository.UserUpdate) (*entity.User, error) {
	updates := userUpdates(update)
	if len(updates) > 0 {
		_, err := r.doc(id).Update(ctx, updates)
		if isNotFound(err) {
			return nil, errors.WithStack(repository.ErrUserNotFound)
		}
		if err != nil {
			return nil, gatewayError(err, "update user "+id)
		}
	}

	return r.FindByID(ctx, id)
}

func userUpdates(u repository.UserUpdate) []firestore.Update {
	var updates []firestore.Update

	set := func(path string, value any) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if u.FirstName != nil {
		set("firstName", *u.FirstName)
	}
	if u.LastName != nil {
		set("lastName", *u.LastName)
	}
	if u.Phone != nil {
		set("phone", *u.Phone)
	}
	if u.VesselIMO != nil {
		set("vesselIMO", *u.VesselIMO)
	}
	if u.VesselMMSI != nil {
		set("vesselMMSI", *u.VesselMMSI)
	}
	if u.ProfilePhoto != nil {
		set("profilePhoto", *u.ProfilePhoto)
	}
	if u.Role != nil {
		set("role", string(*u.Role))
	}
	if u.Ports != nil {
		set("ports", portsToDocs(*u.Ports))
	}

	return updates
}

func (r *userRepository) AddFCMToken(ctx context.Context, id, token string) error {
	_, err := r.doc(id).Update(ctx, []firestore.Update{
		{Path: "fcmTokens", Value: firestore.ArrayUnion(token)},
	})
	if isNotFound(err) {
		return errors.WithStack(repository.ErrUserNotFound)
	}

	return gatewayError(err, "add fcm token")
}

func (r *userRepository) RemoveFCMTokens(ctx context.Context, id string, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	values := make([]any, len(tokens))
	for i, t := range tokens {
		values[i] = t
	}

	_, err := r.doc(id).Update(ctx, []firestore.Update{
		{Path: "fcmTokens", Value: firestore.ArrayRemove(values...)},
	})
	if isNotFound(err) {
		return nil
	}

	return gatewayError(err, "remove fcm tokens")
}
