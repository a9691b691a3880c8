package memory

import (
	"context"
	"slices"

	"harbor/internal/domain/entity"
	"harbor/internal/domain/repository"
)

type userRepository struct {
	s *Store
}

// NewUserRepository returns the in-process user profile repository.
func NewUserRepository(s *Store) repository.UserRepository {
	return &userRepository{s: s}
}

func (repo *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	repo.s.mu.RLock()
	defer repo.s.mu.RUnlock()

	user, ok := repo.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	return user.Clone(), nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	stored := user.Clone()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = repo.s.now().UTC()
	}
	repo.s.users[user.ID] = *stored

	return nil
}

func (repo *userRepository) Update(ctx context.Context, id string, update repository.UserUpdate) (*entity.User, error) {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	user, ok := repo.s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	updated := user.Clone()
	update.Apply(updated)
	repo.s.users[id] = *updated

	return updated.Clone(), nil
}

func (repo *userRepository) AddFCMToken(ctx context.Context, id, token string) error {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	user, ok := repo.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	if !slices.Contains(user.FCMTokens, token) {
		updated := user.Clone()
		updated.FCMTokens = append(updated.FCMTokens, token)
		repo.s.users[id] = *updated
	}

	return nil
}

func (repo *userRepository) RemoveFCMTokens(ctx context.Context, id string, tokens []string) error {
	repo.s.mu.Lock()
	defer repo.s.mu.Unlock()

	user, ok := repo.s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}

	updated := user.Clone()
	updated.FCMTokens = slices.DeleteFunc(updated.FCMTokens, func(t string) bool {
		return slices.Contains(tokens, t)
	})
	repo.s.users[id] = *updated

	return nil
}
