package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xeppelin/user-service/internal/domain"
	"github.com/xeppelin/user-service/internal/events"
	"github.com/xeppelin/user-service/internal/repository"
	"github.com/xeppelin/user-service/internal/service"
	apperrors "github.com/xeppelin/user-service/pkg/util"
)

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	mu    sync.Mutex
	order []uuid.UUID
	users map[uuid.UUID]domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]domain.User)}
}

func (f *fakeUserRepo) Save(_ context.Context, user domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[user.ID]; !exists {
		f.order = append(f.order, user.ID)
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByPhoneNumber(_ context.Context, phone string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Address != nil && user.Address.PhoneNumber == phone {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, req repository.PageRequest, filter repository.ListFilter) (repository.UserPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req = req.Normalized()

	matched := make([]domain.User, 0, len(f.order))
	for _, id := range f.order {
		user := f.users[id]
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		matched = append(matched, user)
	}

	start := req.Offset()
	if start > len(matched) {
		start = len(matched)
	}
	end := start + req.Size
	if end > len(matched) {
		end = len(matched)
	}
	return repository.NewUserPage(matched[start:end], req, int64(len(matched))), nil
}

func (f *fakeUserRepo) DeleteByID(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	for i, stored := range f.order {
		if stored == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeUserRepo) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeUserRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func newTestService(t *testing.T) (*service.UserService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return service.NewUserService(repo, events.NewInMemoryDispatcher(), zap.NewNop()), repo
}

func candidateUser(t *testing.T) domain.User {
	t.Helper()
	return domain.User{
		Name:  "John Doe",
		Email: "john@example.com",
		Role:  domain.RoleAttendee,
		Address: &domain.Address{
			Line1:       "123 Main Street",
			City:        "New York",
			State:       "NY",
			PostalCode:  "10001",
			Country:     "United States",
			PhoneNumber: "+1-555-123-4567",
		},
	}
}

func TestUserServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns identity and defaults status", func(t *testing.T) {
		svc, repo := newTestService(t)

		created, err := svc.Create(ctx, candidateUser(t))

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, domain.StatusActive, created.Status)
		require.NotNil(t, created.Address)
		assert.NotEqual(t, uuid.Nil, created.Address.ID)
		assert.Equal(t, created.ID, created.Address.UserID)
		assert.Equal(t, 1, repo.count())
	})

	t.Run("blank email fails without side effect", func(t *testing.T) {
		svc, repo := newTestService(t)
		candidate := candidateUser(t)
		candidate.Email = "   "

		_, err := svc.Create(ctx, candidate)

		assert.True(t, apperrors.IsValidation(err))
		assert.Equal(t, 0, repo.count())
	})

	t.Run("duplicate email conflicts regardless of other fields", func(t *testing.T) {
		svc, repo := newTestService(t)

		_, err := svc.Create(ctx, candidateUser(t))
		require.NoError(t, err)

		duplicate := candidateUser(t)
		duplicate.Name = "Someone Else"
		duplicate.Role = domain.RoleAdmin
		duplicate.Address = nil

		_, err = svc.Create(ctx, duplicate)

		require.True(t, apperrors.IsConflict(err))
		assert.Contains(t, err.Error(), "john@example.com")
		assert.Equal(t, 1, repo.count())
	})
}

func TestUserServiceLookups(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		found, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("by email", func(t *testing.T) {
		found, err := svc.GetByEmail(ctx, "john@example.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("by phone number", func(t *testing.T) {
		found, err := svc.GetByPhoneNumber(ctx, "+1-555-123-4567")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("missing id yields not found carrying the key", func(t *testing.T) {
		missing := uuid.New()
		_, err := svc.GetByID(ctx, missing)
		require.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), missing.String())
	})

	t.Run("missing email yields not found carrying the key", func(t *testing.T) {
		_, err := svc.GetByEmail(ctx, "nobody@example.com")
		require.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "nobody@example.com")
	})

	t.Run("missing phone yields not found carrying the key", func(t *testing.T) {
		_, err := svc.GetByPhoneNumber(ctx, "0000000000")
		require.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), "0000000000")
	})
}

func TestUserServiceList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		candidate := candidateUser(t)
		candidate.Email = email
		candidate.Address = nil
		_, err := svc.Create(ctx, candidate)
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, repository.PageRequest{Number: 0, Size: 2}, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, int64(3), page.TotalElements)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Equal(t, 0, page.Number)
	assert.Equal(t, 2, page.Size)

	last, err := svc.List(ctx, repository.PageRequest{Number: 1, Size: 2}, repository.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, last.Users, 1)

	role := domain.RoleAdmin
	none, err := svc.List(ctx, repository.PageRequest{}, repository.ListFilter{Role: &role})
	require.NoError(t, err)
	assert.Empty(t, none.Users)
	assert.Equal(t, int64(0), none.TotalElements)
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites fields but preserves user and address ids", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, err := svc.Create(ctx, candidateUser(t))
		require.NoError(t, err)

		incoming := domain.User{
			Name:   "John Updated",
			Email:  "john@example.com",
			Role:   domain.RoleOrganizer,
			Status: domain.StatusSuspended,
			Address: &domain.Address{
				Line1:       "500 Fifth Avenue",
				Line2:       "Floor 12",
				City:        "Boston",
				State:       "MA",
				PostalCode:  "02110",
				Country:     "United States",
				PhoneNumber: "(617) 555-0000",
			},
		}

		updated, err := svc.Update(ctx, created.ID, incoming)

		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "John Updated", updated.Name)
		assert.Equal(t, domain.RoleOrganizer, updated.Role)
		assert.Equal(t, domain.StatusSuspended, updated.Status)
		require.NotNil(t, updated.Address)
		assert.Equal(t, created.Address.ID, updated.Address.ID)
		assert.Equal(t, created.ID, updated.Address.UserID)
		assert.Equal(t, "500 Fifth Avenue", updated.Address.Line1)
		assert.Equal(t, "Boston", updated.Address.City)
	})

	t.Run("incoming without address keeps the stored address", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, err := svc.Create(ctx, candidateUser(t))
		require.NoError(t, err)

		incoming := domain.User{Name: "John Updated", Email: "john@example.com", Role: domain.RoleAttendee, Status: domain.StatusActive}

		updated, err := svc.Update(ctx, created.ID, incoming)

		require.NoError(t, err)
		require.NotNil(t, updated.Address)
		assert.Equal(t, created.Address.ID, updated.Address.ID)
		assert.Equal(t, "123 Main Street", updated.Address.Line1)
	})

	t.Run("stored user without address adopts incoming address with a fresh id", func(t *testing.T) {
		svc, _ := newTestService(t)
		candidate := candidateUser(t)
		candidate.Address = nil
		created, err := svc.Create(ctx, candidate)
		require.NoError(t, err)

		incoming := candidateUser(t)
		incoming.Status = domain.StatusActive

		updated, err := svc.Update(ctx, created.ID, incoming)

		require.NoError(t, err)
		require.NotNil(t, updated.Address)
		assert.NotEqual(t, uuid.Nil, updated.Address.ID)
		assert.Equal(t, created.ID, updated.Address.UserID)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		svc, _ := newTestService(t)
		missing := uuid.New()

		_, err := svc.Update(ctx, missing, candidateUser(t))

		require.True(t, apperrors.IsNotFound(err))
		assert.Contains(t, err.Error(), missing.String())
	})

	t.Run("blank email on the rebuilt user fails validation", func(t *testing.T) {
		svc, _ := newTestService(t)
		created, err := svc.Create(ctx, candidateUser(t))
		require.NoError(t, err)

		incoming := candidateUser(t)
		incoming.Email = ""

		_, err = svc.Update(ctx, created.ID, incoming)

		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestUserServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	created, err := svc.Create(ctx, candidateUser(t))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 0, repo.count())

	err = svc.Delete(ctx, created.ID)
	require.True(t, apperrors.IsNotFound(err))
	assert.Contains(t, err.Error(), created.ID.String())
}

func TestUserLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	created, err := svc.Create(ctx, domain.User{Name: "John Doe", Email: "john@example.com", Role: domain.RoleAttendee})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, created.Status)
	assert.Nil(t, created.Address)
	assert.NotEqual(t, uuid.Nil, created.ID)

	_, err = svc.Create(ctx, domain.User{Name: "Impostor", Email: "john@example.com", Role: domain.RoleAdmin})
	require.True(t, apperrors.IsConflict(err))

	updated, err := svc.Update(ctx, created.ID, domain.User{
		Name:   "John Updated",
		Email:  "john@example.com",
		Role:   domain.RoleOrganizer,
		Status: domain.StatusActive,
		Address: &domain.Address{
			Line1:       "123 Main Street",
			City:        "New York",
			State:       "NY",
			PostalCode:  "10001",
			Country:     "United States",
			PhoneNumber: "+1-555-123-4567",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "John Updated", updated.Name)
	assert.Equal(t, domain.RoleOrganizer, updated.Role)
	require.NotNil(t, updated.Address)
	assert.NotEqual(t, uuid.Nil, updated.Address.ID)
	assert.Equal(t, "123 Main Street", updated.Address.Line1)
}
