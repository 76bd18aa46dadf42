package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/xeppelin/user-service/internal/domain"
	"github.com/xeppelin/user-service/internal/events"
	"github.com/xeppelin/user-service/internal/repository"
	apperrors "github.com/xeppelin/user-service/pkg/util"
)

// uniqueViolation is the Postgres error code raised by the unique email
// index, the backstop for the service-level duplicate check.
const uniqueViolation = "23505"

// UserManagement is the inbound use-case port for account administration.
type UserManagement interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (domain.User, error)
	List(ctx context.Context, req repository.PageRequest, filter repository.ListFilter) (repository.UserPage, error)
	Update(ctx context.Context, id uuid.UUID, incoming domain.User) (domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserService coordinates user aggregate workflows against the repository
// port.
type UserService struct {
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, dispatcher events.Dispatcher, logger *zap.Logger) *UserService {
	return &UserService{users: users, dispatcher: dispatcher, logger: logger}
}

// Create validates the candidate, stamps a fresh identity onto it and its
// owned address, enforces email uniqueness and persists the result.
func (s *UserService) Create(ctx context.Context, user domain.User) (domain.User, error) {
	if err := validateUser(user); err != nil {
		return domain.User{}, err
	}

	user = user.Initialize()

	existing, err := s.users.GetByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, apperrors.MapError(err)
	}
	if existing != nil {
		return domain.User{}, apperrors.NewConflict(
			fmt.Sprintf("user with email %s already exists", user.Email),
			map[string]any{"email": user.Email},
		)
	}

	saved, err := s.users.Save(ctx, user)
	if err != nil {
		return domain.User{}, mapSaveError(err, user.Email)
	}

	s.logger.Info("user created", zap.String("user_id", saved.ID.String()), zap.String("email", saved.Email))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventUserCreated,
		UserID: saved.ID.String(),
		Payload: events.UserCreatedPayload{
			Email: saved.Email,
			Role:  saved.Role,
		},
	})
	return saved, nil
}

// GetByID loads a user or reports a not-found error carrying the id.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperrors.NewNotFound(
				fmt.Sprintf("user not found with id: %s", id),
				map[string]any{"id": id.String()},
			)
		}
		return domain.User{}, apperrors.MapError(err)
	}
	return *user, nil
}

// GetByEmail loads a user or reports a not-found error carrying the email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperrors.NewNotFound(
				fmt.Sprintf("user not found with email: %s", email),
				map[string]any{"email": email},
			)
		}
		return domain.User{}, apperrors.MapError(err)
	}
	return *user, nil
}

// GetByPhoneNumber loads a user via the owned address phone number.
func (s *UserService) GetByPhoneNumber(ctx context.Context, phoneNumber string) (domain.User, error) {
	user, err := s.users.GetByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, apperrors.NewNotFound(
				fmt.Sprintf("user not found with phone number: %s", phoneNumber),
				map[string]any{"phoneNumber": phoneNumber},
			)
		}
		return domain.User{}, apperrors.MapError(err)
	}
	return *user, nil
}

// List returns one page of users; bounds normalization lives on the page
// request itself.
func (s *UserService) List(ctx context.Context, req repository.PageRequest, filter repository.ListFilter) (repository.UserPage, error) {
	page, err := s.users.List(ctx, req, filter)
	if err != nil {
		return repository.UserPage{}, apperrors.MapError(err)
	}
	return page, nil
}

// Update rebuilds the stored aggregate from the incoming one. Every field
// is overwritten from incoming, while the stored user id and the stored
// address id survive the merge.
//
// Address merge policy: an incoming payload without an address leaves the
// stored address untouched; a stored user without an address adopts the
// incoming one as a new owned entity with a fresh id.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, incoming domain.User) (domain.User, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	merged := incoming
	merged.ID = existing.ID
	merged.CreatedAt = existing.CreatedAt

	switch {
	case incoming.Address == nil:
		merged.Address = existing.Address
	case existing.Address == nil:
		addr := incoming.Address.Initialize(existing.ID)
		merged.Address = &addr
	default:
		addr := *incoming.Address
		addr.ID = existing.Address.ID
		addr.UserID = existing.ID
		addr.CreatedAt = existing.Address.CreatedAt
		merged.Address = &addr
	}

	if err := validateUser(merged); err != nil {
		return domain.User{}, err
	}

	saved, err := s.users.Save(ctx, merged)
	if err != nil {
		return domain.User{}, mapSaveError(err, merged.Email)
	}

	s.logger.Info("user updated", zap.String("user_id", saved.ID.String()), zap.String("email", saved.Email))
	s.publishEvent(ctx, events.Event{
		Type:   events.EventUserUpdated,
		UserID: saved.ID.String(),
		Payload: events.UserUpdatedPayload{
			Email:  saved.Email,
			Role:   saved.Role,
			Status: saved.Status,
		},
	})
	return saved, nil
}

// Delete removes a user after confirming it exists. The owned address is
// removed by the storage cascade.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.users.DeleteByID(ctx, user.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound(
				fmt.Sprintf("user not found with id: %s", id),
				map[string]any{"id": id.String()},
			)
		}
		return apperrors.MapError(err)
	}

	s.logger.Info("user deleted", zap.String("user_id", id.String()))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserDeleted,
		UserID:  id.String(),
		Payload: events.UserDeletedPayload{Email: user.Email},
	})
	return nil
}

// validateUser is the minimal orchestration-level guard; field-level rules
// live on the entity transformations.
func validateUser(user domain.User) error {
	if strings.TrimSpace(user.Email) == "" {
		return apperrors.NewValidationError("user email cannot be empty", nil)
	}
	return nil
}

func mapSaveError(err error, email string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.NewConflict(
			fmt.Sprintf("user with email %s already exists", email),
			map[string]any{"email": email},
		)
	}
	return apperrors.MapError(err)
}

func (s *UserService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
