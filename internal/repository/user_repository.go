package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/xeppelin/user-service/internal/domain"
)

// DB is the subset of pgxpool.Pool the repository relies on.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository defines persistence access for user aggregates. Lookups
// return pgx.ErrNoRows when no matching row exists; mapping absence to a
// domain error is the caller's concern.
type UserRepository interface {
	Save(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error)
	List(ctx context.Context, req PageRequest, filter ListFilter) (UserPage, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type userRepository struct {
	db DB
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DB) UserRepository {
	return &userRepository{db: db}
}

const userSelectColumns = `
        u.id, u.name, u.email, u.role, u.status, u.created_at, u.updated_at,
        a.id, a.user_id, a.line1, a.line2, a.city, a.state, a.postal_code, a.country, a.phone_number, a.created_at, a.updated_at`

const userSelectBase = `
        SELECT` + userSelectColumns + `
        FROM users u
        LEFT JOIN addresses a ON a.user_id = u.id`

// Save inserts the user or fully replaces the stored row, including the
// owned address, within one transaction.
func (r *userRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.User{}, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const upsertUser = `
        INSERT INTO users (id, name, email, role, status)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (id) DO UPDATE
            SET name = EXCLUDED.name,
                email = EXCLUDED.email,
                role = EXCLUDED.role,
                status = EXCLUDED.status,
                updated_at = NOW()
        RETURNING created_at, updated_at`

	if err := tx.QueryRow(ctx, upsertUser,
		user.ID,
		user.Name,
		user.Email,
		user.Role,
		user.Status,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, err
	}

	if user.Address != nil {
		const upsertAddress = `
        INSERT INTO addresses (id, user_id, line1, line2, city, state, postal_code, country, phone_number)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (id) DO UPDATE
            SET line1 = EXCLUDED.line1,
                line2 = EXCLUDED.line2,
                city = EXCLUDED.city,
                state = EXCLUDED.state,
                postal_code = EXCLUDED.postal_code,
                country = EXCLUDED.country,
                phone_number = EXCLUDED.phone_number,
                updated_at = NOW()
        RETURNING created_at, updated_at`

		addr := *user.Address
		if err := tx.QueryRow(ctx, upsertAddress,
			addr.ID,
			addr.UserID,
			addr.Line1,
			nullableString(addr.Line2),
			addr.City,
			addr.State,
			addr.PostalCode,
			addr.Country,
			addr.PhoneNumber,
		).Scan(&addr.CreatedAt, &addr.UpdatedAt); err != nil {
			return domain.User{}, err
		}
		user.Address = &addr
	} else {
		const dropAddress = `DELETE FROM addresses WHERE user_id = $1`
		if _, err := tx.Exec(ctx, dropAddress, user.ID); err != nil {
			return domain.User{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := userSelectBase + `
        WHERE u.id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := userSelectBase + `
        WHERE u.email = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *userRepository) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error) {
	query := userSelectBase + `
        WHERE a.phone_number = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, phoneNumber))
}

// List returns one page of users ordered by creation time, applying the
// optional role and status filters.
func (r *userRepository) List(ctx context.Context, req PageRequest, filter ListFilter) (UserPage, error) {
	req = req.Normalized()

	where, args := buildListWhere(filter)

	countQuery := `SELECT COUNT(*) FROM users u` + where
	var total int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return UserPage{}, err
	}

	query := userSelectBase + where + `
        ORDER BY u.created_at, u.id
        LIMIT $` + strconv.Itoa(len(args)+1) + ` OFFSET $` + strconv.Itoa(len(args)+2)
	args = append(args, req.Size, req.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return UserPage{}, err
	}
	defer rows.Close()

	users := make([]domain.User, 0, req.Size)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return UserPage{}, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return UserPage{}, err
	}

	return NewUserPage(users, req, total), nil
}

func (r *userRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func buildListWhere(filter ListFilter) (string, []any) {
	clauses := []string{}
	args := []any{}
	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("u.role = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("u.status = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", args
	}
	return `
        WHERE ` + strings.Join(clauses, " AND "), args
}

func (r *userRepository) scanOne(row pgx.Row) (*domain.User, error) {
	return scanUser(row)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		user      domain.User
		addrID    *uuid.UUID
		addrUser  *uuid.UUID
		line1     *string
		line2     *string
		city      *string
		state     *string
		postal    *string
		country   *string
		phone     *string
		addrCAt   *time.Time
		addrUAt   *time.Time
	)

	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Role,
		&user.Status,
		&user.CreatedAt,
		&user.UpdatedAt,
		&addrID,
		&addrUser,
		&line1,
		&line2,
		&city,
		&state,
		&postal,
		&country,
		&phone,
		&addrCAt,
		&addrUAt,
	); err != nil {
		return nil, err
	}

	if addrID != nil {
		addr := domain.Address{
			ID:          *addrID,
			Line1:       deref(line1),
			Line2:       deref(line2),
			City:        deref(city),
			State:       deref(state),
			PostalCode:  deref(postal),
			Country:     deref(country),
			PhoneNumber: deref(phone),
		}
		if addrUser != nil {
			addr.UserID = *addrUser
		}
		if addrCAt != nil {
			addr.CreatedAt = *addrCAt
		}
		if addrUAt != nil {
			addr.UpdatedAt = *addrUAt
		}
		user.Address = &addr
	}

	return &user, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
