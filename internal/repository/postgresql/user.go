package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/absensi-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const selectUser = `
	SELECT id, name, email, password_hash, role_id, created_at, updated_at
	FROM users
`

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getOne(ctx, selectUser+` WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *userRepositoryImpl) getOne(ctx context.Context, query string, arg any) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	var (
		u      user.User
		roleID int
	)
	err := q.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&roleID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	role, err := user.ParseRole(roleID)
	if err != nil {
		return user.User{}, err
	}
	u.Role = role

	return u, nil
}
