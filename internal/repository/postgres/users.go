package postgresrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type UserRepo struct {
	db DB
}

// Create inserts a new account.
//
// Returns:
//   - error: repository.ErrConflict if the email is already registered.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	const op = "postgresrepo.UserRepo.Create"

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO users (id, email, name, photo_url, role, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, u.Email, u.Name, u.PhotoURL, u.Role, u.CreatedAt,
	)

	return wrapDBErr(op, err)
}

func (r *UserRepo) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.Get"

	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}

func (r *UserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetForUpdate"

	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}

// GetByEmail looks an account up by email, ignoring case.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetByEmail"

	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &u, nil
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	const op = "postgresrepo.UserRepo.List"

	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	out, err := collect(rows, scanUser)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *UserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	const op = "postgresrepo.UserRepo.UpdateRole"

	tag, err := r.db.Exec(ctx, `UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s:%w", op, repository.ErrNotFound)
	}

	return nil
}
