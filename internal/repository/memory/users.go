package memory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type UserRepo struct {
	db *db
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	return r.db.do(func(st *state) error {
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		for _, rw := range st.users {
			if rw.v.ID == u.ID || strings.EqualFold(rw.v.Email, u.Email) {
				return repository.ErrConflict
			}
		}
		st.users[u.ID] = row[domain.User]{v: *u, seq: st.next()}
		return nil
	})
}

func (r *UserRepo) Get(_ context.Context, id uuid.UUID) (*domain.User, error) {
	var out domain.User
	err := r.db.do(func(st *state) error {
		rw, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = rw.v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.Get(ctx, id)
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	var out domain.User
	err := r.db.do(func(st *state) error {
		for _, rw := range st.users {
			if strings.EqualFold(rw.v.Email, email) {
				out = rw.v
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	err := r.db.do(func(st *state) error {
		rows := make([]row[domain.User], 0, len(st.users))
		for _, rw := range st.users {
			rows = append(rows, rw)
		}
		out = newestFirst(rows, func(u domain.User) time.Time { return u.CreatedAt })
		return nil
	})
	return out, err
}

func (r *UserRepo) UpdateRole(_ context.Context, id uuid.UUID, role domain.Role) error {
	return r.db.do(func(st *state) error {
		rw, ok := st.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		rw.v.Role = role
		st.users[id] = rw
		return nil
	})
}
