package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
	"github.com/kirinyoku/tixmarket/internal/repository"
)

type TicketRepo struct {
	db *db
}

// withVendor fills the vendor columns the way the SQL join does.
func withVendor(st *state, t domain.Ticket) domain.Ticket {
	if u, ok := st.users[t.VendorID]; ok {
		t.VendorEmail = u.v.Email
		t.VendorName = u.v.Name
	}
	t.Perks = slices.Clone(t.Perks)
	if t.Perks == nil {
		t.Perks = []string{}
	}
	return t
}

func (r *TicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	return r.db.do(func(st *state) error {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if _, ok := st.tickets[t.ID]; ok {
			return repository.ErrConflict
		}
		if _, ok := st.users[t.VendorID]; !ok {
			return repository.ErrNotFound
		}
		cp := *t
		cp.Perks = slices.Clone(t.Perks)
		st.tickets[t.ID] = row[domain.Ticket]{v: cp, seq: st.next()}
		return nil
	})
}

func (r *TicketRepo) Get(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var out domain.Ticket
	err := r.db.do(func(st *state) error {
		rw, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = withVendor(st, rw.v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *TicketRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return r.Get(ctx, id)
}

func (r *TicketRepo) Save(_ context.Context, t *domain.Ticket) error {
	return r.db.do(func(st *state) error {
		old, ok := st.tickets[t.ID]
		if !ok {
			return repository.ErrNotFound
		}
		cp := *t
		cp.Perks = slices.Clone(t.Perks)
		cp.VendorID = old.v.VendorID
		cp.CreatedAt = old.v.CreatedAt
		st.tickets[t.ID] = row[domain.Ticket]{v: cp, seq: old.seq}
		return nil
	})
}

func (r *TicketRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.db.do(func(st *state) error {
		if _, ok := st.tickets[id]; !ok {
			return repository.ErrNotFound
		}
		delete(st.tickets, id)
		return nil
	})
}

func (r *TicketRepo) list(keep func(domain.Ticket) bool) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := r.db.do(func(st *state) error {
		var rows []row[domain.Ticket]
		for _, rw := range st.tickets {
			if keep(rw.v) {
				rows = append(rows, row[domain.Ticket]{v: withVendor(st, rw.v), seq: rw.seq})
			}
		}
		out = newestFirst(rows, func(t domain.Ticket) time.Time { return t.CreatedAt })
		return nil
	})
	return out, err
}

func (r *TicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	return r.list(func(domain.Ticket) bool { return true })
}

func (r *TicketRepo) ListByVendor(_ context.Context, vendorID uuid.UUID) ([]domain.Ticket, error) {
	return r.list(func(t domain.Ticket) bool { return t.VendorID == vendorID })
}

func containsFold(s, sub string) bool {
	sub = strings.TrimSpace(sub)
	return sub == "" || strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func (r *TicketRepo) ListPublic(_ context.Context, f domain.TicketFilter) ([]domain.Ticket, int, error) {
	all, err := r.list(func(t domain.Ticket) bool {
		return t.Public() &&
			containsFold(t.From, f.From) &&
			containsFold(t.To, f.To) &&
			(f.Transport == "" || t.TransportType == f.Transport)
	})
	if err != nil {
		return nil, 0, err
	}

	switch f.SortPrice {
	case "asc":
		slices.SortStableFunc(all, func(a, b domain.Ticket) int { return cmpInt64(a.Price, b.Price) })
	case "desc":
		slices.SortStableFunc(all, func(a, b domain.Ticket) int { return cmpInt64(b.Price, a.Price) })
	}

	total := len(all)
	start := min(max(f.Offset, 0), total)
	end := total
	if f.Limit > 0 {
		end = min(start+f.Limit, total)
	}

	return all[start:end], total, nil
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (r *TicketRepo) ListAdvertised(_ context.Context) ([]domain.Ticket, error) {
	out, err := r.list(func(t domain.Ticket) bool { return t.IsAdvertised && t.Public() })
	if err != nil {
		return nil, err
	}
	if len(out) > domain.MaxAdvertised {
		out = out[:domain.MaxAdvertised]
	}
	return out, nil
}

func (r *TicketRepo) CountAdvertised(_ context.Context) (int, error) {
	var n int
	err := r.db.do(func(st *state) error {
		for _, rw := range st.tickets {
			if rw.v.IsAdvertised {
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *TicketRepo) HideByVendor(_ context.Context, vendorID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.do(func(st *state) error {
		for id, rw := range st.tickets {
			if rw.v.VendorID != vendorID || rw.v.Hidden {
				continue
			}
			rw.v.Hide()
			st.tickets[id] = rw
			n++
		}
		return nil
	})
	return n, err
}

func (r *TicketRepo) DecrementSeats(_ context.Context, id uuid.UUID, n int) error {
	return r.db.do(func(st *state) error {
		rw, ok := st.tickets[id]
		if !ok {
			return repository.ErrNotFound
		}
		if rw.v.Quantity < n {
			return repository.ErrSeatsUnavailable
		}
		rw.v.Quantity -= n
		st.tickets[id] = rw
		return nil
	})
}
