package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/kirinyoku/tixmarket/internal/domain"
)

type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)
	Save(ctx context.Context, t *domain.Ticket) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Ticket, error)
	ListPublic(ctx context.Context, f domain.TicketFilter) ([]domain.Ticket, int, error)
	ListAdvertised(ctx context.Context) ([]domain.Ticket, error)
	CountAdvertised(ctx context.Context) (int, error)
	HideByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error)
	DecrementSeats(ctx context.Context, id uuid.UUID, n int) error
}

type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Booking, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID) ([]domain.Booking, error)
}

type PaymentRepository interface {
	// Create fails with ErrConflict when the booking or transaction already
	// has a payment.
	Create(ctx context.Context, p *domain.Payment) error
	Get(ctx context.Context, transactionID string) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error)
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error
}

type StatsRepository interface {
	VendorStats(ctx context.Context, vendorID uuid.UUID) (*domain.VendorStats, error)
}

// Repos groups the repositories bound to one handle: the pool or a
// transaction.
type Repos interface {
	Tickets() TicketRepository
	Bookings() BookingRepository
	Payments() PaymentRepository
	Users() UserRepository
	Stats() StatsRepository
}

// Store is a Repos that can also open transactions.
type Store interface {
	Repos
	RunTx(ctx context.Context, fn func(ctx context.Context, tx Repos) error) error
}
