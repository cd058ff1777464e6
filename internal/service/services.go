package service

import (
	"io"
	"log/slog"

	"github.com/kirinyoku/tixmarket/internal/clock"
	"github.com/kirinyoku/tixmarket/internal/events"
	"github.com/kirinyoku/tixmarket/internal/gateway"
	"github.com/kirinyoku/tixmarket/internal/repository"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
	"github.com/kirinyoku/tixmarket/internal/service/account"
	"github.com/kirinyoku/tixmarket/internal/service/admin"
	"github.com/kirinyoku/tixmarket/internal/service/notify"
	"github.com/kirinyoku/tixmarket/internal/service/orders"
	"github.com/kirinyoku/tixmarket/internal/service/query"
	"github.com/kirinyoku/tixmarket/internal/service/reservation"
	"github.com/kirinyoku/tixmarket/internal/service/tickets"
)

type Services struct {
	Accounts    *account.Service
	Tickets     *tickets.Service
	Reservation *reservation.Service
	Query       *query.Service
	Admin       *admin.Service
	Orders      *orders.Service
}

type Config struct {
	Query  query.Config
	Orders orders.Config
}

// Deps are the collaborators shared by every service. Cache, Publisher and
// Limiter may be nil.
type Deps struct {
	Store     repository.Store
	Cache     *redisrepo.Cache
	Publisher events.Publisher
	Limiter   reservation.Limiter
	Gateway   gateway.Gateway
	Clock     clock.Clock
	Logger    *slog.Logger
}

func NewServices(d Deps, cfg Config) *Services {
	if d.Clock == nil {
		d.Clock = clock.Real(nil)
	}
	if d.Logger == nil {
		d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	n := notify.New(d.Cache, d.Publisher, d.Logger)

	return &Services{
		Accounts:    account.New(d.Store, d.Clock, d.Logger),
		Tickets:     tickets.New(d.Store, n, d.Clock, d.Logger),
		Reservation: reservation.New(d.Store, n, d.Limiter, d.Clock, d.Logger),
		Query:       query.New(d.Store, d.Cache, cfg.Query),
		Admin:       admin.New(d.Store, n, d.Clock, d.Logger),
		Orders:      orders.New(d.Store, d.Gateway, n, d.Clock, d.Logger, cfg.Orders),
	}
}
