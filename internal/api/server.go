package api

import (
	"context"

	"github.com/vytor/lexiflash/internal/services"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	DB              Pinger
	Auth            *Authenticator
	WordService     services.WordService
	TestService     services.TestService
	StatsService    services.StatsService
	TransferService services.TransferService
}
