package client

import (
	"context"

	"github.com/dmitrijs2005/countdown/internal/server/models"
)

// Client is the timers API as seen by the CLI.
type Client interface {
	Ping(ctx context.Context) error
	Init(ctx context.Context) error
	List(ctx context.Context) ([]models.Timer, error)
	Create(ctx context.Context, id, name string, days int) (*models.Timer, error)
	Reset(ctx context.Context, id string) (*models.Timer, error)
}
