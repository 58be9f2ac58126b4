package repositories

import (
	"context"

	"github.com/ch1nq/arcadio-go/pkg/repositories/models"
)

type Repository interface {
	Close(ctx context.Context) error
	SaveMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, limit int) ([]*models.Match, error)
	GetStrategyStats(ctx context.Context) ([]*models.StrategyStats, error)
}
