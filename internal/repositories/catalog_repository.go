package repositories

import (
	"context"

	"github.com/streamvault/backend/internal/models"
)

// CatalogRepository defines the data access contract for series and episodes.
type CatalogRepository interface {
	CreateSeries(ctx context.Context, series models.Series) error
	ListSeries(ctx context.Context, skip, limit int) ([]models.Series, error)
	FindSeries(ctx context.Context, seriesID string) (models.Series, error)
	ListEpisodes(ctx context.Context, seriesID string) ([]models.Episode, error)
	FindEpisode(ctx context.Context, episodeID string) (models.Episode, error)
}
