package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/streamvault/backend/internal/db"
	"github.com/streamvault/backend/internal/models"
	"github.com/streamvault/backend/internal/trending"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record. Unique constraints on username and email
// settle concurrent duplicate registrations: the losing insert gets ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `, user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByUsername fetches a user by username.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findBy(ctx, "username", username)
}

// FindByEmail fetches a user by email address.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findBy(ctx, "email", email)
}

func (r *PostgresUserRepository) findBy(ctx context.Context, column, value string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, fmt.Sprintf(`
        SELECT id, username, email, password_hash, created_at, updated_at
        FROM users
        WHERE %s = $1
    `, column), value)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user by %s: %w", column, err)
	}

	return user, nil
}

// PostgresCatalogRepository provides PostgreSQL-backed persistence for the catalog.
type PostgresCatalogRepository struct {
	pool db.Pool
}

// NewPostgresCatalogRepository constructs a catalog repository backed by PostgreSQL.
func NewPostgresCatalogRepository(pool db.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{pool: pool}
}

// CreateSeries persists a new series record.
func (r *PostgresCatalogRepository) CreateSeries(ctx context.Context, series models.Series) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO series (id, title, description, release_year, genre, rating, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, series.ID, series.Title, series.Description, series.ReleaseYear, series.Genre, series.Rating, series.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert series: %w", err)
	}

	return nil
}

// ListSeries returns a page of series ordered by title.
func (r *PostgresCatalogRepository) ListSeries(ctx context.Context, skip, limit int) ([]models.Series, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, title, description, release_year, genre, rating, created_at
        FROM series
        ORDER BY title
        OFFSET $1 LIMIT $2
    `, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer rows.Close()

	var list []models.Series
	for rows.Next() {
		var s models.Series
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.ReleaseYear, &s.Genre, &s.Rating, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		list = append(list, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate series: %w", err)
	}

	return list, nil
}

// FindSeries fetches a single series by id.
func (r *PostgresCatalogRepository) FindSeries(ctx context.Context, seriesID string) (models.Series, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Series{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, title, description, release_year, genre, rating, created_at
        FROM series
        WHERE id = $1
    `, seriesID)

	var s models.Series
	if err := row.Scan(&s.ID, &s.Title, &s.Description, &s.ReleaseYear, &s.Genre, &s.Rating, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Series{}, ErrNotFound
		}
		return models.Series{}, fmt.Errorf("select series: %w", err)
	}

	return s, nil
}

// ListEpisodes returns all episodes of a series in season/episode order.
func (r *PostgresCatalogRepository) ListEpisodes(ctx context.Context, seriesID string) ([]models.Episode, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, series_id, season_number, episode_number, title, duration, description, created_at
        FROM episodes
        WHERE series_id = $1
        ORDER BY season_number, episode_number
    `, seriesID)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []models.Episode
	for rows.Next() {
		var e models.Episode
		if err := rows.Scan(&e.ID, &e.SeriesID, &e.SeasonNumber, &e.EpisodeNumber, &e.Title, &e.Duration, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate episodes: %w", err)
	}

	return episodes, nil
}

// FindEpisode fetches a single episode by id.
func (r *PostgresCatalogRepository) FindEpisode(ctx context.Context, episodeID string) (models.Episode, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Episode{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, series_id, season_number, episode_number, title, duration, description, created_at
        FROM episodes
        WHERE id = $1
    `, episodeID)

	var e models.Episode
	if err := row.Scan(&e.ID, &e.SeriesID, &e.SeasonNumber, &e.EpisodeNumber, &e.Title, &e.Duration, &e.Description, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Episode{}, ErrNotFound
		}
		return models.Episode{}, fmt.Errorf("select episode: %w", err)
	}

	return e, nil
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for subscriptions.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// CreateActive inserts a subscription unless the user already has an active
// one. The check and the insert run inside a single transaction that first
// locks the user's row, so concurrent requests cannot both succeed.
func (r *PostgresSubscriptionRepository) CreateActive(ctx context.Context, subscription models.Subscription) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin subscription transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var lockedID string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, subscription.UserID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock user row: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions
            WHERE user_id = $1 AND end_date > NOW()
        )
    `, subscription.UserID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check active subscription: %w", err)
	}
	if exists {
		return ErrConflict
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO subscriptions (id, user_id, plan_type, start_date, end_date, auto_renewal, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, subscription.ID, subscription.UserID, subscription.PlanType,
		subscription.StartDate, subscription.EndDate, subscription.AutoRenewal, subscription.Status)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit subscription: %w", err)
	}

	return nil
}

// FindActive returns the user's newest active subscription.
func (r *PostgresSubscriptionRepository) FindActive(ctx context.Context, userID string) (models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Subscription{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, user_id, plan_type, start_date, end_date, auto_renewal, status
        FROM subscriptions
        WHERE user_id = $1 AND end_date > NOW()
        ORDER BY end_date DESC
        LIMIT 1
    `, userID)

	var sub models.Subscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.PlanType, &sub.StartDate, &sub.EndDate, &sub.AutoRenewal, &sub.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Subscription{}, ErrNotFound
		}
		return models.Subscription{}, fmt.Errorf("select active subscription: %w", err)
	}

	return sub, nil
}

// HasActive reports whether the user currently holds an active subscription.
func (r *PostgresSubscriptionRepository) HasActive(ctx context.Context, userID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	err = conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions
            WHERE user_id = $1 AND end_date > NOW()
        )
    `, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check active subscription: %w", err)
	}

	return exists, nil
}

// CancelActive turns off auto-renewal on the user's active subscriptions.
// The subscription stays usable until its end date.
func (r *PostgresSubscriptionRepository) CancelActive(ctx context.Context, userID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE subscriptions
        SET auto_renewal = FALSE, status = $2
        WHERE user_id = $1 AND end_date > NOW()
    `, userID, models.SubscriptionCancelled)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresProgressRepository provides PostgreSQL-backed persistence for viewing progress.
type PostgresProgressRepository struct {
	pool db.Pool
}

// NewPostgresProgressRepository constructs a progress repository backed by PostgreSQL.
func NewPostgresProgressRepository(pool db.Pool) *PostgresProgressRepository {
	return &PostgresProgressRepository{pool: pool}
}

// Upsert stores the latest progress for a (user, episode) pair.
func (r *PostgresProgressRepository) Upsert(ctx context.Context, progress models.ViewingProgress) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO viewing_progress (user_id, episode_id, progress, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, episode_id)
        DO UPDATE SET progress = EXCLUDED.progress, updated_at = EXCLUDED.updated_at
    `, progress.UserID, progress.EpisodeID, progress.Progress, progress.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("upsert viewing progress: %w", err)
	}

	return nil
}

// Find fetches the stored progress for a (user, episode) pair.
func (r *PostgresProgressRepository) Find(ctx context.Context, userID, episodeID string) (models.ViewingProgress, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.ViewingProgress{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT user_id, episode_id, progress, updated_at
        FROM viewing_progress
        WHERE user_id = $1 AND episode_id = $2
    `, userID, episodeID)

	var progress models.ViewingProgress
	if err := row.Scan(&progress.UserID, &progress.EpisodeID, &progress.Progress, &progress.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ViewingProgress{}, ErrNotFound
		}
		return models.ViewingProgress{}, fmt.Errorf("select viewing progress: %w", err)
	}

	return progress, nil
}

// TopByViews aggregates progress updates per series within the window and
// returns the n most-watched series. This is the durable fallback behind the
// trending cache.
func (r *PostgresProgressRepository) TopByViews(ctx context.Context, window time.Duration, n int) ([]trending.Entry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT s.id, COUNT(*) AS view_count
        FROM viewing_progress vp
        JOIN episodes e ON vp.episode_id = e.id
        JOIN series s ON e.series_id = s.id
        WHERE vp.updated_at >= NOW() - $1::interval
        GROUP BY s.id
        ORDER BY view_count DESC, s.id DESC
        LIMIT $2
    `, window, n)
	if err != nil {
		return nil, fmt.Errorf("query trending aggregation: %w", err)
	}
	defer rows.Close()

	var entries []trending.Entry
	for rows.Next() {
		var (
			id    string
			count int64
		)
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}
		entries = append(entries, trending.Entry{ContentID: id, Score: float64(count)})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending rows: %w", err)
	}

	return entries, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ CatalogRepository = (*PostgresCatalogRepository)(nil)
var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
var _ ProgressRepository = (*PostgresProgressRepository)(nil)
var _ trending.Source = (*PostgresProgressRepository)(nil)
