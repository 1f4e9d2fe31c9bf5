package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/NicoBaldowine/pickleplay/models"
)

var ErrCourtNotFound = errors.New("court not found")

type CourtRepository interface {
	GetByID(ctx context.Context, id int) (*models.Court, error)
	ListByCity(ctx context.Context, city string) ([]models.Court, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Court, error)
}

type postgresCourtRepository struct {
	db *sql.DB
}

func NewPostgresCourtRepository(db *sql.DB) CourtRepository {
	return &postgresCourtRepository{db: db}
}

const courtColumns = `id, name, address, city, state, is_free, latitude, longitude, created_at`

func (r *postgresCourtRepository) GetByID(ctx context.Context, id int) (*models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = $1`
	c, err := scanCourt(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("failed to get court %d: %w", id, err)
	}
	return c, nil
}

// ListByCity matches the city case-insensitively. An empty city lists all
// courts.
func (r *postgresCourtRepository) ListByCity(ctx context.Context, city string) ([]models.Court, error) {
	query := `SELECT ` + courtColumns + ` FROM courts WHERE ($1 = '' OR LOWER(city) = LOWER($1)) ORDER BY name`
	return r.list(ctx, query, city)
}

func (r *postgresCourtRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Court, error) {
	if len(ids) == 0 {
		return []models.Court{}, nil
	}
	query := `SELECT ` + courtColumns + ` FROM courts WHERE id = ANY($1)`
	return r.list(ctx, query, pq.Array(ids))
}

func (r *postgresCourtRepository) list(ctx context.Context, query string, args ...any) ([]models.Court, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list courts: %w", err)
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		c, err := scanCourt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan court: %w", err)
		}
		courts = append(courts, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating courts: %w", err)
	}
	return courts, nil
}

func scanCourt(row rowScanner) (*models.Court, error) {
	var (
		c        models.Court
		lat, lng sql.NullFloat64
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Address, &c.City, &c.State, &c.IsFree, &lat, &lng, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.Latitude = floatPtr(lat)
	c.Longitude = floatPtr(lng)
	return &c, nil
}
