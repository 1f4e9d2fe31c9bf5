package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NicoBaldowine/pickleplay/models"
)

var (
	ErrGameNotFound       = errors.New("game not found")
	ErrGameCourtInvalid   = errors.New("game court does not exist")
	ErrGameCreatorInvalid = errors.New("game creator does not exist")
)

type GameRepository interface {
	Create(ctx context.Context, game *models.Game) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	// ListOpen returns open games scheduled at or after from, excluding
	// those created by excludeCreatorID.
	ListOpen(ctx context.Context, from time.Time, excludeCreatorID int) ([]models.Game, error)
	ListByCreator(ctx context.Context, creatorID int) ([]models.Game, error)
	Delete(ctx context.Context, id, creatorID int) error
	// ExpireBefore marks open games scheduled before cutoff as expired and
	// returns how many rows changed.
	ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

const gameColumns = `id, creator_id, game_type, skill_level, court_id, scheduled_at, partner_id, partner_name, notes, phone_number, status, created_at`

func (r *postgresGameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (creator_id, game_type, skill_level, court_id, scheduled_at, partner_id, partner_name, notes, phone_number, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	if game.Status == "" {
		game.Status = models.GameStatusOpen
	}

	var partnerID sql.NullInt64
	if game.PartnerID != nil {
		partnerID = sql.NullInt64{Int64: int64(*game.PartnerID), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		game.CreatorID,
		game.GameType,
		game.SkillLevel,
		game.CourtID,
		game.ScheduledAt,
		partnerID,
		nullString(game.PartnerName),
		nullString(game.Notes),
		game.PhoneNumber,
		game.Status,
	).Scan(&game.ID, &game.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqErrorCode(err); ok && code == codeForeignKeyViolation {
			switch constraint {
			case "games_court_id_fkey":
				return ErrGameCourtInvalid
			case "games_creator_id_fkey":
				return ErrGameCreatorInvalid
			}
		}
		return fmt.Errorf("failed to create game: %w", err)
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	g, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to get game %d: %w", id, err)
	}
	return g, nil
}

func (r *postgresGameRepository) ListOpen(ctx context.Context, from time.Time, excludeCreatorID int) ([]models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE status = 'open' AND scheduled_at >= $1 AND creator_id <> $2
		ORDER BY scheduled_at`
	return r.list(ctx, query, from, excludeCreatorID)
}

func (r *postgresGameRepository) ListByCreator(ctx context.Context, creatorID int) ([]models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE creator_id = $1 AND status = 'open'
		ORDER BY scheduled_at`
	return r.list(ctx, query, creatorID)
}

func (r *postgresGameRepository) Delete(ctx context.Context, id, creatorID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE id = $1 AND creator_id = $2`, id, creatorID)
	if err != nil {
		return fmt.Errorf("failed to delete game %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) ExpireBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE games SET status = 'expired' WHERE status = 'open' AND scheduled_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to expire games: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *postgresGameRepository) list(ctx context.Context, query string, args ...any) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := make([]models.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

func scanGame(row rowScanner) (*models.Game, error) {
	var (
		g           models.Game
		partnerID   sql.NullInt64
		partnerName sql.NullString
		notes       sql.NullString
	)
	err := row.Scan(
		&g.ID,
		&g.CreatorID,
		&g.GameType,
		&g.SkillLevel,
		&g.CourtID,
		&g.ScheduledAt,
		&partnerID,
		&partnerName,
		&notes,
		&g.PhoneNumber,
		&g.Status,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	g.PartnerID = intPtr(partnerID)
	g.PartnerName = stringPtr(partnerName)
	g.Notes = stringPtr(notes)
	return &g, nil
}
