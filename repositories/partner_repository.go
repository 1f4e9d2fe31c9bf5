package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/NicoBaldowine/pickleplay/models"
)

var (
	ErrPartnerNotFound     = errors.New("partner not found")
	ErrPartnerNameConflict = errors.New("partner with this name already exists")
	ErrPartnerOwnerInvalid = errors.New("partner owner does not exist")
)

type PartnerRepository interface {
	Create(ctx context.Context, partner *models.Partner) error
	ListByUser(ctx context.Context, userID int) ([]models.Partner, error)
	ListByIDs(ctx context.Context, ids []int) ([]models.Partner, error)
	Delete(ctx context.Context, id, userID int) error
}

type postgresPartnerRepository struct {
	db *sql.DB
}

func NewPostgresPartnerRepository(db *sql.DB) PartnerRepository {
	return &postgresPartnerRepository{db: db}
}

const partnerColumns = `id, user_id, name, skill_level, phone_number, created_at`

func (r *postgresPartnerRepository) Create(ctx context.Context, partner *models.Partner) error {
	query := `
		INSERT INTO partners (user_id, name, skill_level, phone_number)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		partner.UserID,
		partner.Name,
		nullSkill(partner.SkillLevel),
		nullString(partner.PhoneNumber),
	).Scan(&partner.ID, &partner.CreatedAt)

	if err != nil {
		if code, _, ok := pqErrorCode(err); ok {
			switch code {
			case codeUniqueViolation:
				return ErrPartnerNameConflict
			case codeForeignKeyViolation:
				return ErrPartnerOwnerInvalid
			}
		}
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}

func (r *postgresPartnerRepository) ListByUser(ctx context.Context, userID int) ([]models.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE user_id = $1 ORDER BY name`
	return r.list(ctx, query, userID)
}

func (r *postgresPartnerRepository) ListByIDs(ctx context.Context, ids []int) ([]models.Partner, error) {
	if len(ids) == 0 {
		return []models.Partner{}, nil
	}
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id = ANY($1)`
	return r.list(ctx, query, pq.Array(ids))
}

// Delete removes a partner owned by userID.
func (r *postgresPartnerRepository) Delete(ctx context.Context, id, userID int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM partners WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete partner %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrPartnerNotFound)
}

func (r *postgresPartnerRepository) list(ctx context.Context, query string, args ...any) ([]models.Partner, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	defer rows.Close()

	partners := make([]models.Partner, 0)
	for rows.Next() {
		var (
			p     models.Partner
			skill sql.NullString
			phone sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &skill, &phone, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		p.SkillLevel = skillPtr(skill)
		p.PhoneNumber = stringPtr(phone)
		partners = append(partners, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating partners: %w", err)
	}
	return partners, nil
}
