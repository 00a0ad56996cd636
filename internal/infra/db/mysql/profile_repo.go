package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fieldproof/tradecheck/internal/domain/compliance"
	domain "github.com/fieldproof/tradecheck/internal/domain/profile"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Get profile by user id
func (r *ProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	const q = `
SELECT user_id, name, trade, primary_jurisdiction, created_at
FROM profiles
WHERE user_id=? LIMIT 1;
`
	var p domain.Profile
	err := r.db.QueryRowContext(ctx, q, userID).Scan(
		&p.UserID, &p.Name, &p.Trade, &p.PrimaryJurisdiction, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profile %s: %w", userID, compliance.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Save insert/update profile
func (r *ProfileRepository) Save(ctx context.Context, p *domain.Profile) error {
	const q = `
INSERT INTO profiles (user_id, name, trade, primary_jurisdiction, created_at)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 name=VALUES(name), trade=VALUES(trade), primary_jurisdiction=VALUES(primary_jurisdiction);
`
	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, stringOrDash(p.UserID), p.Name, p.Trade, p.PrimaryJurisdiction, created)
	return err
}
