package profile

import (
	"context"
	"time"
)

// Profile identifies one tradesperson. Passed explicitly into the credential
// builder; there is no ambient identity lookup.
type Profile struct {
	UserID              string    `json:"user_id"`
	Name                string    `json:"name"`
	Trade               string    `json:"trade,omitempty"`
	PrimaryJurisdiction string    `json:"primary_jurisdiction,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// Repository port for profile persistence
type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Save(ctx context.Context, p *Profile) error
}
