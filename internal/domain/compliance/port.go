package compliance

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, userID string, id AnalysisID) (*Analysis, error)
	Latest(ctx context.Context, userID string, limit int) ([]*Analysis, error)
	// History returns the full analysis history ordered by recency, newest
	// first. The aggregator reads it wholesale; expected sizes are small.
	History(ctx context.Context, userID string) ([]*Analysis, error)
	// SaveRecheck writes the complete replacement value for the recheck
	// fields in one statement; the store keeps the read-modify-write atomic.
	SaveRecheck(ctx context.Context, userID string, id AnalysisID, fixedPhotoURL string, r *RecheckResult) error
}

// PhotoStore port (interface untuk penyimpanan foto)
type PhotoStore interface {
	PutPhoto(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
