package knowledge

import "context"

// Repository port for the curated clip corpus
type Repository interface {
	List(ctx context.Context) ([]Clip, error)
	ListByTaskType(ctx context.Context, taskType string) ([]Clip, error)
}
