package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/fieldproof/tradecheck/internal/domain/knowledge"
)

type KnowledgeRepository struct {
	db *sql.DB
}

func NewKnowledgeRepository(db *sql.DB) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

const clipColumns = `id, title, content, author, task_type, trigger_keywords_json, created_at`

// List returns the whole curated corpus in insertion order.
func (r *KnowledgeRepository) List(ctx context.Context) ([]domain.Clip, error) {
	q := `SELECT ` + clipColumns + ` FROM knowledge_clips ORDER BY created_at ASC, id ASC;`
	return r.queryClips(ctx, q)
}

// ListByTaskType filters the corpus to one task type.
func (r *KnowledgeRepository) ListByTaskType(ctx context.Context, taskType string) ([]domain.Clip, error) {
	q := `SELECT ` + clipColumns + ` FROM knowledge_clips WHERE task_type=? ORDER BY created_at ASC, id ASC;`
	return r.queryClips(ctx, q, taskType)
}

func (r *KnowledgeRepository) queryClips(ctx context.Context, q string, args ...any) ([]domain.Clip, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Clip
	for rows.Next() {
		var c domain.Clip
		var triggers sql.NullString
		if err := rows.Scan(&c.ID, &c.Title, &c.Content, &c.Author, &c.TaskType, &triggers, &c.CreatedAt); err != nil {
			return nil, err
		}
		if triggers.Valid && triggers.String != "" {
			if err := json.Unmarshal([]byte(triggers.String), &c.TriggerKeywords); err != nil {
				return nil, fmt.Errorf("unmarshaling trigger keywords for %s: %w", c.ID, err)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
