package knowledge

import "time"

// ClipID identifier type
type ClipID string

// Clip is an expert-authored guidance note tagged for retrieval. Immutable
// reference data, not user-generated.
type Clip struct {
	ID              ClipID    `json:"id"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	Author          string    `json:"author,omitempty"`
	TaskType        string    `json:"task_type"`
	TriggerKeywords []string  `json:"trigger_keywords"`
	CreatedAt       time.Time `json:"created_at"`
}
