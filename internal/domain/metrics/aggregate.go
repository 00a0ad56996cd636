package metrics

import (
	"math"
	"sort"

	"github.com/fieldproof/tradecheck/internal/domain/compliance"
)

// Trend enum for compliance history direction.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendStable Trend = "stable"
	TrendDown   Trend = "down"
)

// SkillTrend enum for per-skill direction.
type SkillTrend string

const (
	SkillImproving SkillTrend = "improving"
	SkillStable    SkillTrend = "stable"
	SkillDeclining SkillTrend = "declining"
)

// AsSkillTrend maps the shared classifier output onto the skill vocabulary.
func (t Trend) AsSkillTrend() SkillTrend {
	switch t {
	case TrendUp:
		return SkillImproving
	case TrendDown:
		return SkillDeclining
	}
	return SkillStable
}

// StrongSkillThreshold partitions skills into strong (>=) and developing (<)
// for credential display. Fixed policy constant, not configurable per user.
const StrongSkillThreshold = 85

const (
	trendWindow     = 3
	trendDelta      = 5.0
	minTrendHistory = 4
)

// SkillScore is the aggregate proficiency for one named skill across history.
// Derived entirely on read; never stored as ground truth.
type SkillScore struct {
	SkillName      string     `json:"skill_name"`
	Score          int        `json:"score"`
	TotalInstances int        `json:"total_instances"`
	Trend          SkillTrend `json:"trend"`
}

// Strong reports whether the skill clears the credential threshold.
func (s SkillScore) Strong() bool { return s.Score >= StrongSkillThreshold }

// ClassifyTrend compares the newest up-to-3 scores against the oldest
// up-to-3 of a newest-first history. Fewer than 4 entries is insufficient
// signal and always classifies stable.
func ClassifyTrend(scores []int) Trend {
	if len(scores) < minTrendHistory {
		return TrendStable
	}
	recent := mean(scores[:min(trendWindow, len(scores))])
	oldStart := len(scores) - trendWindow
	if oldStart < 0 {
		oldStart = 0
	}
	old := mean(scores[oldStart:])
	switch {
	case recent-old > trendDelta:
		return TrendUp
	case old-recent > trendDelta:
		return TrendDown
	}
	return TrendStable
}

// AverageCompliance is the mean score rounded to the nearest integer.
// An empty history is a valid state and averages to 0.
func AverageCompliance(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	return int(math.Round(mean(scores)))
}

// Scores extracts the compliance scores of a newest-first history.
func Scores(history []*compliance.Analysis) []int {
	out := make([]int, len(history))
	for i, a := range history {
		out[i] = a.ComplianceScore
	}
	return out
}

// AggregateSkills derives a SkillScore for each distinct skill named across
// the history (newest first). Score is a recency-weighted average of the
// compliance scores of the analyses demonstrating the skill: linear decay,
// newest heaviest. Output is sorted by score descending, then name, so equal
// inputs always yield identical output.
func AggregateSkills(history []*compliance.Analysis) []SkillScore {
	type series struct {
		name   string
		scores []int // newest first, same order as history
	}
	index := make(map[string]*series)
	var order []string
	for _, a := range history {
		seen := make(map[string]bool, len(a.SkillsDemonstrated))
		for _, sd := range a.SkillsDemonstrated {
			if sd.Skill == "" || seen[sd.Skill] {
				continue
			}
			seen[sd.Skill] = true
			s, ok := index[sd.Skill]
			if !ok {
				s = &series{name: sd.Skill}
				index[sd.Skill] = s
				order = append(order, sd.Skill)
			}
			s.scores = append(s.scores, a.ComplianceScore)
		}
	}

	out := make([]SkillScore, 0, len(order))
	for _, name := range order {
		s := index[name]
		out = append(out, SkillScore{
			SkillName:      s.name,
			Score:          recencyWeighted(s.scores),
			TotalInstances: len(s.scores),
			Trend:          ClassifyTrend(s.scores).AsSkillTrend(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SkillName < out[j].SkillName
	})
	return out
}

// Partition splits skills at the strong threshold. The two sets are disjoint
// and their union is the input.
func Partition(skills []SkillScore) (strong, developing []SkillScore) {
	for _, s := range skills {
		if s.Strong() {
			strong = append(strong, s)
		} else {
			developing = append(developing, s)
		}
	}
	return strong, developing
}

// recencyWeighted averages newest-first scores with weights n, n-1, ..., 1.
func recencyWeighted(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	var sum, weights float64
	n := len(scores)
	for i, s := range scores {
		w := float64(n - i)
		sum += w * float64(s)
		weights += w
	}
	return compliance.ClampScore(int(math.Round(sum / weights)))
}

func mean(scores []int) float64 {
	var sum float64
	for _, s := range scores {
		sum += float64(s)
	}
	return sum / float64(len(scores))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
