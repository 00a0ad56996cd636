package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fieldproof/tradecheck/internal/domain/compliance"
)

func TestClassifyTrend(t *testing.T) {
	cases := []struct {
		name   string
		scores []int
		want   Trend
	}{
		{"improving history", []int{92, 88, 85, 60, 55}, TrendUp},
		{"declining history", []int{55, 60, 62, 85, 88, 92}, TrendDown},
		{"flat history", []int{80, 82, 79, 81, 80, 78}, TrendStable},
		{"delta exactly at threshold is stable", []int{85, 85, 85, 80, 80, 80}, TrendStable},
		{"three entries insufficient", []int{100, 50, 10}, TrendStable},
		{"single entry", []int{90}, TrendStable},
		{"empty history", nil, TrendStable},
		{"four entries shares middle samples", []int{90, 90, 90, 40}, TrendUp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyTrend(tc.scores))
		})
	}
}

func TestAverageCompliance(t *testing.T) {
	assert.Equal(t, 0, AverageCompliance(nil))
	assert.Equal(t, 80, AverageCompliance([]int{80}))
	assert.Equal(t, 76, AverageCompliance([]int{92, 88, 85, 60, 55}))
	// 85.5 rounds half away from zero.
	assert.Equal(t, 86, AverageCompliance([]int{85, 86}))
}

func analysisWith(score int, skills ...string) *compliance.Analysis {
	a := &compliance.Analysis{ComplianceScore: score}
	for _, s := range skills {
		a.SkillsDemonstrated = append(a.SkillsDemonstrated, compliance.SkillDemonstrated{Skill: s})
	}
	return a
}

func TestAggregateSkillsRecencyWeighting(t *testing.T) {
	// Newest first: conduit bending was last seen at 90, earlier at 60.
	// Linear decay weights 2,1 => (2*90 + 1*60)/3 = 80.
	history := []*compliance.Analysis{
		analysisWith(90, "conduit bending"),
		analysisWith(60, "conduit bending"),
	}
	skills := AggregateSkills(history)
	assert.Len(t, skills, 1)
	assert.Equal(t, "conduit bending", skills[0].SkillName)
	assert.Equal(t, 80, skills[0].Score)
	assert.Equal(t, 2, skills[0].TotalInstances)

	// Same scores oldest first should land below the plain mean of 75.
	reversed := []*compliance.Analysis{
		analysisWith(60, "conduit bending"),
		analysisWith(90, "conduit bending"),
	}
	assert.Equal(t, 70, AggregateSkills(reversed)[0].Score)
}

func TestAggregateSkillsDedupesWithinAnalysis(t *testing.T) {
	history := []*compliance.Analysis{
		analysisWith(70, "cable termination", "cable termination"),
	}
	skills := AggregateSkills(history)
	assert.Len(t, skills, 1)
	assert.Equal(t, 1, skills[0].TotalInstances)
}

func TestAggregateSkillsOrdering(t *testing.T) {
	history := []*compliance.Analysis{
		analysisWith(90, "bonding", "wire sizing"),
		analysisWith(90, "panel labeling"),
	}
	skills := AggregateSkills(history)
	// Equal scores sort by name for a deterministic credential.
	assert.Equal(t, []string{"bonding", "panel labeling", "wire sizing"}, []string{
		skills[0].SkillName, skills[1].SkillName, skills[2].SkillName,
	})
}

func TestAggregateSkillsSkipsBlankNames(t *testing.T) {
	history := []*compliance.Analysis{analysisWith(90, "", "grounding")}
	skills := AggregateSkills(history)
	assert.Len(t, skills, 1)
	assert.Equal(t, "grounding", skills[0].SkillName)
}

func TestSkillTrendVocabulary(t *testing.T) {
	assert.Equal(t, SkillImproving, TrendUp.AsSkillTrend())
	assert.Equal(t, SkillDeclining, TrendDown.AsSkillTrend())
	assert.Equal(t, SkillStable, TrendStable.AsSkillTrend())
}

func TestPartition(t *testing.T) {
	skills := []SkillScore{
		{SkillName: "grounding", Score: 92},
		{SkillName: "conduit bending", Score: 85},
		{SkillName: "load calculation", Score: 84},
	}
	strong, developing := Partition(skills)
	assert.Len(t, strong, 2)
	assert.Len(t, developing, 1)
	// 85 sits exactly on the threshold and counts as strong.
	assert.Equal(t, "conduit bending", strong[1].SkillName)
	assert.Equal(t, "load calculation", developing[0].SkillName)
	assert.Equal(t, len(skills), len(strong)+len(developing))
}

func TestScores(t *testing.T) {
	history := []*compliance.Analysis{analysisWith(92), analysisWith(88), analysisWith(85)}
	assert.Equal(t, []int{92, 88, 85}, Scores(history))
}
