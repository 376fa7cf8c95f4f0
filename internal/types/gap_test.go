package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGapValidate(t *testing.T) {
	valid := Gap{
		ID:           "missing:infra",
		Type:         GapDependency,
		Criticality:  CriticalityHigh,
		Certainty:    0.9,
		Fillability:  Fillable,
		Description:  "infra missing from current state",
		DiscoveredBy: []string{"contrastive_analysis"},
	}

	tests := []struct {
		name    string
		mutate  func(g *Gap)
		wantErr string
	}{
		{name: "valid", mutate: func(g *Gap) {}},
		{name: "missing id", mutate: func(g *Gap) { g.ID = "" }, wantErr: "id is required"},
		{name: "bad type", mutate: func(g *Gap) { g.Type = "SPATIAL" }, wantErr: "invalid gap type"},
		{name: "bad criticality", mutate: func(g *Gap) { g.Criticality = "SEVERE" }, wantErr: "invalid criticality"},
		{name: "bad fillability", mutate: func(g *Gap) { g.Fillability = "MAYBE" }, wantErr: "invalid fillability"},
		{name: "certainty too high", mutate: func(g *Gap) { g.Certainty = 1.5 }, wantErr: "certainty"},
		{name: "certainty negative", mutate: func(g *Gap) { g.Certainty = -0.1 }, wantErr: "certainty"},
		{name: "self dependency", mutate: func(g *Gap) { g.Dependencies = []string{"missing:infra"} }, wantErr: "depends on itself"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid
			tt.mutate(&g)
			err := g.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestCriticalityPlanningRank(t *testing.T) {
	// BLOCKING > HIGH > MEDIUM > LOW; UNKNOWN ranks as HIGH for
	// conservative planning.
	assert.Greater(t, CriticalityBlocking.PlanningRank(), CriticalityHigh.PlanningRank())
	assert.Greater(t, CriticalityHigh.PlanningRank(), CriticalityMedium.PlanningRank())
	assert.Greater(t, CriticalityMedium.PlanningRank(), CriticalityLow.PlanningRank())
	assert.Equal(t, CriticalityHigh.PlanningRank(), CriticalityUnknown.PlanningRank())
}

func TestMaxCriticality(t *testing.T) {
	assert.Equal(t, CriticalityBlocking, MaxCriticality(CriticalityLow, CriticalityBlocking))
	assert.Equal(t, CriticalityHigh, MaxCriticality(CriticalityHigh, CriticalityMedium))
	// A concrete level wins a rank tie against UNKNOWN.
	assert.Equal(t, CriticalityHigh, MaxCriticality(CriticalityUnknown, CriticalityHigh))
	assert.Equal(t, CriticalityUnknown, MaxCriticality(CriticalityUnknown, CriticalityLow))
}
