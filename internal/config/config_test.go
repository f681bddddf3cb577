package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planline/internal/dates"
	"planline/internal/domain"
)

func TestDefaultTemplateIsValid(t *testing.T) {
	cfg, err := FromYAML([]byte(GenerateDefault()))
	require.NoError(t, err)
	assert.Len(t, cfg.Plans, 2)
	assert.Equal(t, "p1", cfg.DefaultPlanID())
	assert.Equal(t, 4, cfg.Rules.NoticeLeadMonths)
	assert.Equal(t, 6, cfg.Rules.UpcomingMilestones)
	require.Len(t, cfg.Readings, 2)
	assert.Equal(t, "Strong", cfg.Readings[0].Emphasis[0].Value)
	require.Len(t, cfg.Pressures, 2)
	assert.Equal(t, domain.SeverityHigh, cfg.Pressures[0].Severity)
	assert.Equal(t, []string{"Gateway 2 pack", "Option set", "Consultation narrative"}, cfg.Pressures[0].Impacts)
}

func TestValidateRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"no plans":       "plans: []\n",
		"duplicate plan": "plans: [{id: a}, {id: a}]\n",
		"unknown active": "workspace: {active_plan: z}\nplans: [{id: a}]\n",
		"bad severity":   "plans: [{id: a}]\npressures: [{id: x, severity: Severe}]\n",
		"bad kind":       "plans: [{id: a}]\nseed: {milestones: [{label: x, kind: meeting}]}\n",
		"unknown read":   "plans: [{id: a}]\nseed: {reading: nope}\n",
		"negative rule":  "plans: [{id: a}]\nrules: {next_dates: -1}\n",
	}
	for name, doc := range cases {
		_, err := FromYAML([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestSeedState(t *testing.T) {
	cfg := Default()
	n := 0
	newID := func(prefix string) string {
		n++
		return prefix + "-" + strings.Repeat("x", n)
	}
	today := dates.MustParseDate("2025-01-31")
	st := cfg.SeedState("p1", today, newID)

	assert.Equal(t, "p1", st.PlanID)
	assert.Equal(t, "balanced", st.ReadingID)
	require.Len(t, st.Milestones, 4)
	assert.Equal(t, "2025-01-31", st.Milestones[0].Date.String())
	assert.Equal(t, "2025-03-03", st.Milestones[2].Date.String())
	assert.Equal(t, domain.MilestoneGateway, st.Milestones[3].Kind)
	assert.Len(t, st.Evidence, 3)
	assert.Len(t, st.Signals, 3)
	require.Len(t, st.Options, 1)
	assert.Len(t, st.Options[0].Pros, 1)
	assert.Len(t, st.Consultations, 3)
	assert.Len(t, st.Gateways, 3)
	assert.False(t, st.NoticePublishedAt.IsPublished())
}

func TestLoadOptional(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadOptional(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "planline.yml"), []byte(GenerateDefault()), 0o644))
	cfg, err = LoadOptional(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "Local Plan 2045", cfg.Plans[0].Name)
}
