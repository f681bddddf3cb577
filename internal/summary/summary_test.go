package summary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planline/internal/dates"
	"planline/internal/domain"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func reference() Reference {
	return Reference{
		Pressures: []domain.Pressure{
			{ID: "housing", Title: "Housing land supply", Severity: domain.SeverityHigh, Impacts: []string{"5YHLS", "Appeals", "Green belt"}},
			{ID: "transport", Title: "Transport capacity", Severity: domain.SeverityMedium, Impacts: []string{"Junction 12", "Bus frequency"}},
			{ID: "water", Title: "Water neutrality", Severity: domain.SeverityLow, Impacts: []string{"Phasing"}},
			{ID: "retail", Title: "Town centre vacancy", Severity: domain.SeverityLow},
		},
		Reading: domain.ReadingProfile{ID: "balanced", Label: "Balanced"},
	}
}

func TestEvidenceCountsAnyOrder(t *testing.T) {
	items := []domain.EvidenceItem{
		{ID: "1", Title: "SHLAA", Status: domain.EvidenceFinal},
		{ID: "2", Title: "Retail study", Status: domain.EvidenceCommissioned},
		{ID: "3", Title: "Viability", Status: domain.EvidenceDraft},
		{ID: "4", Title: "SFRA", Status: domain.EvidenceFinal},
		{ID: "5", Title: "Transport model", Status: domain.EvidenceCommissioned},
	}
	perms := [][]int{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}}
	for _, perm := range perms {
		st := domain.NewPlanState("p1")
		for _, i := range perm {
			st.Evidence = append(st.Evidence, items[i])
		}
		h := Summarize(st, reference(), DefaultRules(), now)
		assert.Equal(t, 2, h.Evidence.Final)
		assert.Equal(t, 1, h.Evidence.Draft)
		assert.True(t, h.Evidence.Missing.ComputePending)
	}
}

func TestNextDatesDoesNotFabricate(t *testing.T) {
	today := dates.Today(now)
	ms := []domain.Milestone{
		{ID: "g1", Label: "Gateway 1", Date: dates.AddMonths(today, 4), Kind: domain.MilestoneGateway},
		{ID: "tt", Label: "Publish timetable", Date: today, Kind: domain.MilestoneProgramme},
	}
	got := NextDates(ms, 3)
	require.Len(t, got, 2)
	assert.Equal(t, "Publish timetable", got[0].Label)
	assert.Equal(t, "2025-03-10", got[0].Date)
	assert.Equal(t, "Gateway 1", got[1].Label)
	assert.Equal(t, "2025-07-10", got[1].Date)
	assert.Equal(t, "g1", ms[0].ID, "input must not be reordered")
}

func TestNextDatesCaps(t *testing.T) {
	var ms []domain.Milestone
	for i := 5; i > 0; i-- {
		ms = append(ms, domain.Milestone{ID: string(rune('a' + i)), Label: "m", Date: dates.NewDate(2025, time.Month(i), 1)})
	}
	got := NextDates(ms, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-01-01", got[0].Date)
	assert.Equal(t, "2025-03-01", got[2].Date)
}

func TestScrutinyAndImpacts(t *testing.T) {
	h := Summarize(domain.NewPlanState("p1"), reference(), DefaultRules(), now)
	require.Len(t, h.ScrutinyPoints, 3)
	assert.Equal(t, "Housing land supply", h.ScrutinyPoints[0].Label)
	assert.Equal(t, domain.SeverityHigh, h.ScrutinyPoints[0].Severity)
	assert.Equal(t, []string{"5YHLS", "Appeals", "Green belt", "Junction 12"}, h.WhereItBites)
}

func TestGatesAndBlocking(t *testing.T) {
	st := domain.NewPlanState("p1")
	g1 := st.Gateways[domain.GatewayG1]
	g1.Status = domain.GatewayPassed
	st.Gateways[domain.GatewayG1] = g1
	g2 := st.Gateways[domain.GatewayG2]
	g2.Status = domain.GatewayDrafting
	st.Gateways[domain.GatewayG2] = g2

	h := Summarize(st, reference(), DefaultRules(), now)
	assert.Equal(t, []Gate{
		{ID: domain.GatewayG1, Status: GatePassed},
		{ID: domain.GatewayG2, Status: GateInProgress},
		{ID: domain.GatewayG3, Status: GatePending},
	}, h.Gates)
	assert.Equal(t, 1, h.Blocking)

	c := st.Consultations[domain.ConsultationContent]
	c.SummaryPublishedAt = dates.Published(now)
	st.Consultations[domain.ConsultationContent] = c
	assert.Equal(t, 0, Summarize(st, reference(), DefaultRules(), now).Blocking)
}

func TestPlaceholdersAreMarked(t *testing.T) {
	h := Summarize(domain.NewPlanState("p1"), reference(), DefaultRules(), now)
	assert.True(t, h.Drift.ComputePending)
	assert.True(t, h.Sites.ComputePending)
	assert.Equal(t, 24, h.Sites.Value.Identified)
	assert.True(t, h.AllocationRisk.ComputePending)
	assert.True(t, h.MapGaps.ComputePending)
	assert.True(t, h.Scenarios.Stale.ComputePending)
	assert.True(t, h.CriticalMissing.ComputePending)
	assert.True(t, h.Churn.ComputePending)
	assert.Equal(t, "missing", h.Policies.Vision)
	assert.Equal(t, "Content & Evidence", h.Stage.Label)
	assert.True(t, h.Reading.LastRevised.ComputePending)
}

func TestReadingRevisedIsComputedOnceChanged(t *testing.T) {
	st := domain.NewPlanState("p1")
	st.ReadingChangedAt = dates.Published(now.Add(-49 * time.Hour))
	st.VisionOutcomesPublishedAt = dates.Published(now)
	h := Summarize(st, reference(), DefaultRules(), now)
	assert.False(t, h.Reading.LastRevised.ComputePending)
	assert.Equal(t, "2 days ago", h.Reading.LastRevised.Value)
	assert.Equal(t, "drafted", h.Policies.Vision)
}

func TestRecentlyUpdatedIsFirstFinal(t *testing.T) {
	st := domain.NewPlanState("p1")
	st.Evidence = []domain.EvidenceItem{
		{Title: "Draft thing", Status: domain.EvidenceDraft},
		{Title: "SHLAA", Status: domain.EvidenceFinal},
		{Title: "SFRA", Status: domain.EvidenceFinal},
	}
	assert.Equal(t, "SHLAA", Summarize(st, reference(), DefaultRules(), now).RecentlyUpdated)
}

func TestBucketMonotoneAndBounded(t *testing.T) {
	prev := Bucket(-5)
	assert.Equal(t, Dormant, prev)
	for s := -4; s < 100; s++ {
		b := Bucket(s)
		assert.GreaterOrEqual(t, int(b), int(prev))
		assert.GreaterOrEqual(t, int(b), 0)
		assert.LessOrEqual(t, int(b), 3)
		prev = b
	}
	assert.Equal(t, Acute, Bucket(100))
	assert.Equal(t, "pressing", Pressing.String())
}

func TestCardIntensities(t *testing.T) {
	st := domain.NewPlanState("p1")
	quiet := CardIntensities(st, Reference{}, DefaultRules())
	assert.Equal(t, Pressing, quiet.PlanContent)

	st.Consultations[domain.ConsultationScoping] = domain.Consultation{
		Type:            domain.ConsultationScoping,
		Representations: []domain.Representation{{Status: domain.RepresentationUnread}, {Status: domain.RepresentationUnread}},
	}
	loud := CardIntensities(st, reference(), DefaultRules())
	assert.Equal(t, Acute, loud.PlanContent)
	assert.GreaterOrEqual(t, int(loud.Scrutiny), int(quiet.Scrutiny))
}
