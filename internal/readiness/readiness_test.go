package readiness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planline/internal/dates"
	"planline/internal/domain"
)

var noticeTime = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

func emptyInputs() Inputs {
	st := domain.NewPlanState("p1")
	return FromState(st, DefaultNoticeLeadMonths)
}

func TestGatewayOneBlocksOnNoticeFirst(t *testing.T) {
	in := emptyInputs()
	r := Compute(domain.GatewayG1, in)
	assert.False(t, r.OK)
	assert.Equal(t, CodeNoticeNotPublished, r.Code)
	assert.Equal(t, "Publish notice first", r.Reason)
	assert.Empty(t, r.Hint)

	// Scoping end alone does not satisfy the notice precondition.
	in.ScopingEnd = dates.MustParseDate("2025-03-01")
	r = Compute(domain.GatewayG1, in)
	assert.False(t, r.OK)
	assert.Equal(t, CodeNoticeNotPublished, r.Code)
}

func TestGatewayOneBlocksOnScopingEnd(t *testing.T) {
	in := emptyInputs()
	in.NoticePublishedAt = dates.Published(noticeTime)
	r := Compute(domain.GatewayG1, in)
	assert.False(t, r.OK)
	assert.Equal(t, CodeScopingNotClosed, r.Code)
	assert.Equal(t, "Close scoping consultation (end date required)", r.Reason)
	assert.Equal(t, "Earliest publish date: 2025-05-15", r.Hint)
}

func TestGatewayOneReadyWithHint(t *testing.T) {
	in := emptyInputs()
	in.NoticePublishedAt = dates.Published(noticeTime)

	in.ScopingEnd = dates.MustParseDate("2025-03-01")
	r := Compute(domain.GatewayG1, in)
	require.True(t, r.OK)
	assert.Empty(t, r.Reason)
	assert.Equal(t, "Earliest publish date: 2025-05-15", r.Hint)

	in.ScopingEnd = dates.MustParseDate("2025-07-01")
	r = Compute(domain.GatewayG1, in)
	require.True(t, r.OK)
	assert.Equal(t, "Earliest publish date: 2025-07-01", r.Hint)
}

func TestEarliestGatewayOneUsesLeadMonths(t *testing.T) {
	d, ok := EarliestGatewayOne(dates.NotPublished(), dates.Date{}, 4)
	assert.False(t, ok)
	assert.True(t, d.IsZero())

	d, ok = EarliestGatewayOne(dates.Published(noticeTime), dates.Date{}, 6)
	require.True(t, ok)
	assert.Equal(t, "2025-07-15", d.String())

	d, ok = EarliestGatewayOne(dates.Published(noticeTime), dates.Date{}, 0)
	require.True(t, ok)
	assert.Equal(t, "2025-05-15", d.String())
}

func TestLaterGatewaysFollowSummaries(t *testing.T) {
	in := emptyInputs()

	g2 := Compute(domain.GatewayG2, in)
	assert.False(t, g2.OK)
	assert.Equal(t, "Publish the content & evidence consultation summary first", g2.Reason)

	g3 := Compute(domain.GatewayG3, in)
	assert.False(t, g3.OK)
	assert.Equal(t, "Publish the proposed plan consultation summary first", g3.Reason)

	c := in.Consultations[domain.ConsultationContent]
	c.SummaryPublishedAt = dates.Published(noticeTime)
	in.Consultations[domain.ConsultationContent] = c

	assert.True(t, Compute(domain.GatewayG2, in).OK)
	assert.False(t, Compute(domain.GatewayG3, in).OK)

	p := in.Consultations[domain.ConsultationProposed]
	p.SummaryPublishedAt = dates.Published(noticeTime)
	in.Consultations[domain.ConsultationProposed] = p
	assert.True(t, Compute(domain.GatewayG3, in).OK)
}

func TestMissingConsultationIsNotReady(t *testing.T) {
	in := Inputs{}
	r := Compute(domain.GatewayG2, in)
	assert.False(t, r.OK)
	assert.Equal(t, CodeContentSummaryUnpublished, r.Code)
}

func TestUnknownGateway(t *testing.T) {
	r := Compute(domain.GatewayType("G9"), emptyInputs())
	assert.False(t, r.OK)
	assert.Equal(t, CodeUnknownGateway, r.Code)
}

func TestComputeIsMonotoneInEachInput(t *testing.T) {
	// Turning any required input on never turns readiness off.
	for _, g := range domain.GatewayTypes {
		before := Compute(g, emptyInputs())

		in := emptyInputs()
		in.NoticePublishedAt = dates.Published(noticeTime)
		in.ScopingEnd = dates.MustParseDate("2025-02-01")
		for _, ct := range domain.ConsultationTypes {
			c := in.Consultations[ct]
			c.SummaryPublishedAt = dates.Published(noticeTime)
			in.Consultations[ct] = c
		}
		after := Compute(g, in)

		assert.False(t, before.OK, "gateway %s", g)
		assert.True(t, after.OK, "gateway %s", g)
	}
}

func TestAllReturnsInOrder(t *testing.T) {
	all := All(emptyInputs())
	require.Len(t, all, 3)
	assert.Equal(t, domain.GatewayG1, all[0].Gateway)
	assert.Equal(t, domain.GatewayG2, all[1].Gateway)
	assert.Equal(t, domain.GatewayG3, all[2].Gateway)
}

func TestSubmissionOpen(t *testing.T) {
	assert.False(t, SubmissionOpen(domain.Gateway{Status: domain.GatewayAdviceReceived}))
	assert.False(t, SubmissionOpen(domain.Gateway{Status: domain.GatewayNotPassed}))
	assert.True(t, SubmissionOpen(domain.Gateway{Status: domain.GatewayPassed}))
}
