package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planline/internal/domain"
	"planline/internal/readiness"
)

var (
	ready   = readiness.Readiness{OK: true}
	blocked = readiness.Readiness{Code: readiness.CodeContentSummaryUnpublished, Reason: "Publish the content & evidence consultation summary first"}
)

func gateway(id domain.GatewayType) domain.Gateway {
	return domain.NewPlanState("p1").Gateways[id]
}

func TestGatewayHappyPath(t *testing.T) {
	g := gateway(domain.GatewayG2)
	g, err := MarkPackDrafting(g)
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayDrafting, g.Status)

	g, err = Submit(g, ready, now)
	require.NoError(t, err)
	assert.Equal(t, domain.GatewaySubmitted, g.Status)
	assert.True(t, g.SubmittedAt.IsPublished())

	g, err = ReceiveAdvice(g, now)
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayAdviceReceived, g.Status)
	assert.True(t, g.AdviceReceivedAt.IsPublished())

	g, err = PublishAdvice(g, now)
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayAdviceReceived, g.Status)
	assert.True(t, g.AdvicePublishedAt.IsPublished())

	g, err = MarkPassed(g)
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayPassed, g.Status)
}

func TestSubmitNotReadyLeavesGatewayUntouched(t *testing.T) {
	g, _ := MarkPackDrafting(gateway(domain.GatewayG2))
	out, err := Submit(g, blocked, now)
	require.ErrorIs(t, err, ErrNotReady)
	assert.Equal(t, blocked.Reason, err.Error())
	assert.Equal(t, g, out)
	assert.False(t, out.SubmittedAt.IsPublished())

	// Readiness is checked before status.
	_, err = Submit(gateway(domain.GatewayG2), blocked, now)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSubmitRequiresDrafting(t *testing.T) {
	_, err := Submit(gateway(domain.GatewayG3), ready, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReceiveAdviceUnsupportedOnG1(t *testing.T) {
	for _, st := range []domain.GatewayStatus{domain.GatewayNotStarted, domain.GatewayDrafting, domain.GatewaySubmitted} {
		g := gateway(domain.GatewayG1)
		g.Status = st
		_, err := ReceiveAdvice(g, now)
		assert.ErrorIs(t, err, ErrUnsupportedForGateway, "status %s", st)
	}
}

func TestReceiveAdviceRequiresSubmitted(t *testing.T) {
	_, err := ReceiveAdvice(gateway(domain.GatewayG3), now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPublishAdviceRequiresAdvice(t *testing.T) {
	g := gateway(domain.GatewayG2)
	g.Status = domain.GatewaySubmitted
	out, err := PublishAdvice(g, now)
	require.ErrorIs(t, err, ErrAdviceNotReceived)
	assert.False(t, out.AdvicePublishedAt.IsPublished())
}

func TestTerminalStatesHold(t *testing.T) {
	g := gateway(domain.GatewayG3)
	g, err := MarkNotPassed(g)
	require.NoError(t, err)

	_, err = MarkPassed(g)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = MarkPackDrafting(g)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	same, err := MarkNotPassed(g)
	require.NoError(t, err)
	assert.Equal(t, g, same)
}

func TestPublishGatewaySummary(t *testing.T) {
	_, err := PublishGatewaySummary(gateway(domain.GatewayG2), ready, now)
	assert.ErrorIs(t, err, ErrUnsupportedForGateway)

	g1 := gateway(domain.GatewayG1)
	_, err = PublishGatewaySummary(g1, readiness.Readiness{Reason: "Publish notice first"}, now)
	assert.ErrorIs(t, err, ErrNotReady)

	g1, err = PublishGatewaySummary(g1, ready, now)
	require.NoError(t, err)
	assert.Equal(t, domain.GatewayPassed, g1.Status)
	assert.True(t, g1.PublishedAt.IsPublished())
}

func TestSetStatusDispatches(t *testing.T) {
	g := gateway(domain.GatewayG2)

	_, err := SetStatus(g, domain.GatewayStatus("archived"), ready, now)
	assert.ErrorIs(t, err, ErrInvalidInput)

	g, err = SetStatus(g, domain.GatewayDrafting, ready, now)
	require.NoError(t, err)

	_, err = SetStatus(g, domain.GatewaySubmitted, blocked, now)
	assert.ErrorIs(t, err, ErrNotReady)

	g, err = SetStatus(g, domain.GatewaySubmitted, ready, now)
	require.NoError(t, err)
	assert.True(t, g.SubmittedAt.IsPublished())

	_, err = SetStatus(g, domain.GatewayNotStarted, ready, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	g1 := gateway(domain.GatewayG1)
	_, err = SetStatus(g1, domain.GatewayAdviceReceived, ready, now)
	assert.ErrorIs(t, err, ErrUnsupportedForGateway)

	same, err := SetStatus(g1, domain.GatewayNotStarted, ready, now)
	require.NoError(t, err)
	assert.Equal(t, g1, same)
}

func TestActions(t *testing.T) {
	g := gateway(domain.GatewayG1)
	g, a := AddAction(g, "a1", "")
	assert.Equal(t, DefaultActionTitle, a.Title)
	assert.Equal(t, domain.ActionOpen, a.Status)

	g, err := ToggleAction(g, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionDone, g.Actions[0].Status)
	g, err = ToggleAction(g, "a1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOpen, g.Actions[0].Status)

	g, err = RenameAction(g, "a1", "Agree statement of common ground")
	require.NoError(t, err)
	assert.Equal(t, "Agree statement of common ground", g.Actions[0].Title)

	_, err = ToggleAction(g, "zz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = RenameAction(g, "zz", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}
