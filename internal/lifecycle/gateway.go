package lifecycle

import (
	"time"

	"planline/internal/dates"
	"planline/internal/domain"
	"planline/internal/readiness"
)

const DefaultActionTitle = "New action"

func invalidGatewayTransition(g domain.Gateway, to domain.GatewayStatus) *Error {
	return newError(KindInvalidTransition,
		map[string]any{"gateway": string(g.ID), "from": string(g.Status), "to": string(to)},
		"invalid gateway %s transition %s -> %s", g.ID, g.Status, to)
}

// MarkPackDrafting opens the gateway pack for drafting from any non-terminal state.
func MarkPackDrafting(g domain.Gateway) (domain.Gateway, error) {
	if g.Status.IsTerminal() {
		return g, invalidGatewayTransition(g, domain.GatewayDrafting)
	}
	g.Status = domain.GatewayDrafting
	return g, nil
}

func notReady(g domain.Gateway, r readiness.Readiness) *Error {
	details := map[string]any{"gateway": string(g.ID), "code": r.Code}
	if r.Hint != "" {
		details["hint"] = r.Hint
	}
	return newError(KindNotReady, details, "%s", r.Reason)
}

// Submit moves a drafting gateway to submitted and stamps SubmittedAt.
// Readiness is checked before status, so an unready gateway always reports
// NotReady.
func Submit(g domain.Gateway, r readiness.Readiness, now time.Time) (domain.Gateway, error) {
	if !r.OK {
		return g, notReady(g, r)
	}
	if g.Status != domain.GatewayDrafting {
		return g, invalidGatewayTransition(g, domain.GatewaySubmitted)
	}
	g.Status = domain.GatewaySubmitted
	g.SubmittedAt = dates.Published(now)
	return g, nil
}

// ReceiveAdvice records assessor advice on a submitted G2 or G3.
func ReceiveAdvice(g domain.Gateway, now time.Time) (domain.Gateway, error) {
	if g.ID == domain.GatewayG1 {
		return g, newError(KindUnsupportedForGateway,
			map[string]any{"gateway": string(g.ID), "operation": "receive_advice"},
			"%s has no assessor advice step", g.ID)
	}
	if g.Status != domain.GatewaySubmitted {
		return g, invalidGatewayTransition(g, domain.GatewayAdviceReceived)
	}
	g.Status = domain.GatewayAdviceReceived
	g.AdviceReceivedAt = dates.Published(now)
	return g, nil
}

// PublishAdvice stamps AdvicePublishedAt without changing the status.
func PublishAdvice(g domain.Gateway, now time.Time) (domain.Gateway, error) {
	if !g.AdviceReceivedAt.IsPublished() {
		return g, newError(KindAdviceNotReceived,
			map[string]any{"gateway": string(g.ID)},
			"advice for %s has not been received", g.ID)
	}
	g.AdvicePublishedAt = dates.Published(now)
	return g, nil
}

func markTerminal(g domain.Gateway, to domain.GatewayStatus) (domain.Gateway, error) {
	if g.Status == to {
		return g, nil
	}
	if g.Status.IsTerminal() {
		return g, invalidGatewayTransition(g, to)
	}
	g.Status = to
	return g, nil
}

// MarkPassed records a passed outcome. A gateway that already has an outcome
// keeps it.
func MarkPassed(g domain.Gateway) (domain.Gateway, error) {
	return markTerminal(g, domain.GatewayPassed)
}

func MarkNotPassed(g domain.Gateway) (domain.Gateway, error) {
	return markTerminal(g, domain.GatewayNotPassed)
}

// PublishGatewaySummary publishes the Gateway 1 summary, which is also its
// pass. Later gateways pass through assessor advice instead.
func PublishGatewaySummary(g domain.Gateway, r readiness.Readiness, now time.Time) (domain.Gateway, error) {
	if g.ID != domain.GatewayG1 {
		return g, newError(KindUnsupportedForGateway,
			map[string]any{"gateway": string(g.ID), "operation": "publish_summary"},
			"%s does not publish a gateway summary", g.ID)
	}
	if !r.OK {
		return g, notReady(g, r)
	}
	if g.Status == domain.GatewayNotPassed {
		return g, invalidGatewayTransition(g, domain.GatewayPassed)
	}
	g.Status = domain.GatewayPassed
	g.PublishedAt = dates.Published(now)
	return g, nil
}

// SetStatus dispatches a requested status to its dedicated transition so the
// state machine is enforced whichever entry point is used.
func SetStatus(g domain.Gateway, status domain.GatewayStatus, r readiness.Readiness, now time.Time) (domain.Gateway, error) {
	if !status.Valid() {
		return g, InvalidInput("gateway status", string(status))
	}
	switch status {
	case domain.GatewayDrafting:
		return MarkPackDrafting(g)
	case domain.GatewaySubmitted:
		return Submit(g, r, now)
	case domain.GatewayAdviceReceived:
		return ReceiveAdvice(g, now)
	case domain.GatewayPassed:
		return MarkPassed(g)
	case domain.GatewayNotPassed:
		return MarkNotPassed(g)
	default:
		if g.Status == status {
			return g, nil
		}
		return g, invalidGatewayTransition(g, status)
	}
}

// AddAction appends an open action item. An empty title uses the default.
func AddAction(g domain.Gateway, id, title string) (domain.Gateway, domain.Action) {
	if title == "" {
		title = DefaultActionTitle
	}
	a := domain.Action{ID: id, Title: title, Status: domain.ActionOpen}
	g.Actions = append(append([]domain.Action(nil), g.Actions...), a)
	return g, a
}

func actionIndex(g domain.Gateway, id string) int {
	for i, a := range g.Actions {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// ToggleAction flips an action between open and done.
func ToggleAction(g domain.Gateway, id string) (domain.Gateway, error) {
	i := actionIndex(g, id)
	if i < 0 {
		return g, NotFound("action", id)
	}
	actions := append([]domain.Action(nil), g.Actions...)
	if actions[i].Status == domain.ActionDone {
		actions[i].Status = domain.ActionOpen
	} else {
		actions[i].Status = domain.ActionDone
	}
	g.Actions = actions
	return g, nil
}

func RenameAction(g domain.Gateway, id, title string) (domain.Gateway, error) {
	i := actionIndex(g, id)
	if i < 0 {
		return g, NotFound("action", id)
	}
	actions := append([]domain.Action(nil), g.Actions...)
	actions[i].Title = title
	g.Actions = actions
	return g, nil
}
