package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"planline/internal/config"
	"planline/internal/dates"
	"planline/internal/db"
	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/lifecycle"
	"planline/internal/migrate"
	"planline/internal/repo"
	"planline/internal/store"
)

var fixedNow = time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	Store   *store.Store
	Persist store.SQLPersister
	Ctx     context.Context
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := config.Default()
	clock := func() time.Time { return fixedNow }
	p := store.NewSQLPersister(conn, clock)
	ctx := context.Background()
	if err := p.SyncPlans(ctx, cfg.Plans); err != nil {
		t.Fatalf("sync plans: %v", err)
	}
	s := store.New(p, cfg)
	s.Now = clock
	n := 0
	s.NewID = func(prefix string) string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
	s.ActorID = "tester"
	return testEnv{Store: s, Persist: p, Ctx: ctx}
}

func TestSeededStateOnFirstRead(t *testing.T) {
	env := newTestEnv(t)
	ms, err := env.Store.ListMilestones(env.Ctx)
	if err != nil {
		t.Fatalf("list milestones: %v", err)
	}
	if len(ms) != 4 {
		t.Fatalf("expected 4 seeded milestones, got %d", len(ms))
	}
	if ms[0].Date.String() != "2025-01-15" || ms[3].Date.String() != "2025-05-15" {
		t.Fatalf("unexpected seeded dates: %s .. %s", ms[0].Date, ms[3].Date)
	}
	plan, err := env.Store.ActivePlan(env.Ctx)
	if err != nil || plan.ID != "p1" {
		t.Fatalf("active plan: %+v %v", plan, err)
	}
	evs, err := env.Persist.Repo.LatestEvents(env.Ctx, 10, repo.EventFilter{PlanID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(evs) != 1 || evs[0].Type != "plan.seed" {
		t.Fatalf("expected plan.seed event, got %+v", evs)
	}
}

func TestContentConsultationUnlocksGatewayTwo(t *testing.T) {
	env := newTestEnv(t)
	ct := domain.ConsultationContent
	r1, err := env.Store.AddRepresentation(env.Ctx, ct)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := env.Store.AddRepresentation(env.Ctx, ct)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Status != domain.RepresentationUnread || r1.ReceivedAt.String() != "2025-01-15" {
		t.Fatalf("unexpected new representation: %+v", r1)
	}

	_, err = env.Store.PublishConsultationSummary(env.Ctx, ct)
	if !errors.Is(err, lifecycle.ErrPublishBlocked) {
		t.Fatalf("expected PublishBlocked, got %v", err)
	}
	c, _ := env.Store.GetConsultation(env.Ctx, ct)
	if c.SummaryPublishedAt.IsPublished() {
		t.Fatalf("summary must stay unpublished after a blocked publish")
	}

	for _, id := range []string{r1.ID, r2.ID} {
		if _, err := env.Store.SetRepresentationStatus(env.Ctx, ct, id, domain.RepresentationTriaged); err != nil {
			t.Fatalf("triage %s: %v", id, err)
		}
		if _, err := env.Store.SetRepresentationStatus(env.Ctx, ct, id, domain.RepresentationSummarized); err != nil {
			t.Fatalf("summarize %s: %v", id, err)
		}
	}
	c, err = env.Store.PublishConsultationSummary(env.Ctx, ct)
	if err != nil {
		t.Fatalf("publish summary: %v", err)
	}
	if at, ok := c.SummaryPublishedAt.At(); !ok || !at.Equal(fixedNow) {
		t.Fatalf("summary stamp = %v %v", at, ok)
	}
	r, err := env.Store.Readiness(env.Ctx, domain.GatewayG2)
	if err != nil || !r.OK {
		t.Fatalf("expected G2 ready, got %+v %v", r, err)
	}
}

func TestRepresentationCannotSkip(t *testing.T) {
	env := newTestEnv(t)
	rep, _ := env.Store.AddRepresentation(env.Ctx, domain.ConsultationScoping)
	_, err := env.Store.SetRepresentationStatus(env.Ctx, domain.ConsultationScoping, rep.ID, domain.RepresentationSummarized)
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	_, err = env.Store.SetRepresentationStatus(env.Ctx, domain.ConsultationScoping, "rep-missing", domain.RepresentationTriaged)
	if !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestGatewayOneFlow(t *testing.T) {
	env := newTestEnv(t)
	g1 := domain.GatewayG1

	if _, err := env.Store.MarkPackDrafting(env.Ctx, g1); err != nil {
		t.Fatal(err)
	}
	_, err := env.Store.SubmitGateway(env.Ctx, g1)
	if !errors.Is(err, lifecycle.ErrNotReady) {
		t.Fatalf("expected NotReady, got %v", err)
	}
	if err.Error() != "Publish notice first" {
		t.Fatalf("unexpected reason %q", err.Error())
	}
	gw, _ := env.Store.GetGateway(env.Ctx, g1)
	if gw.SubmittedAt.IsPublished() {
		t.Fatalf("failed submit must not stamp submittedAt")
	}

	if _, err := env.Store.PublishNotice(env.Ctx); !errors.Is(err, lifecycle.ErrTimetableNotPublished) {
		t.Fatalf("expected TimetableNotPublished, got %v", err)
	}
	if _, err := env.Store.PublishTimetable(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Store.PublishNotice(env.Ctx); err != nil {
		t.Fatal(err)
	}
	r, _ := env.Store.Readiness(env.Ctx, g1)
	if r.OK || r.Hint != "Earliest publish date: 2025-05-15" {
		t.Fatalf("unexpected readiness after notice: %+v", r)
	}
	if _, err := env.Store.CloseScoping(env.Ctx, dates.MustParseDate("2025-02-20")); err != nil {
		t.Fatal(err)
	}
	gw, err = env.Store.SubmitGateway(env.Ctx, g1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if gw.Status != domain.GatewaySubmitted || !gw.SubmittedAt.IsPublished() {
		t.Fatalf("unexpected gateway after submit: %+v", gw)
	}
	if _, err := env.Store.ReceiveGatewayAdvice(env.Ctx, g1); !errors.Is(err, lifecycle.ErrUnsupportedForGateway) {
		t.Fatalf("expected UnsupportedForGateway, got %v", err)
	}
	gw, err = env.Store.PublishGatewaySummary(env.Ctx, g1)
	if err != nil || gw.Status != domain.GatewayPassed || !gw.PublishedAt.IsPublished() {
		t.Fatalf("publish G1 summary: %+v %v", gw, err)
	}
}

func TestGatewayAdviceAndSubmission(t *testing.T) {
	env := newTestEnv(t)
	g3 := domain.GatewayG3
	if _, err := env.Store.PublishGatewayAdvice(env.Ctx, g3); !errors.Is(err, lifecycle.ErrAdviceNotReceived) {
		t.Fatalf("expected AdviceNotReceived, got %v", err)
	}
	open, _ := env.Store.SubmissionOpen(env.Ctx)
	if open {
		t.Fatalf("submission must be closed before G3 passes")
	}
	rep, _ := env.Store.AddRepresentation(env.Ctx, domain.ConsultationProposed)
	if _, err := env.Store.SetRepresentationStatus(env.Ctx, domain.ConsultationProposed, rep.ID, domain.RepresentationTriaged); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Store.PublishConsultationSummary(env.Ctx, domain.ConsultationProposed); err != nil {
		t.Fatal(err)
	}
	steps := []domain.GatewayStatus{domain.GatewayDrafting, domain.GatewaySubmitted, domain.GatewayAdviceReceived}
	for _, status := range steps {
		gw, err := env.Store.SetGatewayStatus(env.Ctx, g3, status)
		if err != nil || gw.Status != status {
			t.Fatalf("to %s: %+v %v", status, gw, err)
		}
	}
	gw, err := env.Store.PublishGatewayAdvice(env.Ctx, g3)
	if err != nil || !gw.AdvicePublishedAt.IsPublished() || gw.Status != domain.GatewayAdviceReceived {
		t.Fatalf("publish advice: %+v %v", gw, err)
	}
	if _, err := env.Store.MarkGatewayPassed(env.Ctx, g3); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Store.MarkGatewayNotPassed(env.Ctx, g3); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("terminal gateway must hold, got %v", err)
	}
	open, _ = env.Store.SubmissionOpen(env.Ctx)
	if !open {
		t.Fatalf("submission should open after G3 passes")
	}
}

func TestGatewayActions(t *testing.T) {
	env := newTestEnv(t)
	a, err := env.Store.AddGatewayAction(env.Ctx, domain.GatewayG2, "")
	if err != nil || a.Title != "New action" || a.Status != domain.ActionOpen {
		t.Fatalf("add action: %+v %v", a, err)
	}
	gw, err := env.Store.ToggleGatewayAction(env.Ctx, domain.GatewayG2, a.ID)
	if err != nil || gw.Actions[0].Status != domain.ActionDone {
		t.Fatalf("toggle: %+v %v", gw, err)
	}
	gw, err = env.Store.RenameGatewayAction(env.Ctx, domain.GatewayG2, a.ID, "Statement of common ground")
	if err != nil || gw.Actions[0].Title != "Statement of common ground" {
		t.Fatalf("rename: %+v %v", gw, err)
	}
}

func TestStateSurvivesReload(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Store.PublishTimetable(env.Ctx); err != nil {
		t.Fatal(err)
	}
	rep, _ := env.Store.AddRepresentation(env.Ctx, domain.ConsultationContent)
	if _, err := env.Store.AddGatewayAction(env.Ctx, domain.GatewayG1, "Agree scope"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Store.CreateSnapshot(env.Ctx); err != nil {
		t.Fatal(err)
	}
	before, _ := env.Store.State(env.Ctx)

	fresh := store.New(env.Persist, env.Store.Config)
	fresh.Now = env.Store.Now
	after, err := fresh.State(env.Ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !after.TimetablePublishedAt.IsPublished() {
		t.Fatalf("timetable stamp lost on reload")
	}
	c := after.Consultations[domain.ConsultationContent]
	if c.Representation(rep.ID) < 0 {
		t.Fatalf("representation lost on reload")
	}
	if len(after.Gateways[domain.GatewayG1].Actions) != 1 || len(after.Snapshots) != 1 {
		t.Fatalf("records lost on reload: %+v", after)
	}
	if len(after.Milestones) != len(before.Milestones) || len(after.Evidence) != len(before.Evidence) {
		t.Fatalf("collections differ after reload")
	}
}

type failingPersister struct {
	store.Persister
	fail bool
}

func (f *failingPersister) Save(ctx context.Context, st domain.PlanState, ev events.Entry) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Persister.Save(ctx, st, ev)
}

func TestFailedSaveLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	fp := &failingPersister{Persister: env.Persist}
	s := store.New(fp, env.Store.Config)
	s.Now = env.Store.Now
	reg := prometheus.NewRegistry()
	s.Metrics = store.NewMetrics(reg)

	before, err := s.State(env.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	fp.fail = true
	if _, err := s.AddRepresentation(env.Ctx, domain.ConsultationContent); err == nil {
		t.Fatalf("expected save error")
	}
	after, _ := s.State(env.Ctx)
	if got := len(after.Consultations[domain.ConsultationContent].Representations); got != len(before.Consultations[domain.ConsultationContent].Representations) {
		t.Fatalf("failed save leaked a representation: %d", got)
	}
	fp.fail = false
	if _, err := s.AddRepresentation(env.Ctx, domain.ConsultationContent); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitGateway(env.Ctx, domain.GatewayG2); err == nil {
		t.Fatalf("expected NotReady")
	}
	if n := testutil.ToFloat64(s.Metrics.Mutations().WithLabelValues("representation.add", "failed")); n != 1 {
		t.Fatalf("failed counter = %v", n)
	}
	if n := testutil.ToFloat64(s.Metrics.Rejections().WithLabelValues("not_ready")); n != 1 {
		t.Fatalf("rejection counter = %v", n)
	}
}

func TestSwitchPlanKeepsStatesApart(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.Store.PublishTimetable(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Store.SwitchPlan(env.Ctx, "nope"); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	p, err := env.Store.SwitchPlan(env.Ctx, "p2")
	if err != nil || p.Name != "Town Centre SPD" {
		t.Fatalf("switch: %+v %v", p, err)
	}
	st, _ := env.Store.State(env.Ctx)
	if st.PlanID != "p2" || st.TimetablePublishedAt.IsPublished() {
		t.Fatalf("p2 must have its own state: %+v", st)
	}
	active, _ := env.Persist.ActivePlan(env.Ctx)
	if active != "p2" {
		t.Fatalf("active plan not persisted: %q", active)
	}
	if len(env.Store.ListPlans()) != 2 {
		t.Fatalf("expected 2 plans")
	}
}

func TestEditRepresentationRejectsAsOne(t *testing.T) {
	env := newTestEnv(t)
	ct := domain.ConsultationContent
	rep, err := env.Store.AddRepresentation(env.Ctx, ct)
	if err != nil {
		t.Fatal(err)
	}
	summarized := domain.RepresentationSummarized
	if _, err := env.Store.EditRepresentation(env.Ctx, ct, rep.ID, "", "EDITED", &summarized); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	c, _ := env.Store.GetConsultation(env.Ctx, ct)
	got := c.Representations[c.Representation(rep.ID)]
	if got.Summary != rep.Summary || got.Status != domain.RepresentationUnread {
		t.Fatalf("rejected edit leaked: %+v", got)
	}

	triaged := domain.RepresentationTriaged
	got, err = env.Store.EditRepresentation(env.Ctx, ct, rep.ID, "Parish council", "EDITED", &triaged)
	if err != nil {
		t.Fatal(err)
	}
	if got.Respondent != "Parish council" || got.Summary != "EDITED" || got.Status != triaged {
		t.Fatalf("combined edit not applied: %+v", got)
	}
	if _, err := env.Store.EditRepresentation(env.Ctx, ct, "rep-missing", "", "", nil); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
