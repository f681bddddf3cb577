package store_test

import (
	"errors"
	"math"
	"testing"

	"planline/internal/domain"
	"planline/internal/lifecycle"
	"planline/internal/store"
)

func TestSitesPipeline(t *testing.T) {
	env := newTestEnv(t)

	seeded, err := env.Store.ListSites(env.Ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(seeded) != 3 || seeded[0].Ref != "LAA001" || seeded[0].Stage != domain.SiteAllocate {
		t.Fatalf("unexpected seeded sites: %+v", seeded)
	}
	if seeded[0].Capacity == nil || *seeded[0].Capacity != 80 {
		t.Fatalf("seeded capacity lost: %+v", seeded[0])
	}

	site, err := env.Store.AddSite(env.Ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if site.Ref != "LAA004" || site.Name != lifecycle.DefaultSiteName || site.Stage != domain.SiteIdentify {
		t.Fatalf("unexpected new site: %+v", site)
	}

	name := "Land east of Mill Lane"
	area := 3.4
	site, err = env.Store.UpdateSite(env.Ctx, site.ID, store.SitePatch{Name: &name, AreaHa: &area})
	if err != nil || site.Name != name || site.AreaHa != area {
		t.Fatalf("update: %+v %v", site, err)
	}
	negative := -1.0
	if _, err := env.Store.UpdateSite(env.Ctx, site.ID, store.SitePatch{AreaHa: &negative}); !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}

	for _, want := range []domain.SiteStage{domain.SiteAssess, domain.SiteAllocate} {
		site, err = env.Store.AdvanceSite(env.Ctx, site.ID)
		if err != nil {
			t.Fatalf("advance to %s: %v", want, err)
		}
		if site.Stage != want {
			t.Fatalf("stage = %s, want %s", site.Stage, want)
		}
	}
	if _, err := env.Store.AdvanceSite(env.Ctx, site.ID); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition past allocate, got %v", err)
	}
	if _, err := env.Store.AdvanceSite(env.Ctx, "site-missing"); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}

	capacity := 120
	if _, err := env.Store.UpdateSite(env.Ctx, site.ID, store.SitePatch{Capacity: &capacity}); err != nil {
		t.Fatal(err)
	}
	stats, err := env.Store.SiteStats(env.Ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 4 || stats.ByStage[domain.SiteAllocate] != 2 || stats.ByStage[domain.SiteIdentify] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.AllocatedCapacity != 200 || math.Abs(stats.AllocatedArea-5.9) > 1e-9 {
		t.Fatalf("allocated totals = %+v", stats)
	}

	allocated, _ := env.Store.ListSites(env.Ctx, domain.SiteAllocate)
	if len(allocated) != 2 {
		t.Fatalf("expected 2 allocated sites, got %d", len(allocated))
	}
	if _, err := env.Store.ListSites(env.Ctx, domain.SiteStage("adopt")); !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for unknown stage, got %v", err)
	}

	if err := env.Store.RemoveSite(env.Ctx, site.ID); err != nil {
		t.Fatal(err)
	}
	fresh := store.New(env.Persist, env.Store.Config)
	fresh.Now = env.Store.Now
	reloaded, err := fresh.ListSites(env.Ctx, "")
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(reloaded) != 3 {
		t.Fatalf("expected removal to persist, got %+v", reloaded)
	}
}

func TestRejectedAdvanceKeepsSite(t *testing.T) {
	env := newTestEnv(t)
	sites, _ := env.Store.ListSites(env.Ctx, domain.SiteAllocate)
	if len(sites) == 0 {
		t.Fatalf("expected a seeded allocated site")
	}
	before, _ := env.Store.State(env.Ctx)
	if _, err := env.Store.AdvanceSite(env.Ctx, sites[0].ID); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("expected InvalidTransition, got %v", err)
	}
	after, _ := env.Store.State(env.Ctx)
	if after.Sites[0].Stage != before.Sites[0].Stage {
		t.Fatalf("rejected advance changed the stage")
	}
}

func TestSiteTasks(t *testing.T) {
	env := newTestEnv(t)
	tasks, err := env.Store.ListSiteTasks(env.Ctx)
	if err != nil || len(tasks) != 3 {
		t.Fatalf("seeded tasks: %+v %v", tasks, err)
	}
	task, err := env.Store.AddSiteTask(env.Ctx, "", "")
	if err != nil || task.Title != "New task" || task.Owner != "Team" || task.Status != domain.TaskNotStarted {
		t.Fatalf("add task: %+v %v", task, err)
	}
	done := domain.TaskDone
	task, err = env.Store.UpdateSiteTask(env.Ctx, task.ID, store.SiteTaskPatch{Status: &done})
	if err != nil || task.Status != domain.TaskDone {
		t.Fatalf("update task: %+v %v", task, err)
	}
	back := domain.TaskInProgress
	if _, err := env.Store.UpdateSiteTask(env.Ctx, task.ID, store.SiteTaskPatch{Status: &back}); err != nil {
		t.Fatalf("tasks may move backwards: %v", err)
	}
	bad := domain.TaskStatus("blocked")
	if _, err := env.Store.UpdateSiteTask(env.Ctx, task.ID, store.SiteTaskPatch{Status: &bad}); !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if err := env.Store.RemoveSiteTask(env.Ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	if err := env.Store.RemoveSiteTask(env.Ctx, task.ID); !errors.Is(err, lifecycle.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}
