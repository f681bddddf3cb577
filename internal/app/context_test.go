package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"planline/internal/config"
)

func TestOpenSeedsDefaultWorkspace(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(context.Background(), Options{Workspace: dir, ActorID: "tester"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.Close()
	plans, err := a.Repo.ListPlans(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 2 {
		t.Fatalf("expected 2 synced plans, got %d", len(plans))
	}
	p, err := a.Store.ActivePlan(context.Background())
	if err != nil || p.ID != "p1" {
		t.Fatalf("active plan = %+v, %v", p, err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".planline", "planline.db")); err != nil {
		t.Fatalf("db file missing: %v", err)
	}
}

func TestLoadConfigPrefersWorkspaceFile(t *testing.T) {
	dir := t.TempDir()
	yml := "plans:\n  - id: only\n    name: Only Plan\n"
	if err := os.WriteFile(config.Path(dir), []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Plans) != 1 || cfg.Plans[0].ID != "only" {
		t.Fatalf("plans = %+v", cfg.Plans)
	}
}
