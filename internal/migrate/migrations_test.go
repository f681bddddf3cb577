package migrate

import (
	"context"
	"path/filepath"
	"testing"

	"planline/internal/db"
)

func TestApplyIsIdempotent(t *testing.T) {
	conn, err := db.Open(db.Config{File: filepath.Join(t.TempDir(), "m.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	ctx := context.Background()

	if v, err := Version(ctx, conn); err != nil || v != 0 {
		t.Fatalf("fresh version = %d, %v", v, err)
	}
	applied, err := Apply(ctx, conn)
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) == 0 || applied[0] != "0001_init.sql" {
		t.Fatalf("applied = %v", applied)
	}
	again, err := Apply(ctx, conn)
	if err != nil || len(again) != 0 {
		t.Fatalf("second apply = %v, %v", again, err)
	}
	latest, _ := Latest()
	if v, _ := Version(ctx, conn); v != latest {
		t.Fatalf("version %d, latest %d", v, latest)
	}
}
