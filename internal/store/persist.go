package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"planline/internal/domain"
	"planline/internal/events"
	"planline/internal/repo"
)

// ErrNoState is returned by Persister.Load for a plan never saved.
var ErrNoState = errors.New("no stored state")

// Persister is the storage collaborator of the store. Save must apply the
// state and the audit event atomically.
type Persister interface {
	Load(ctx context.Context, planID string) (domain.PlanState, error)
	Save(ctx context.Context, st domain.PlanState, ev events.Entry) error
	ActivePlan(ctx context.Context) (string, error)
	SetActivePlan(ctx context.Context, planID string, ev events.Entry) error
}

const activePlanKey = "active_plan"

// SQLPersister stores plan state in the workspace sqlite database.
type SQLPersister struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
}

func NewSQLPersister(db *sql.DB, now func() time.Time) SQLPersister {
	return SQLPersister{DB: db, Repo: repo.Repo{DB: db}, Events: events.Writer{Now: now}}
}

func (p SQLPersister) Load(ctx context.Context, planID string) (domain.PlanState, error) {
	st, err := p.Repo.LoadPlanState(ctx, planID)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.PlanState{}, ErrNoState
	}
	return st, err
}

func (p SQLPersister) Save(ctx context.Context, st domain.PlanState, ev events.Entry) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := p.Repo.SavePlanStateTx(ctx, tx, st); err != nil {
		return err
	}
	if err := p.Events.Append(ctx, tx, ev); err != nil {
		return err
	}
	return tx.Commit()
}

func (p SQLPersister) ActivePlan(ctx context.Context) (string, error) {
	id, err := p.Repo.GetSetting(ctx, activePlanKey)
	if errors.Is(err, repo.ErrNotFound) {
		return "", nil
	}
	return id, err
}

func (p SQLPersister) SetActivePlan(ctx context.Context, planID string, ev events.Entry) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := p.Repo.SetSettingTx(ctx, tx, activePlanKey, planID); err != nil {
		return fmt.Errorf("set active plan: %w", err)
	}
	if err := p.Events.Append(ctx, tx, ev); err != nil {
		return err
	}
	return tx.Commit()
}

// SyncPlans records the configured plans so state rows can reference them.
func (p SQLPersister) SyncPlans(ctx context.Context, plans []domain.Plan) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	now := time.Now().UTC().Format(time.RFC3339)
	for _, pl := range plans {
		if err := p.Repo.UpsertPlanTx(ctx, tx, pl, now); err != nil {
			return fmt.Errorf("upsert plan %s: %w", pl.ID, err)
		}
	}
	return tx.Commit()
}
