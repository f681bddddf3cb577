package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"planline/internal/dates"
	"planline/internal/domain"
)

// Record kinds in the flat records table.
const (
	KindMilestone    = "milestone"
	KindConsultation = "consultation"
	KindGateway      = "gateway"
	KindEvidence     = "evidence"
	KindSignal       = "signal"
	KindSite         = "site"
	KindSiteTask     = "site_task"
	KindOption       = "option"
	KindSnapshot     = "snapshot"
)

// stateHeader is the per-plan scalar state kept in plan_state.
type stateHeader struct {
	TimetablePublishedAt      dates.Stamp     `json:"timetable_published_at"`
	NoticePublishedAt         dates.Stamp     `json:"notice_published_at"`
	ScopingEnd                dates.Date      `json:"scoping_end"`
	VisionOutcomesPublishedAt dates.Stamp     `json:"vision_outcomes_published_at"`
	ReadingID                 string          `json:"reading_id"`
	ReadingChangedAt          dates.Stamp     `json:"reading_changed_at"`
	ActiveStage               domain.StageKey `json:"active_stage"`
}

type record struct {
	kind string
	id   string
	body any
}

func recordsOf(st domain.PlanState) []record {
	var out []record
	for _, m := range st.Milestones {
		out = append(out, record{KindMilestone, m.ID, m})
	}
	for _, ct := range domain.ConsultationTypes {
		if c, ok := st.Consultations[ct]; ok {
			out = append(out, record{KindConsultation, string(ct), c})
		}
	}
	for _, gt := range domain.GatewayTypes {
		if g, ok := st.Gateways[gt]; ok {
			out = append(out, record{KindGateway, string(gt), g})
		}
	}
	for _, e := range st.Evidence {
		out = append(out, record{KindEvidence, e.ID, e})
	}
	for _, s := range st.Signals {
		out = append(out, record{KindSignal, s.ID, s})
	}
	for _, s := range st.Sites {
		out = append(out, record{KindSite, s.ID, s})
	}
	for _, t := range st.SiteTasks {
		out = append(out, record{KindSiteTask, t.ID, t})
	}
	for _, o := range st.Options {
		out = append(out, record{KindOption, o.ID, o})
	}
	for _, s := range st.Snapshots {
		out = append(out, record{KindSnapshot, s.ID, s})
	}
	return out
}

// SavePlanStateTx replaces every stored record of the plan with st.
func (r Repo) SavePlanStateTx(ctx context.Context, tx *sql.Tx, st domain.PlanState) error {
	header, err := json.Marshal(stateHeader{
		TimetablePublishedAt:      st.TimetablePublishedAt,
		NoticePublishedAt:         st.NoticePublishedAt,
		ScopingEnd:                st.ScopingEnd,
		VisionOutcomesPublishedAt: st.VisionOutcomesPublishedAt,
		ReadingID:                 st.ReadingID,
		ReadingChangedAt:          st.ReadingChangedAt,
		ActiveStage:               st.ActiveStage,
	})
	if err != nil {
		return fmt.Errorf("marshal plan state: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `INSERT INTO plan_state(plan_id,body_json,updated_at) VALUES (?,?,?)
ON CONFLICT(plan_id) DO UPDATE SET body_json=excluded.body_json, updated_at=excluded.updated_at`, st.PlanID, string(header), now); err != nil {
		return fmt.Errorf("upsert plan state: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE plan_id=?`, st.PlanID); err != nil {
		return fmt.Errorf("clear records: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records(plan_id,kind,id,position,body_json) VALUES (?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, rec := range recordsOf(st) {
		body, err := json.Marshal(rec.body)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", rec.kind, rec.id, err)
		}
		if _, err := stmt.ExecContext(ctx, st.PlanID, rec.kind, rec.id, i, string(body)); err != nil {
			return fmt.Errorf("insert %s %s: %w", rec.kind, rec.id, err)
		}
	}
	return nil
}

// LoadPlanState assembles a plan's state. It returns ErrNotFound when the
// plan has never been saved.
func (r Repo) LoadPlanState(ctx context.Context, planID string) (domain.PlanState, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx, `SELECT body_json FROM plan_state WHERE plan_id=?`, planID).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.PlanState{}, ErrNotFound
	}
	if err != nil {
		return domain.PlanState{}, err
	}
	var h stateHeader
	if err := json.Unmarshal([]byte(raw), &h); err != nil {
		return domain.PlanState{}, fmt.Errorf("decode plan state %s: %w", planID, err)
	}
	st := domain.PlanState{
		PlanID:                    planID,
		TimetablePublishedAt:      h.TimetablePublishedAt,
		NoticePublishedAt:         h.NoticePublishedAt,
		ScopingEnd:                h.ScopingEnd,
		VisionOutcomesPublishedAt: h.VisionOutcomesPublishedAt,
		ReadingID:                 h.ReadingID,
		ReadingChangedAt:          h.ReadingChangedAt,
		ActiveStage:               h.ActiveStage,
		Consultations:             map[domain.ConsultationType]domain.Consultation{},
		Gateways:                  map[domain.GatewayType]domain.Gateway{},
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT kind,id,body_json FROM records WHERE plan_id=? ORDER BY position`, planID)
	if err != nil {
		return domain.PlanState{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind, id, body string
		if err := rows.Scan(&kind, &id, &body); err != nil {
			return domain.PlanState{}, err
		}
		if err := decodeRecord(&st, kind, []byte(body)); err != nil {
			return domain.PlanState{}, fmt.Errorf("decode %s %s: %w", kind, id, err)
		}
	}
	if err := rows.Err(); err != nil {
		return domain.PlanState{}, err
	}
	st.EnsureComplete()
	return st, nil
}

func decodeRecord(st *domain.PlanState, kind string, body []byte) error {
	switch kind {
	case KindMilestone:
		var v domain.Milestone
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Milestones = append(st.Milestones, v)
	case KindConsultation:
		var v domain.Consultation
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Consultations[v.Type] = v
	case KindGateway:
		var v domain.Gateway
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Gateways[v.ID] = v
	case KindEvidence:
		var v domain.EvidenceItem
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Evidence = append(st.Evidence, v)
	case KindSignal:
		var v domain.MonitoringSignal
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Signals = append(st.Signals, v)
	case KindSite:
		var v domain.Site
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Sites = append(st.Sites, v)
	case KindSiteTask:
		var v domain.SiteTask
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.SiteTasks = append(st.SiteTasks, v)
	case KindOption:
		var v domain.Option
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Options = append(st.Options, v)
	case KindSnapshot:
		var v domain.Snapshot
		if err := json.Unmarshal(body, &v); err != nil {
			return err
		}
		st.Snapshots = append(st.Snapshots, v)
	default:
		return fmt.Errorf("unknown record kind %q", kind)
	}
	return nil
}
