package lifecycle

import (
	"time"

	"planline/internal/dates"
	"planline/internal/domain"
)

// PublishTimetable stamps the local development scheme timetable. Re-publishing
// overwrites the stamp.
func PublishTimetable(st domain.PlanState, now time.Time) domain.PlanState {
	st.TimetablePublishedAt = dates.Published(now)
	return st
}

// PublishNotice stamps the notice of plan commencement. The timetable must be
// published first.
func PublishNotice(st domain.PlanState, now time.Time) (domain.PlanState, error) {
	if !st.TimetablePublishedAt.IsPublished() {
		return st, newError(KindTimetableNotPublished, nil, "Publish timetable first")
	}
	st.NoticePublishedAt = dates.Published(now)
	return st, nil
}

// CloseScoping records the scoping consultation end date. A zero date
// reopens scoping.
func CloseScoping(st domain.PlanState, end dates.Date) domain.PlanState {
	st.ScopingEnd = end
	return st
}

func PublishVisionOutcomes(st domain.PlanState, now time.Time) domain.PlanState {
	st.VisionOutcomesPublishedAt = dates.Published(now)
	return st
}

// SetStage records the active stage of the plan.
func SetStage(st domain.PlanState, key domain.StageKey) (domain.PlanState, error) {
	if domain.StageIndex(key) < 0 {
		return st, InvalidInput("stage", string(key))
	}
	st.ActiveStage = key
	return st, nil
}

// StageEntry is one slot of the stage ribbon.
type StageEntry struct {
	domain.Stage
	Progress dates.Progress `json:"progress"`
}

// StageRibbon classifies every stage relative to the active one.
func StageRibbon(active domain.StageKey) []StageEntry {
	ai := domain.StageIndex(active)
	out := make([]StageEntry, 0, len(domain.Stages))
	for i, s := range domain.Stages {
		out = append(out, StageEntry{Stage: s, Progress: dates.StageStatus(i, ai)})
	}
	return out
}
