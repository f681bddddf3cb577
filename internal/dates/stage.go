package dates

// Progress classifies a stage relative to the active one.
type Progress string

const (
	ProgressDone     Progress = "done"
	ProgressActive   Progress = "active"
	ProgressUpcoming Progress = "upcoming"
)

// StageStatus classifies the stage at index against the active stage index.
func StageStatus(index, activeIndex int) Progress {
	switch {
	case index < activeIndex:
		return ProgressDone
	case index == activeIndex:
		return ProgressActive
	default:
		return ProgressUpcoming
	}
}
