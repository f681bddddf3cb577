package dates

import (
	"encoding/json"
	"time"
)

// Stamp records whether something has been published and, if so, when.
// It is either NotPublished or Published(t); callers branch on At.
type Stamp struct {
	at  time.Time
	set bool
}

// NotPublished is the empty stamp.
func NotPublished() Stamp { return Stamp{} }

// Published returns a stamp carrying t in UTC.
func Published(t time.Time) Stamp {
	return Stamp{at: t.UTC(), set: true}
}

// At returns the publication time and whether the stamp is set.
func (s Stamp) At() (time.Time, bool) { return s.at, s.set }

func (s Stamp) IsPublished() bool { return s.set }

// Day is the calendar day of the publication, or the zero Date.
func (s Stamp) Day() Date {
	if !s.set {
		return Date{}
	}
	return DateOf(s.at)
}

func (s Stamp) String() string {
	if !s.set {
		return ""
	}
	return s.at.Format(time.RFC3339)
}

func (s Stamp) MarshalJSON() ([]byte, error) {
	if !s.set {
		return []byte("null"), nil
	}
	return json.Marshal(s.at.Format(time.RFC3339))
}

func (s *Stamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Stamp{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*s = Stamp{}
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return err
	}
	*s = Published(t)
	return nil
}
