package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMonths(t *testing.T) {
	cases := []struct {
		in     string
		months int
		want   string
	}{
		{"2026-01-15", 4, "2026-05-15"},
		{"2026-10-18", 4, "2027-02-18"},
		{"2026-01-31", 1, "2026-03-03"},
		{"2028-01-31", 1, "2028-03-02"},
		{"2026-03-01", 0, "2026-03-01"},
		{"2026-03-31", -1, "2026-03-03"},
	}
	for _, tc := range cases {
		got := AddMonths(MustParseDate(tc.in), tc.months)
		assert.Equal(t, tc.want, got.String(), "%s %+d months", tc.in, tc.months)
	}
	assert.True(t, AddMonths(Date{}, 4).IsZero())
}

func TestMaxDate(t *testing.T) {
	a := MustParseDate("2026-05-01")
	b := MustParseDate("2026-06-01")
	assert.Equal(t, b, MaxDate(a, b))
	assert.Equal(t, b, MaxDate(b, a))
	assert.Equal(t, a, MaxDate(a, Date{}))
	assert.Equal(t, b, MaxDate(Date{}, b))
	assert.True(t, MaxDate(Date{}, Date{}).IsZero())
}

func TestParseDateRejectsGarbage(t *testing.T) {
	_, err := ParseDate("2026-13-01")
	require.Error(t, err)
	_, err = ParseDate("18/10/2026")
	require.Error(t, err)
}

func TestTodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	now := time.Date(2026, 10, 18, 23, 30, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "2026-10-19", Today(now).String())
}

func TestDateJSON(t *testing.T) {
	type wrap struct {
		D Date `json:"d"`
	}
	b, err := json.Marshal(wrap{D: MustParseDate("2026-02-03")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2026-02-03"}`, string(b))

	var w wrap
	require.NoError(t, json.Unmarshal([]byte(`{"d":null}`), &w))
	assert.True(t, w.D.IsZero())
	require.Error(t, json.Unmarshal([]byte(`{"d":"nope"}`), &w))
}

func TestStamp(t *testing.T) {
	s := NotPublished()
	_, ok := s.At()
	assert.False(t, ok)
	assert.True(t, s.Day().IsZero())

	at := time.Date(2026, 10, 18, 9, 15, 0, 0, time.UTC)
	s = Published(at)
	got, ok := s.At()
	require.True(t, ok)
	assert.Equal(t, at, got)
	assert.Equal(t, "2026-10-18", s.Day().String())

	b, err := json.Marshal(s)
	require.NoError(t, err)
	var back Stamp
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, s, back)

	b, err = json.Marshal(NotPublished())
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestStageStatus(t *testing.T) {
	assert.Equal(t, ProgressDone, StageStatus(0, 2))
	assert.Equal(t, ProgressActive, StageStatus(2, 2))
	assert.Equal(t, ProgressUpcoming, StageStatus(3, 2))
}
