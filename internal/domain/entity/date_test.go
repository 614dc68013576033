package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())

	for _, bad := range []string{"", "2024-2-1", "2023-02-29", "01/02/2024", "2024-01-01T00:00:00Z"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestDate_DaysSinceUsesCalendarDays(t *testing.T) {
	assert.Equal(t, 1, MustParseDate("2024-01-01").DaysSince(MustParseDate("2023-12-31")))
	assert.Equal(t, 366, MustParseDate("2025-01-01").DaysSince(MustParseDate("2024-01-01")))
	assert.Equal(t, -3, MustParseDate("2024-03-01").DaysSince(MustParseDate("2024-03-04")))

	// late evening and early morning are still one calendar day apart
	loc := time.FixedZone("UTC+10", 10*3600)
	late := DateOf(time.Date(2024, 6, 1, 23, 59, 0, 0, loc))
	early := DateOf(time.Date(2024, 6, 2, 0, 1, 0, 0, loc))
	assert.Equal(t, 1, early.DaysSince(late))
}

func TestDate_DaysSinceAcrossCenturies(t *testing.T) {
	first := MustParseDate("0001-01-01")
	recent := MustParseDate("2024-01-01")

	assert.Equal(t, 738885, recent.DaysSince(first))
	assert.Equal(t, -738885, first.DaysSince(recent))
	assert.Equal(t, 3, MustParseDate("2024-03-04").DaysSince(MustParseDate("2024-03-01")))
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		Day  Date   `json:"day"`
		Last *Date  `json:"last"`
		All  []Date `json:"all"`
	}

	in := wrapper{Day: MustParseDate("2024-01-02"), All: []Date{MustParseDate("2024-01-02")}}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2024-01-02","last":null,"all":["2024-01-02"]}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.True(t, out.Day.Equal(in.Day))
	assert.Nil(t, out.Last)

	assert.Error(t, json.Unmarshal([]byte(`{"day":"nope"}`), &out))
}

func TestSortDescending(t *testing.T) {
	ds := []Date{MustParseDate("2024-01-01"), MustParseDate("2024-03-01"), MustParseDate("2024-02-01")}
	SortDescending(ds)
	assert.Equal(t, []string{"2024-03-01", "2024-02-01", "2024-01-01"}, DateStrings(ds))

	parsed, err := ParseDates(DateStrings(ds))
	require.NoError(t, err)
	assert.Equal(t, ds, parsed)
}

func TestActivity_Merge(t *testing.T) {
	a := Activity{Water: 3}
	water := int32(-2)
	exercise := true

	merged := a.Merge(ActivityPatch{Water: &water, Exercise: &exercise})
	assert.Equal(t, int32(0), merged.Water)
	assert.True(t, merged.Exercise)
	assert.Equal(t, int32(3), a.Water, "merge must not mutate the receiver")

	assert.True(t, ActivityPatch{}.IsEmpty())
	assert.Equal(t, merged, merged.Merge(ActivityPatch{}))
}

func TestNewUser(t *testing.T) {
	u := NewUser([16]byte{1}, "jamie@example.com", time.Now())
	assert.Equal(t, "jamie", u.Name)
	assert.Empty(t, u.Friends)
	assert.False(t, u.HasFriend([16]byte{2}))
}
