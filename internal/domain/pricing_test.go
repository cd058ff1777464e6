package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotal(t *testing.T) {
	total, err := ComputeTotal(500, 3, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), total)

	total, err = ComputeTotal(500, 40, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), total)

	var ve ValidationError
	_, err = ComputeTotal(500, 0, 40)
	assert.ErrorAs(t, err, &ve)

	_, err = ComputeTotal(500, 41, 40)
	assert.ErrorAs(t, err, &ve)

	_, err = ComputeTotal(0, 1, 40)
	assert.ErrorAs(t, err, &ve)

	_, err = ComputeTotal(1<<62, 4, 40)
	require.ErrorAs(t, err, &ve, "product does not fit in int64")
	assert.Equal(t, "price", ve.Field)

	total, err = ComputeTotal(math.MaxInt64/4, 4, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64/4)*4, total)
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"1.0", 1, true},
		{"2.5", 0, false},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(json.Number(tt.in))
			if !tt.ok {
				var ve ValidationError
				assert.ErrorAs(t, err, &ve)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	expired, err := IsExpired("2099-01-01", "10:00 AM", now)
	require.NoError(t, err)
	assert.False(t, expired)

	expired, err = IsExpired("2020-01-01", "10:00 AM", now)
	require.NoError(t, err)
	assert.True(t, expired)

	expired, err = IsExpired("2026-10-16", "09:00 AM", now)
	require.NoError(t, err)
	assert.True(t, expired, "departure exactly now counts as expired")

	expired, err = IsExpired("2026-10-16", "09:01", now)
	require.NoError(t, err)
	assert.False(t, expired)

	expired, err = IsExpired("2026-10-16", "8:59 am", now)
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestIsExpired_UnparseableIsHardError(t *testing.T) {
	now := time.Now()

	var ve ValidationError
	_, err := IsExpired("2020-01-01", "", now)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "departureTime", ve.Field)

	_, err = IsExpired("2020-01-01", "25:99", now)
	assert.ErrorAs(t, err, &ve)

	_, err = IsExpired("tomorrow", "10:00 AM", now)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "departureDate", ve.Field)
}

func TestParseDeparture_Location(t *testing.T) {
	loc := time.FixedZone("BST", 6*60*60)

	dep, err := ParseDeparture("2030-03-01", "06:15 PM", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 3, 1, 12, 15, 0, 0, time.UTC), dep.UTC())
}

func TestRemainingUntil(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	dep := now.Add(49*time.Hour + 2*time.Minute + 3*time.Second)

	assert.Equal(t, Remaining{Days: 2, Hours: 1, Minutes: 2, Seconds: 3}, RemainingUntil(dep, now))
	assert.Equal(t, Remaining{Expired: true}, RemainingUntil(now, now))
	assert.Equal(t, Remaining{Expired: true}, RemainingUntil(now.Add(-time.Hour), now))
}
