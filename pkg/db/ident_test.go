package db

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockNeverGoesBackwards(t *testing.T) {
	t.Parallel()

	fixed := time.UnixMilli(1_700_000_000_000)
	ticks := []time.Time{fixed, fixed, fixed.Add(-time.Second), fixed.Add(time.Millisecond * 10)}
	i := 0
	c := NewClock(func() time.Time {
		tt := ticks[i]
		i++
		return tt
	})

	got := make([]int64, 0, len(ticks))
	for range ticks {
		got = append(got, c.Now())
	}

	assert.Equal(t, []int64{
		1_700_000_000_000,
		1_700_000_000_001,
		1_700_000_000_002,
		1_700_000_000_010,
	}, got)
}

func TestNewID(t *testing.T) {
	t.Parallel()

	a, b := newID(), newID()
	assert.NotEqual(t, a, b)

	u, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), u.Version())
}
