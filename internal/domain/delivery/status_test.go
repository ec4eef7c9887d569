package delivery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_FullProgression(t *testing.T) {
	want := []Status{
		StatusConfirmed,
		StatusPickedUp,
		StatusInProcess,
		StatusReady,
		StatusOutForDelivery,
		StatusDelivered,
	}

	s := StatusConfirmed
	got := []Status{s}
	for {
		n, ok := s.Next()
		if !ok {
			break
		}
		got = append(got, n)
		s = n
	}
	assert.Equal(t, want, got)
}

func TestNext_DeliveredIsTerminal(t *testing.T) {
	_, ok := StatusDelivered.Next()
	assert.False(t, ok)
	assert.True(t, StatusDelivered.Terminal())
	assert.False(t, StatusReady.Terminal())
}

func TestNext_UnknownStatus(t *testing.T) {
	_, ok := Status("cancelled").Next()
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	s, err := Parse("out_for_delivery")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForDelivery, s)

	_, err = Parse("shipped")
	require.ErrorIs(t, err, ErrUnknownStatus)
}

func TestDashboardViews_CoverEveryStatus(t *testing.T) {
	covered := make(map[Status]int)
	for _, statuses := range DashboardViews {
		for _, s := range statuses {
			covered[s]++
		}
	}

	for _, s := range []Status{
		StatusConfirmed, StatusPickedUp, StatusInProcess,
		StatusReady, StatusOutForDelivery, StatusDelivered,
	} {
		assert.Equal(t, 1, covered[s], "status %s must belong to exactly one view", s)
	}
}
