package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusRoundTrip(t *testing.T) {
	for _, status := range AllStatuses() {
		parsed, ok := ParseStatus(string(status))
		require.True(t, ok, "status %s should parse", status)
		assert.Equal(t, status, parsed)
		assert.NotEqual(t, "Unknown", StatusLabel(status))
	}

	_, ok := ParseStatus("teleported")
	assert.False(t, ok)
	assert.Equal(t, "Unknown", StatusLabel(OrderStatus("teleported")))
}

func TestParseStatusIsCaseInsensitive(t *testing.T) {
	parsed, ok := ParseStatus("  Delivered ")
	require.True(t, ok)
	assert.Equal(t, StatusDelivered, parsed)
}

func TestLegalEdges(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{StatusCreated, StatusConfirmed, true},
		{StatusCreated, StatusCancelled, true},
		{StatusCreated, StatusShipped, false},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusInTransit, true},
		{StatusShipped, StatusDelivered, true},
		{StatusInTransit, StatusDelivered, true},
		{StatusDelivered, StatusReceived, true},
		{StatusDelivered, StatusReturned, true},
		{StatusDelivered, StatusCancelled, true},
		{StatusDelivered, StatusConfirmed, false},
		{StatusReceived, StatusCancelled, false},
		{StatusCancelled, StatusCreated, false},
		{StatusReturned, StatusDelivered, false},
	}

	for _, tc := range cases {
		assert.Equalf(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminal(StatusReceived))
	assert.True(t, IsTerminal(StatusCancelled))
	assert.True(t, IsTerminal(StatusReturned))
	assert.False(t, IsTerminal(StatusCreated))
	assert.False(t, IsTerminal(StatusDelivered))
}
