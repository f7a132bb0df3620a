package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDurationMonths(t *testing.T) {
	require.Equal(t, 1, parseDurationMonths("1-Month"))
	require.Equal(t, 6, parseDurationMonths("6-Month"))
	require.Equal(t, 12, parseDurationMonths("12-Month"))

	// Unparsable labels default to one month.
	require.Equal(t, 1, parseDurationMonths("Lifetime"))
	require.Equal(t, 1, parseDurationMonths(""))
}

func TestExpiryFromDuration(t *testing.T) {
	start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	require.Equal(t, time.Date(2024, time.July, 15, 0, 0, 0, 0, time.UTC), ExpiryFromDuration(start, "6-Month"))
	require.Equal(t, time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC), ExpiryFromDuration(start, "12-Month"))
	require.Equal(t, time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC), ExpiryFromDuration(start, "Lifetime"))
}
