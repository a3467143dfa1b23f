package postgresql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLTimeZone(t *testing.T) {
	jakarta, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{"nil", nil, "UTC"},
		{"utc", time.UTC, "UTC"},
		{"iana name", jakarta, "Asia/Jakarta"},
		{"fixed east", time.FixedZone("WIB", 7*60*60), "UTC-07:00"},
		{"fixed half hour", time.FixedZone("", 5*60*60+30*60), "UTC-05:30"},
		{"fixed west", time.FixedZone("BRT", -3*60*60), "UTC+03:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqlTimeZone(tt.loc, now))
		})
	}
}

func TestSQLTimeZone_ProcessLocalUsesItsOffset(t *testing.T) {
	now := time.Date(2024, 1, 15, 18, 30, 0, 0, time.UTC)
	_, offset := now.In(time.Local).Zone()

	got := sqlTimeZone(time.Local, now)

	assert.NotEqual(t, "Local", got)
	assert.Equal(t, sqlTimeZone(time.FixedZone("", offset), now), got)
}
