package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibilityReadableBy(t *testing.T) {
	// The complete decision table: only private+anonymous denies.
	tests := []struct {
		visibility    Visibility
		authenticated bool
		allowed       bool
	}{
		{VisibilityPublic, true, true},
		{VisibilityPublic, false, true},
		{VisibilityUnlisted, true, true},
		{VisibilityUnlisted, false, true},
		{VisibilityPrivate, true, true},
		{VisibilityPrivate, false, false},
	}

	for _, tt := range tests {
		got := tt.visibility.ReadableBy(tt.authenticated)
		assert.Equal(t, tt.allowed, got,
			"visibility=%s authenticated=%v", tt.visibility, tt.authenticated)
	}
}

func TestParseVisibility(t *testing.T) {
	for _, valid := range []string{"public", "unlisted", "private"} {
		v, err := ParseVisibility(valid)
		require.NoError(t, err)
		assert.Equal(t, Visibility(valid), v)
	}

	v, err := ParseVisibility("")
	require.NoError(t, err)
	assert.Equal(t, DefaultVisibility, v)

	_, err = ParseVisibility("internal")
	assert.Error(t, err)

	// Case matters: values are stored lowercase.
	_, err = ParseVisibility("Public")
	assert.Error(t, err)
}
