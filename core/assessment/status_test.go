package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusDraft, StatusActive, true},
		{StatusDraft, StatusCompleted, true},
		{StatusDraft, StatusDraft, false},
		{StatusActive, StatusDraft, true},
		{StatusActive, StatusCompleted, true},
		{StatusActive, StatusActive, false},
		{StatusCompleted, StatusDraft, false},
		{StatusCompleted, StatusActive, false},
		{StatusCompleted, StatusCompleted, false},
		{Status("bogus"), StatusActive, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestStatus_sources(t *testing.T) {
	assert.Equal(t, []Status{StatusDraft, StatusActive}, StatusCompleted.sources())
	assert.Equal(t, []Status{StatusDraft}, StatusActive.sources())
	assert.Equal(t, []Status{StatusActive}, StatusDraft.sources())
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("active")
	assert.NoError(t, err)
	assert.Equal(t, StatusActive, st)

	_, err = ParseStatus("live")
	assert.Error(t, err)
}
