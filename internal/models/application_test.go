package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationTransitions(t *testing.T) {
	all := []ApplicationStatus{
		ApplicationStatusPending,
		ApplicationStatusReviewed,
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
	}
	legal := map[[2]ApplicationStatus]bool{
		{ApplicationStatusPending, ApplicationStatusReviewed}:  true,
		{ApplicationStatusPending, ApplicationStatusAccepted}:  true,
		{ApplicationStatusPending, ApplicationStatusRejected}:  true,
		{ApplicationStatusReviewed, ApplicationStatusAccepted}: true,
		{ApplicationStatusReviewed, ApplicationStatusRejected}: true,
	}

	for _, from := range all {
		for _, to := range all {
			assert.Equal(t, legal[[2]ApplicationStatus{from, to}], from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, ApplicationStatusAccepted.Terminal())
	assert.True(t, ApplicationStatusRejected.Terminal())
	assert.False(t, ApplicationStatusPending.Terminal())
	assert.False(t, ApplicationStatusReviewed.Terminal())
}

func TestParseApplicationStatus(t *testing.T) {
	status, ok := ParseApplicationStatus("Reviewed")
	assert.True(t, ok)
	assert.Equal(t, ApplicationStatusReviewed, status)

	for _, raw := range []string{"", "reviewed", "ACCEPTED", "Done"} {
		_, ok := ParseApplicationStatus(raw)
		assert.False(t, ok, raw)
	}
}

func TestJobPatchEmpty(t *testing.T) {
	assert.True(t, JobPatch{}.Empty())
	title := "Engineer"
	assert.False(t, JobPatch{Title: &title}.Empty())
	assert.True(t, JobTypeContract.Valid())
	assert.False(t, JobType("Gig").Valid())
}
