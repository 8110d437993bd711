package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStateTerminal(t *testing.T) {
	tests := []struct {
		state    JobState
		terminal bool
	}{
		{JobPending, false},
		{JobProcessing, false},
		{JobCompleted, true},
		{JobFailed, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.terminal, tt.state.Terminal(), string(tt.state))
	}
}

func TestSecurityReportLevel(t *testing.T) {
	assert.Equal(t, "high", (&SecurityReport{HighRisk: true}).Level())
	assert.Equal(t, "medium", (&SecurityReport{MediumRisk: true}).Level())
	assert.Equal(t, "low", (&SecurityReport{LowRisk: true}).Level())
	assert.Equal(t, "low", (&SecurityReport{}).Level())
}

func TestRepoRefFullName(t *testing.T) {
	ref := RepoRef{Owner: "acme", Repo: "widgets", Branch: "main"}
	assert.Equal(t, "acme/widgets", ref.FullName())
}
