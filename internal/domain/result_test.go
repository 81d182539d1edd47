package domain

import "testing"

func TestResultStatusClassification(t *testing.T) {
	tests := []struct {
		status    ResultStatus
		resolved  bool
		completed bool
	}{
		{ResultPending, false, false},
		{ResultProcessing, false, false},
		{ResultSubmitted, true, true},
		{ResultApproved, true, true},
		{ResultRejected, true, false},
		{ResultFailed, true, false},
		{ResultSkipped, true, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Resolved(); got != tt.resolved {
				t.Fatalf("Resolved = %v, want %v", got, tt.resolved)
			}
			if got := tt.status.Completed(); got != tt.completed {
				t.Fatalf("Completed = %v, want %v", got, tt.completed)
			}
		})
	}
}

func TestJobStatusTerminal(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{JobStatusPending, false},
		{JobStatusInProgress, false},
		{JobStatusComplete, true},
		{JobStatusFailed, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Fatalf("%s.Terminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}
