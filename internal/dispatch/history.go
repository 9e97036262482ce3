package dispatch

import "github.com/deixis/clawshell/internal/history"

// ListRuns returns up to limit past runs, most recent first.
func (s *Service) ListRuns(limit int) ([]*history.Record, error) {
	return s.store().List(limit)
}

// InspectRun returns the stored outcome of one run.
func (s *Service) InspectRun(runID string) (*history.Record, error) {
	return s.store().Load(runID)
}
