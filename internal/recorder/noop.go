package recorder

import "CompSim/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSeason(_ *SeasonSnapshot) error { return nil }
func (n *NoopRecorder) RecentSeasons(_ int) ([]SeasonRun, error) { return nil, nil }
func (n *NoopRecorder) SeasonSummary(_ string) (model.Summary, error) { return model.NewSummary(), nil }
func (n *NoopRecorder) MemberHistory(_ string, _ int) ([]MemberRecord, error) { return nil, nil }
func (n *NoopRecorder) Close() error { return nil }
