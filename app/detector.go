package app

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"dataview/domain/core"
	"dataview/domain/explorer"
	"dataview/domain/table"
)

// DetectorState is the change-detection state of a session.
type DetectorState int32

const (
	StateFresh DetectorState = iota
	StateChecking
	StateClosed
)

func (s DetectorState) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateChecking:
		return "checking"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// State returns the current change-detection state.
func (s *Session) State() DetectorState {
	return DetectorState(s.state.Load())
}

// Change classifies what a change-detection pass found.
type Change string

const (
	ChangeNone   Change = ""
	ChangeData   Change = Change(explorer.EventDataUpdate)
	ChangeSchema Change = Change(explorer.EventSchemaUpdate)
	ChangeClosed Change = Change(explorer.EventClosed)
)

// CheckForChanges compares a fresh snapshot of the source with the cached one.
// A schema difference replaces the schema and re-validates filters; a value
// difference keeps the schema and rebuilds the view; a vanished source closes
// the session. Each outcome except no change pushes the matching event.
func (s *Session) CheckForChanges(ctx context.Context) (Change, error) {
	var (
		change   Change
		checkErr error
	)
	err := s.do(ctx, func() {
		change, checkErr = s.detect(ctx)
	})
	if err != nil {
		return ChangeNone, err
	}
	return change, checkErr
}

func (s *Session) detect(ctx context.Context) (Change, error) {
	s.state.Store(int32(StateChecking))

	frame, err := s.source.Snapshot(ctx)
	if errors.Is(err, core.ErrSourceGone) {
		s.publish(explorer.EventClosed)
		s.shutdown()
		return ChangeClosed, nil
	}
	s.state.Store(int32(StateFresh))
	if err != nil {
		s.logger.Warn("snapshot failed", zap.Error(err))
		return ChangeNone, err
	}

	schema := table.Inspect(frame)
	switch {
	case !schema.Equal(s.schema):
		s.schema = schema
		s.cache.SetFrame(frame)
		v := s.cache.Get()
		s.logger.Debug("schema changed", zap.Int("columns", len(schema)), zap.Bool("filter_errors", v.HadErrors))
		s.publish(explorer.EventSchemaUpdate)
		return ChangeSchema, nil
	case !frame.SameData(s.cache.Frame()):
		s.cache.SetFrame(frame)
		v := s.cache.Get()
		s.logger.Debug("data changed", zap.Int("rows", frame.NumRows()), zap.Int("selected", v.NumRows()))
		s.publish(explorer.EventDataUpdate)
		return ChangeData, nil
	}
	return ChangeNone, nil
}
