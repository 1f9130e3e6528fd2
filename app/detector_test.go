package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dataview/domain/core"
	"dataview/domain/explorer"
	"dataview/domain/table"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Name() string { return "mock" }

func (m *mockSource) Snapshot(ctx context.Context) (*table.Frame, error) {
	args := m.Called(ctx)
	frame, _ := args.Get(0).(*table.Frame)
	return frame, args.Error(1)
}

func delays(xs ...float64) *table.Frame {
	return table.NewFrame("mock", table.NewColumn("delay", table.Double, table.Numbers(xs...)...))
}

func TestOpenFailsWhenSnapshotFails(t *testing.T) {
	src := &mockSource{}
	src.On("Snapshot", mock.Anything).Return(nil, errors.New("connection refused")).Once()

	_, err := NewSession(context.Background(), core.NewSessionID(), src, &recorder{}, DefaultSessionConfig(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	src.AssertExpectations(t)
}

func TestTransientSnapshotFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	src := &mockSource{}
	src.On("Snapshot", mock.Anything).Return(delays(5, 12), nil).Once()
	src.On("Snapshot", mock.Anything).Return(nil, errors.New("timeout")).Once()
	src.On("Snapshot", mock.Anything).Return(delays(5, 13), nil).Once()
	src.On("Snapshot", mock.Anything).Return(nil, core.ErrSourceGone).Once()

	rec := &recorder{}
	s, err := NewSession(ctx, core.NewSessionID(), src, rec, DefaultSessionConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	change, err := s.CheckForChanges(ctx)
	assert.Error(t, err)
	assert.Equal(t, ChangeNone, change)
	assert.Equal(t, StateFresh, s.State())

	change, err = s.CheckForChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, ChangeData, change)

	change, err = s.CheckForChanges(ctx)
	require.NoError(t, err)
	assert.Equal(t, ChangeClosed, change)
	assert.Equal(t, []explorer.EventKind{explorer.EventDataUpdate, explorer.EventClosed}, rec.kinds())
	src.AssertExpectations(t)
}
