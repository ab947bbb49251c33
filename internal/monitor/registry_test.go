package monitor_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/proctor/internal/engine"
	"github.com/JaimeStill/proctor/internal/monitor"
)

func TestRegistryStart(t *testing.T) {
	sys := newRegistry(t, &fakeClock{now: epoch}, &memorySink{}, 0)
	ctx := context.Background()

	s, err := sys.Start(ctx, monitor.StartCommand{CandidateName: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, engine.Active, s.State)
	assert.Equal(t, 100, s.Score)
	assert.Equal(t, "Alice", s.Session.CandidateName)
	assert.Equal(t, epoch, s.Session.StartTime)

	_, err = sys.Start(ctx, monitor.StartCommand{CandidateName: "   "})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)
}

func TestRegistryTick(t *testing.T) {
	clock := &fakeClock{now: epoch}
	sys := newRegistry(t, clock, &memorySink{}, 0)
	ctx := context.Background()

	s, err := sys.Start(ctx, monitor.StartCommand{CandidateName: "Bob"})
	require.NoError(t, err)
	id := s.Session.ID

	clock.Advance(time.Second)
	result, err := sys.Tick(ctx, id, engine.Tick{FaceCount: 0})
	require.NoError(t, err)
	require.Len(t, result.Events, 1)
	assert.Equal(t, engine.CandidateAbsent, result.Events[0].Kind)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, engine.Active, result.State)

	clock.Advance(time.Second)
	result, err = sys.Tick(ctx, id, engine.Tick{FaceCount: 0})
	require.NoError(t, err)
	assert.NotNil(t, result.Events, "suppressed ticks report an empty list")
	assert.Empty(t, result.Events)
	assert.Equal(t, 85, result.Score)

	_, err = sys.Tick(ctx, id, engine.Tick{FaceCount: -1})
	assert.ErrorIs(t, err, engine.ErrInvalidInput)

	events, err := sys.Events(id)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = sys.Tick(ctx, uuid.New(), engine.Tick{FaceCount: 1})
	assert.ErrorIs(t, err, monitor.ErrNotFound)
}

func TestRegistryEnd(t *testing.T) {
	clock := &fakeClock{now: epoch}
	sys := newRegistry(t, clock, &memorySink{}, 0)
	ctx := context.Background()

	s, err := sys.Start(ctx, monitor.StartCommand{CandidateName: "Alice"})
	require.NoError(t, err)
	id := s.Session.ID

	clock.Advance(time.Second)
	_, err = sys.Tick(ctx, id, engine.Tick{FaceCount: 1, Focus: engine.Lost})
	require.NoError(t, err)

	clock.Advance(time.Minute)
	ended, err := sys.End(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.Ended, ended.State)
	assert.Equal(t, 90, ended.Session.IntegrityScore)
	require.NotNil(t, ended.Session.EndTime)
	assert.Equal(t, epoch.Add(61*time.Second), *ended.Session.EndTime)

	_, err = sys.End(ctx, id)
	assert.ErrorIs(t, err, engine.ErrInvalidState)

	result, err := sys.Tick(ctx, id, engine.Tick{FaceCount: 0})
	require.NoError(t, err)
	assert.Empty(t, result.Events)
	assert.Equal(t, engine.Ended, result.State)
	assert.Equal(t, 90, result.Score)

	_, err = sys.End(ctx, uuid.New())
	assert.ErrorIs(t, err, monitor.ErrNotFound)
}

func TestRegistryEvictsEndedMonitors(t *testing.T) {
	sys := newRegistry(t, &fakeClock{now: epoch}, &memorySink{}, 20*time.Millisecond)
	ctx := context.Background()

	s, err := sys.Start(ctx, monitor.StartCommand{CandidateName: "Alice"})
	require.NoError(t, err)
	_, err = sys.End(ctx, s.Session.ID)
	require.NoError(t, err)

	_, err = sys.Status(s.Session.ID)
	require.NoError(t, err, "ended monitors stay queryable during retention")

	assert.Eventually(t, func() bool {
		_, err := sys.Status(s.Session.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestRegistryShutdown(t *testing.T) {
	sink := &memorySink{}
	sys := monitor.New(sink, monitor.Config{Clock: &fakeClock{now: epoch}}, discard())
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"Alice", "Bob"} {
		s, err := sys.Start(ctx, monitor.StartCommand{CandidateName: name})
		require.NoError(t, err)
		ids = append(ids, s.Session.ID)
	}
	_, err := sys.Tick(ctx, ids[0], engine.Tick{FaceCount: 3})
	require.NoError(t, err)
	_, err = sys.End(ctx, ids[1])
	require.NoError(t, err)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sys.Shutdown(shutdownCtx))

	ended := sink.endedSessions()
	require.Len(t, ended, 2, "shutdown ends the remaining active session")
	assert.Equal(t, ids[1], ended[0].ID)
	assert.Equal(t, ids[0], ended[1].ID)
	assert.Equal(t, 85, ended[1].IntegrityScore)

	stats := sys.Stats()
	assert.Equal(t, int64(5), stats.Delivered)
	assert.Zero(t, stats.Failed)
	assert.Zero(t, stats.Dropped)

	_, err = sys.Start(ctx, monitor.StartCommand{CandidateName: "Carol"})
	assert.ErrorIs(t, err, monitor.ErrShuttingDown)
}
