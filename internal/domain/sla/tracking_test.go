package sla

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRecord(t *testing.T, createdAt time.Time, responseHours, resolutionHours int) *TrackingRecord {
	config, err := NewConfiguration("test", nil, nil, responseHours, resolutionHours, 100, createdAt.Add(-time.Hour))
	require.NoError(t, err)

	r, err := NewTrackingRecord(uuid.New(), uuid.New(), createdAt, config)
	require.NoError(t, err)
	return r
}

func TestNewTrackingRecord(t *testing.T) {
	t.Run("snapshots targets from the configuration", func(t *testing.T) {
		r := createTestRecord(t, time.Now(), 24, 72)

		require.True(t, r.HasTargets())
		assert.Equal(t, 24, *r.ResponseTargetHours)
		assert.Equal(t, 72, *r.ResolutionTargetHours)
	})

	t.Run("later configuration edits do not move the snapshot", func(t *testing.T) {
		created := time.Now()
		config, err := NewConfiguration("test", nil, nil, 24, 72, 100, created.Add(-time.Hour))
		require.NoError(t, err)
		r, err := NewTrackingRecord(uuid.New(), uuid.New(), created, config)
		require.NoError(t, err)

		config.ResponseTargetHours = 1
		assert.Equal(t, 24, *r.ResponseTargetHours)
	})

	t.Run("created without targets when no configuration applies", func(t *testing.T) {
		r, err := NewTrackingRecord(uuid.New(), uuid.New(), time.Now(), nil)
		require.NoError(t, err)
		assert.False(t, r.HasTargets())

		// Breach computation stays deferred
		flags := ComputeBreach(time.Now().Add(1000*time.Hour), r)
		assert.False(t, flags.FirstResponse)
		assert.False(t, flags.Resolution)
	})

	t.Run("fails without a case ID", func(t *testing.T) {
		_, err := NewTrackingRecord(uuid.Nil, uuid.New(), time.Now(), nil)
		assert.Error(t, err)
	})
}

func TestRecordTimestamps(t *testing.T) {
	t.Run("first response is recorded once", func(t *testing.T) {
		r := createTestRecord(t, time.Now(), 24, 72)
		first := time.Now().Add(2 * time.Hour)

		r.RecordFirstResponse(first)
		r.RecordFirstResponse(first.Add(10 * time.Hour))

		require.NotNil(t, r.FirstResponseAt)
		assert.Equal(t, first, *r.FirstResponseAt)
	})

	t.Run("resolution is recorded once", func(t *testing.T) {
		r := createTestRecord(t, time.Now(), 24, 72)
		resolved := time.Now().Add(30 * time.Hour)

		r.RecordResolution(resolved)
		r.RecordResolution(resolved.Add(time.Hour))

		assert.Equal(t, resolved, *r.ResolvedAt)
		assert.True(t, r.IsResolved())
	})
}

func TestComputeBreach(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("response at 25h against a 24h target is a breach", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		r.RecordFirstResponse(created.Add(25 * time.Hour))

		flags := ComputeBreach(created.Add(26*time.Hour), r)
		assert.True(t, flags.FirstResponse)
	})

	t.Run("response at 20h against a 24h target is not a breach", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		r.RecordFirstResponse(created.Add(20 * time.Hour))

		flags := ComputeBreach(created.Add(100*time.Hour), r)
		assert.False(t, flags.FirstResponse)
	})

	t.Run("no response yet breaches only after the deadline passes", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)

		assert.False(t, ComputeBreach(created.Add(23*time.Hour), r).FirstResponse)
		assert.True(t, ComputeBreach(created.Add(25*time.Hour), r).FirstResponse)
	})

	t.Run("response exactly at the deadline is not a breach", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		r.RecordFirstResponse(created.Add(24 * time.Hour))

		flags := ComputeBreach(created.Add(48*time.Hour), r)
		assert.False(t, flags.FirstResponse)
	})

	t.Run("resolution breach follows the resolution target", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		r.RecordResolution(created.Add(80 * time.Hour))

		flags := ComputeBreach(created.Add(81*time.Hour), r)
		assert.True(t, flags.Resolution)
	})

	t.Run("breach is monotonic under a non-decreasing clock", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)

		breached := false
		for h := 0; h <= 96; h += 6 {
			flags := ComputeBreach(created.Add(time.Duration(h)*time.Hour), r)
			if breached {
				assert.True(t, flags.FirstResponse)
			}
			breached = breached || flags.FirstResponse
		}
		assert.True(t, breached)
	})

	t.Run("idempotent for a fixed clock", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		now := created.Add(30 * time.Hour)

		first := ComputeBreach(now, r)
		second := ComputeBreach(now, r)
		assert.Equal(t, first, second)
	})
}

func TestEvaluate(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("reports a change only when flags flip", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)

		assert.False(t, r.Evaluate(created.Add(time.Hour)))
		assert.True(t, r.Evaluate(created.Add(25*time.Hour)))
		assert.True(t, r.IsFirstResponseBreach)

		// Re-evaluating at a later time changes nothing further
		assert.False(t, r.Evaluate(created.Add(26*time.Hour)))
	})

	t.Run("stamps the evaluation time", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		now := created.Add(time.Hour)

		r.Evaluate(now)
		require.NotNil(t, r.LastEvaluatedAt)
		assert.Equal(t, now, *r.LastEvaluatedAt)
	})
}

func TestResolvedWithinTarget(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("true when resolved inside the target", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		r.RecordResolution(created.Add(48 * time.Hour))
		assert.True(t, r.ResolvedWithinTarget())
	})

	t.Run("false when resolved late", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		r.RecordResolution(created.Add(80 * time.Hour))
		assert.False(t, r.ResolvedWithinTarget())
	})

	t.Run("false while unresolved or without a target", func(t *testing.T) {
		r := createTestRecord(t, created, 24, 72)
		assert.False(t, r.ResolvedWithinTarget())

		noTarget, err := NewTrackingRecord(uuid.New(), uuid.New(), created, nil)
		require.NoError(t, err)
		noTarget.RecordResolution(created.Add(time.Hour))
		assert.False(t, noTarget.ResolvedWithinTarget())
	})
}
