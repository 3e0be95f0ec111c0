package sla

import (
	"testing"
	"time"

	"github.com/marketplace/backend/internal/domain/dispute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseTypePtr(t dispute.CaseType) *dispute.CaseType {
	return &t
}

func strPtr(s string) *string {
	return &s
}

func mustConfig(t *testing.T, name string, caseType *dispute.CaseType, category *string, priority int, effectiveFrom time.Time) Configuration {
	c, err := NewConfiguration(name, caseType, category, 24, 72, priority, effectiveFrom)
	require.NoError(t, err)
	return *c
}

func TestNewConfiguration(t *testing.T) {
	t.Run("creates an active configuration", func(t *testing.T) {
		c, err := NewConfiguration("default", nil, nil, 24, 72, 100, time.Now())
		require.NoError(t, err)
		assert.True(t, c.Active)
		assert.Equal(t, 24, c.ResponseTargetHours)
		assert.Equal(t, 72, c.ResolutionTargetHours)
	})

	t.Run("rejects non-positive targets", func(t *testing.T) {
		_, err := NewConfiguration("bad", nil, nil, 0, 72, 100, time.Now())
		assert.Error(t, err)

		_, err = NewConfiguration("bad", nil, nil, 24, -1, 100, time.Now())
		assert.Error(t, err)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewConfiguration("", nil, nil, 24, 72, 100, time.Now())
		assert.Error(t, err)
	})
}

func TestIsEffective(t *testing.T) {
	now := time.Now()

	t.Run("inactive configuration is never effective", func(t *testing.T) {
		c := mustConfig(t, "c", nil, nil, 100, now.Add(-time.Hour))
		c.Active = false
		assert.False(t, c.IsEffective(now))
	})

	t.Run("not yet effective", func(t *testing.T) {
		c := mustConfig(t, "c", nil, nil, 100, now.Add(time.Hour))
		assert.False(t, c.IsEffective(now))
	})

	t.Run("expired", func(t *testing.T) {
		c := mustConfig(t, "c", nil, nil, 100, now.Add(-48*time.Hour))
		until := now.Add(-time.Hour)
		c.EffectiveTo = &until
		assert.False(t, c.IsEffective(now))
	})

	t.Run("inside the window", func(t *testing.T) {
		c := mustConfig(t, "c", nil, nil, 100, now.Add(-time.Hour))
		until := now.Add(time.Hour)
		c.EffectiveTo = &until
		assert.True(t, c.IsEffective(now))
	})
}

func TestResolveConfiguration(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)

	globalDefault := mustConfig(t, "global", nil, nil, 1000, yesterday)
	returnsOnly := mustConfig(t, "returns", caseTypePtr(dispute.CaseTypeReturn), nil, 50, yesterday)
	electronicsOnly := mustConfig(t, "electronics", nil, strPtr("electronics"), 50, yesterday)
	returnsElectronics := mustConfig(t, "returns-electronics", caseTypePtr(dispute.CaseTypeReturn), strPtr("electronics"), 90, yesterday)

	t.Run("exact type and category match beats everything", func(t *testing.T) {
		// Even with a worse priority number, the more specific tier wins
		got := ResolveConfiguration([]Configuration{globalDefault, returnsOnly, electronicsOnly, returnsElectronics},
			dispute.CaseTypeReturn, "electronics", now)
		require.NotNil(t, got)
		assert.Equal(t, "returns-electronics", got.Name)
	})

	t.Run("case type match beats category match", func(t *testing.T) {
		got := ResolveConfiguration([]Configuration{globalDefault, electronicsOnly, returnsOnly},
			dispute.CaseTypeReturn, "electronics", now)
		require.NotNil(t, got)
		assert.Equal(t, "returns", got.Name)
	})

	t.Run("category match beats the global default", func(t *testing.T) {
		got := ResolveConfiguration([]Configuration{globalDefault, electronicsOnly},
			dispute.CaseTypeComplaint, "electronics", now)
		require.NotNil(t, got)
		assert.Equal(t, "electronics", got.Name)
	})

	t.Run("falls back to the global default", func(t *testing.T) {
		got := ResolveConfiguration([]Configuration{globalDefault, returnsOnly},
			dispute.CaseTypeComplaint, "books", now)
		require.NotNil(t, got)
		assert.Equal(t, "global", got.Name)
	})

	t.Run("lowest priority number wins within a tier", func(t *testing.T) {
		loose := mustConfig(t, "loose", caseTypePtr(dispute.CaseTypeReturn), nil, 200, yesterday)
		strict := mustConfig(t, "strict", caseTypePtr(dispute.CaseTypeReturn), nil, 10, yesterday)

		got := ResolveConfiguration([]Configuration{loose, strict}, dispute.CaseTypeReturn, "", now)
		require.NotNil(t, got)
		assert.Equal(t, "strict", got.Name)
	})

	t.Run("priority ties break by latest effective from", func(t *testing.T) {
		older := mustConfig(t, "older", nil, nil, 100, now.Add(-72*time.Hour))
		newer := mustConfig(t, "newer", nil, nil, 100, yesterday)

		got := ResolveConfiguration([]Configuration{older, newer}, dispute.CaseTypeReturn, "", now)
		require.NotNil(t, got)
		assert.Equal(t, "newer", got.Name)
	})

	t.Run("ignores configurations outside their effective window", func(t *testing.T) {
		future := mustConfig(t, "future", caseTypePtr(dispute.CaseTypeReturn), nil, 1, now.Add(time.Hour))

		got := ResolveConfiguration([]Configuration{globalDefault, future}, dispute.CaseTypeReturn, "", now)
		require.NotNil(t, got)
		assert.Equal(t, "global", got.Name)
	})

	t.Run("returns nil when nothing matches", func(t *testing.T) {
		got := ResolveConfiguration([]Configuration{returnsOnly}, dispute.CaseTypeComplaint, "books", now)
		assert.Nil(t, got)
	})

	t.Run("type filter with wrong category does not degrade to a lower tier", func(t *testing.T) {
		// A (RETURN, electronics) config must not match a RETURN/books case
		got := ResolveConfiguration([]Configuration{returnsElectronics}, dispute.CaseTypeReturn, "books", now)
		assert.Nil(t, got)
	})
}
