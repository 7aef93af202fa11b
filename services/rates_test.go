package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

func TestResolveRate(t *testing.T) {
	entries := []models.RateEntry{
		{EffectiveDate: "2024-01-01", HourlyRate: 100},
		{EffectiveDate: "2024-06-01", HourlyRate: 120},
	}

	tests := []struct {
		workDate string
		want     float64
	}{
		{"2024-03-15", 100},
		{"2024-07-01", 120},
		{"2024-06-01", 120}, // effective on its own date
		{"2023-12-31", 0},   // before the first revision
		{"not-a-date", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveRate(entries, tt.workDate), "workDate %s", tt.workDate)
	}
}

func TestResolveRateIgnoresEntryOrder(t *testing.T) {
	// Revisions appended out of date order resolve the same way
	entries := []models.RateEntry{
		{EffectiveDate: "2024-06-01", HourlyRate: 120},
		{EffectiveDate: "2024-01-01", HourlyRate: 100},
	}
	assert.Equal(t, 100.0, ResolveRate(entries, "2024-03-15"))
	assert.Equal(t, 120.0, ResolveRate(entries, "2024-12-01"))
}

func TestAddRate(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewRateService(store.NewMemory(), notifier)
	ctx := context.Background()

	require.NoError(t, svc.AddRate(ctx, "drill-rig", models.RateEntry{EffectiveDate: "2024-01-01", HourlyRate: 100}))
	require.NoError(t, svc.AddRate(ctx, "drill-rig", models.RateEntry{EffectiveDate: "2024-06-01", HourlyRate: 120}))
	assert.Equal(t, 2, notifier.count("rateSheets"))

	rate, err := svc.RateFor("drill-rig", "2024-07-01")
	require.NoError(t, err)
	assert.Equal(t, 120.0, rate)

	// Unknown category resolves to zero, not an error
	rate, err = svc.RateFor("crane", "2024-07-01")
	require.NoError(t, err)
	assert.Zero(t, rate)
}

func TestAddRateValidation(t *testing.T) {
	svc := NewRateService(store.NewMemory(), NopNotifier{})
	ctx := context.Background()

	assert.Error(t, svc.AddRate(ctx, "", models.RateEntry{EffectiveDate: "2024-01-01", HourlyRate: 100}))
	assert.Error(t, svc.AddRate(ctx, "drill-rig", models.RateEntry{EffectiveDate: "June 1st", HourlyRate: 100}))
	assert.Error(t, svc.AddRate(ctx, "drill-rig", models.RateEntry{EffectiveDate: "2024-01-01", HourlyRate: -1}))
}
