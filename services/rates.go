// ABOUTME: Rate sheet service and effective-date rate resolution
// ABOUTME: Rates are keyed by equipment/labor category; revisions may arrive out of order
package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

const rateSheetsKey = "rateSheets"

const isoDate = "2006-01-02"

// RateService manages the rateSheets collection.
type RateService struct {
	store store.Store
	sync  Notifier
}

// NewRateService creates a rate service.
func NewRateService(s store.Store, n Notifier) *RateService {
	return &RateService{store: s, sync: n}
}

// Sheet returns the full rate sheet.
func (s *RateService) Sheet() (models.RateSheet, error) {
	sheet := models.RateSheet{}
	if _, err := s.store.Get(rateSheetsKey, &sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// AddRate appends a rate revision for a category. Entries need not arrive in
// date order; resolution sorts on demand.
func (s *RateService) AddRate(ctx context.Context, category string, entry models.RateEntry) error {
	if category == "" {
		return validationErrorf("rate category is required")
	}
	if _, err := time.Parse(isoDate, entry.EffectiveDate); err != nil {
		return validationErrorf("effective date %q is not an ISO date", entry.EffectiveDate)
	}
	if entry.HourlyRate < 0 {
		return validationErrorf("hourly rate cannot be negative")
	}

	sheet, err := s.Sheet()
	if err != nil {
		return err
	}
	sheet[category] = append(sheet[category], entry)

	if err := s.store.Set(rateSheetsKey, sheet); err != nil {
		return err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, rateSheetsKey); err != nil {
		return fmt.Errorf("rate saved locally but sync failed: %w", err)
	}
	return nil
}

// RateFor resolves the applicable hourly rate for a category on a work date.
func (s *RateService) RateFor(category, workDate string) (float64, error) {
	sheet, err := s.Sheet()
	if err != nil {
		return 0, err
	}
	return ResolveRate(sheet[category], workDate), nil
}

// ResolveRate returns the rate from the entry with the latest effective date
// not after workDate, or 0 when no entry applies. Entry order is irrelevant.
func ResolveRate(entries []models.RateEntry, workDate string) float64 {
	day, err := time.Parse(isoDate, workDate)
	if err != nil {
		return 0
	}

	sorted := make([]models.RateEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate > sorted[j].EffectiveDate
	})

	for _, e := range sorted {
		eff, err := time.Parse(isoDate, e.EffectiveDate)
		if err != nil {
			continue
		}
		if !eff.After(day) {
			return e.HourlyRate
		}
	}
	return 0
}
