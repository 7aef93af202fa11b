// ABOUTME: Approved-report flags service
// ABOUTME: Tracks which daily field reports are approved for invoicing
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/rigsync/models"
	"github.com/harperreed/rigsync/store"
)

const approvalsKey = "approvedReportIds"

// ApprovalService manages the approvedReportIds collection.
type ApprovalService struct {
	store store.Store
	sync  Notifier
}

// NewApprovalService creates an approval service.
func NewApprovalService(s store.Store, n Notifier) *ApprovalService {
	return &ApprovalService{store: s, sync: n}
}

// List returns all approval flags.
func (s *ApprovalService) List() ([]models.ApprovalFlag, error) {
	var flags []models.ApprovalFlag
	if _, err := s.store.Get(approvalsKey, &flags); err != nil {
		return nil, err
	}
	return flags, nil
}

// IsApproved reports whether a report carries an approval flag.
func (s *ApprovalService) IsApproved(reportID string) (bool, error) {
	flags, err := s.List()
	if err != nil {
		return false, err
	}
	for _, f := range flags {
		if f.ID == reportID {
			return true, nil
		}
	}
	return false, nil
}

// Approve flags a report as approved. Approving twice is a no-op and keeps
// the original timestamp.
func (s *ApprovalService) Approve(ctx context.Context, reportID string) error {
	if reportID == "" {
		return validationErrorf("report id is required")
	}
	flags, err := s.List()
	if err != nil {
		return err
	}
	for _, f := range flags {
		if f.ID == reportID {
			return nil
		}
	}

	flags = append(flags, models.ApprovalFlag{ID: reportID, ApprovedAt: time.Now()})
	if err := s.store.Set(approvalsKey, flags); err != nil {
		return err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, approvalsKey); err != nil {
		return fmt.Errorf("approval saved locally but sync failed: %w", err)
	}
	return nil
}

// Unapprove removes a report's approval flag.
func (s *ApprovalService) Unapprove(ctx context.Context, reportID string) error {
	flags, err := s.List()
	if err != nil {
		return err
	}
	kept := flags[:0]
	for _, f := range flags {
		if f.ID != reportID {
			kept = append(kept, f)
		}
	}
	if len(kept) == len(flags) {
		return nil
	}

	if err := s.store.Set(approvalsKey, kept); err != nil {
		return err
	}
	if err := s.sync.NotifyCollectionChanged(ctx, approvalsKey); err != nil {
		return fmt.Errorf("approval removed locally but sync failed: %w", err)
	}
	return nil
}
