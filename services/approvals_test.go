package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rigsync/store"
)

func TestApproveAndUnapprove(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewApprovalService(store.NewMemory(), notifier)
	ctx := context.Background()

	ok, err := svc.IsApproved("report-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Approve(ctx, "report-1"))
	ok, err = svc.IsApproved("report-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, notifier.count("approvedReportIds"))

	require.NoError(t, svc.Unapprove(ctx, "report-1"))
	ok, err = svc.IsApproved("report-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 2, notifier.count("approvedReportIds"))

	// Unapproving a missing flag is a silent no-op
	require.NoError(t, svc.Unapprove(ctx, "report-1"))
	assert.Equal(t, 2, notifier.count("approvedReportIds"))
}

func TestApproveIdempotent(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewApprovalService(store.NewMemory(), notifier)
	ctx := context.Background()

	require.NoError(t, svc.Approve(ctx, "report-7"))
	flags, err := svc.List()
	require.NoError(t, err)
	require.Len(t, flags, 1)
	first := flags[0].ApprovedAt

	require.NoError(t, svc.Approve(ctx, "report-7"))
	flags, err = svc.List()
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, first, flags[0].ApprovedAt, "re-approval keeps the original timestamp")
	assert.Equal(t, 1, notifier.count("approvedReportIds"))

	require.Error(t, svc.Approve(ctx, ""))
}
