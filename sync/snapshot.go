// ABOUTME: Conflict-aware upload/download protocol over the snapshot backend
// ABOUTME: Timestamp conflict check on upload, merge-by-identity apply on download
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/rigsync/store"
)

const (
	// SnapshotFileName is the single named file holding the shared envelope.
	SnapshotFileName = "rigsync-data.json"

	snapshotMimeType = "application/json"

	// conflictGrace tolerates small clock skew between devices before an
	// upload is refused as conflicting.
	conflictGrace = 2 * time.Second

	// lastRemoteTimestampKey is the local-store key recording the newest
	// remote envelope timestamp this device has incorporated.
	lastRemoteTimestampKey = "sync.lastRemoteTimestamp"
)

// FileMeta describes a remote snapshot file.
type FileMeta struct {
	ID           string
	Name         string
	ModifiedTime time.Time
}

// SnapshotBackend is a remote blob store addressed by named files inside one
// folder. UpdateFile overwrites an existing file in place.
type SnapshotBackend interface {
	ListFiles(ctx context.Context, name string) ([]FileMeta, error)
	UploadFile(ctx context.Context, name string, content []byte, mimeType string) (*FileMeta, error)
	UpdateFile(ctx context.Context, fileID, name string, content []byte, mimeType string) (*FileMeta, error)
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// DownloadStatus reports what a Download call did.
type DownloadStatus int

const (
	// NoRemoteData means the named file does not exist yet.
	NoRemoteData DownloadStatus = iota
	// UpToDate means the remote envelope is not newer; nothing was written.
	UpToDate
	// Applied means remote changes were merged into the local store.
	Applied
)

func (s DownloadStatus) String() string {
	switch s {
	case UpToDate:
		return "up to date"
	case Applied:
		return "applied"
	default:
		return "no remote data"
	}
}

// SnapshotSyncer runs the snapshot-path sync protocol for the collections
// that must survive without a reachable realtime backend: clients, rate
// sheets, and approved-report flags. Upload and Download are compound
// operations with two network round trips; the syncer serializes them so a
// second call cannot race past the conflict check.
type SnapshotSyncer struct {
	store   store.Store
	backend SnapshotBackend

	mu  sync.Mutex
	now func() time.Time
}

// NewSnapshotSyncer creates a syncer over the given local store and backend.
func NewSnapshotSyncer(s store.Store, backend SnapshotBackend) *SnapshotSyncer {
	return &SnapshotSyncer{
		store:   s,
		backend: backend,
		now:     time.Now,
	}
}

// Upload pushes a fresh envelope of the local collections to the remote
// file. Before writing it silently downloads the current remote envelope; if
// that envelope is newer than the last timestamp this device incorporated,
// by more than the grace window, Upload fails with ErrConflict and leaves
// the remote file untouched.
func (s *SnapshotSyncer) Upload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.findFile(ctx)
	if err != nil {
		return err
	}

	if meta != nil {
		raw, err := s.backend.DownloadFile(ctx, meta.ID)
		if err != nil {
			return fmt.Errorf("failed to check remote snapshot: %w", err)
		}
		remote, err := ParseEnvelope(raw)
		if err != nil {
			return err
		}
		lastKnown := s.lastKnownRemoteTimestamp()
		if remote.Timestamp > lastKnown+conflictGrace.Milliseconds() {
			return fmt.Errorf("%w (remote %d, local %d)", ErrConflict, remote.Timestamp, lastKnown)
		}
	}

	env := &Envelope{
		Timestamp: s.now().UnixMilli(),
		Version:   EnvelopeVersion,
		Data: EnvelopeData{
			Clients:           s.collectionOr("clients", "[]"),
			RateSheets:        s.collectionOr("rateSheets", "null"),
			ApprovedReportIDs: s.collectionOr("approvedReportIds", "[]"),
		},
	}
	content, err := env.Encode()
	if err != nil {
		return err
	}

	if meta == nil {
		_, err = s.backend.UploadFile(ctx, SnapshotFileName, content, snapshotMimeType)
	} else {
		_, err = s.backend.UpdateFile(ctx, meta.ID, SnapshotFileName, content, snapshotMimeType)
	}
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	return s.setLastKnownRemoteTimestamp(env.Timestamp)
}

// Download pulls the remote envelope and merges it into the local store.
// An absent file is not an error; an envelope no newer than the last one
// incorporated applies nothing and does not advance the recorded timestamp.
func (s *SnapshotSyncer) Download(ctx context.Context) (DownloadStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.findFile(ctx)
	if err != nil {
		return NoRemoteData, err
	}
	if meta == nil {
		return NoRemoteData, nil
	}

	raw, err := s.backend.DownloadFile(ctx, meta.ID)
	if err != nil {
		return NoRemoteData, fmt.Errorf("failed to download snapshot: %w", err)
	}
	remote, err := ParseEnvelope(raw)
	if err != nil {
		return NoRemoteData, err
	}

	if remote.Timestamp <= s.lastKnownRemoteTimestamp() {
		return UpToDate, nil
	}

	if err := s.applyCollection("clients", remote.Data.Clients, true); err != nil {
		return UpToDate, err
	}
	if err := s.applyCollection("rateSheets", remote.Data.RateSheets, false); err != nil {
		return UpToDate, err
	}
	if err := s.applyCollection("approvedReportIds", remote.Data.ApprovedReportIDs, true); err != nil {
		return UpToDate, err
	}

	if err := s.setLastKnownRemoteTimestamp(remote.Timestamp); err != nil {
		return Applied, err
	}
	return Applied, nil
}

// applyCollection writes one sub-collection into the local store. Arrays
// merge by identity; anything else fully overwrites.
func (s *SnapshotSyncer) applyCollection(name string, incoming []byte, isArray bool) error {
	if len(incoming) == 0 {
		return nil
	}
	if isArray {
		local, _, err := s.store.GetRaw(name)
		if err != nil {
			return err
		}
		merged, err := MergeByID(local, incoming)
		if err != nil {
			return fmt.Errorf("failed to merge %s: %w", name, err)
		}
		return s.store.SetRaw(name, merged)
	}
	if emptyValue(incoming) {
		return nil
	}
	return s.store.SetRaw(name, incoming)
}

// findFile locates the named snapshot file, or nil if it does not exist.
func (s *SnapshotSyncer) findFile(ctx context.Context) (*FileMeta, error) {
	files, err := s.backend.ListFiles(ctx, SnapshotFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote snapshots: %w", err)
	}
	for i := range files {
		if files[i].Name == SnapshotFileName {
			return &files[i], nil
		}
	}
	return nil, nil
}

func (s *SnapshotSyncer) lastKnownRemoteTimestamp() int64 {
	return LastRemoteTimestamp(s.store)
}

// LastRemoteTimestamp reads the recorded remote snapshot timestamp straight
// from a store, for callers that have no syncer wired up. Zero when no
// snapshot has ever been incorporated.
func LastRemoteTimestamp(st store.Store) int64 {
	var ts int64
	if found, err := st.Get(lastRemoteTimestampKey, &ts); err != nil || !found {
		return 0
	}
	return ts
}

func (s *SnapshotSyncer) setLastKnownRemoteTimestamp(ts int64) error {
	return s.store.Set(lastRemoteTimestampKey, ts)
}

// collectionOr returns the raw local value for name, or fallback when the
// collection has never been written.
func (s *SnapshotSyncer) collectionOr(name, fallback string) []byte {
	raw, found, err := s.store.GetRaw(name)
	if err != nil || !found {
		return []byte(fallback)
	}
	return raw
}

// LastKnownRemoteTimestamp exposes the recorded remote timestamp for status
// displays.
func (s *SnapshotSyncer) LastKnownRemoteTimestamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastKnownRemoteTimestamp()
}
