// ABOUTME: Sentinel errors for the sync layer
// ABOUTME: Callers match with errors.Is; adapters wrap transport failures in ErrNetwork
package sync

import "errors"

var (
	// ErrAuthRequired is returned by write operations when no session exists.
	ErrAuthRequired = errors.New("auth required: sign in before syncing")

	// ErrNetwork wraps transient transport failures. The sync layer does not
	// retry; a failed push is re-sent on the next mutation or manual sync.
	ErrNetwork = errors.New("network error")

	// ErrConflict means the remote snapshot is newer than the last one this
	// device incorporated. Surface it to the user: download first, then upload.
	ErrConflict = errors.New("remote snapshot is newer than local: download first")

	// ErrMalformedData means a remote envelope failed shape validation.
	// The local store is left untouched.
	ErrMalformedData = errors.New("malformed sync envelope")
)
