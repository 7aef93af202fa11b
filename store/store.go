// ABOUTME: Device-local key/value persistence for whole JSON collections
// ABOUTME: Defines the Store interface consumed by domain services and the sync engine
package store

// Store is the device-local persistence primitive. Values are whole JSON
// documents keyed by collection name; callers always read and write entire
// collections, never row-level deltas.
type Store interface {
	// Get unmarshals the value for key into out. The second return is false
	// when the key has never been written, in which case out is untouched.
	Get(key string, out any) (bool, error)

	// GetRaw returns the stored JSON bytes for key, or found=false.
	GetRaw(key string) (raw []byte, found bool, err error)

	// Set marshals value and stores it under key, overwriting any prior value.
	Set(key string, value any) error

	// SetRaw stores pre-encoded JSON bytes under key.
	SetRaw(key string, raw []byte) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(key string) error
}
