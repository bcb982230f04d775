package repository

// IListingCache caches raw per-channel extraction payloads for a fixed
// expiration window. The cache is purely an optimization: implementations
// must report expired or unreadable entries as absent, never as errors.
type IListingCache interface {
	// Get returns the cached payload for the identifier, or false when the
	// entry is absent, expired or corrupt.
	Get(identifier string) ([]byte, bool)
	// Put stores the payload under the identifier, overwriting any previous
	// entry and restarting its expiration window.
	Put(identifier string, payload []byte) error
}
