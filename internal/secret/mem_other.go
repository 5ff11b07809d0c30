//go:build !linux

package secret

// Platforms without mlock/madvise support fall back to heap memory that is
// still zeroed on Close.
func allocate(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func release(_ []byte) error {
	return nil
}
