package usecase

import (
	"fmt"
	"os"

	"lawrag/internal/domain"
)

// AcquireRunLock takes the exclusive ingestion lock for a collection.
// Concurrent runs would not corrupt the index (upserts are idempotent and
// keyed by identity) but would duplicate all the encoding work, so only
// one run at a time is allowed. The returned release function removes the
// lock; a lock left behind by a killed process must be removed manually.
func AcquireRunLock(path string) (release func(), err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w (lock file: %s)", domain.ErrRunLocked, path)
		}
		return nil, fmt.Errorf("failed to create run lock: %w", err)
	}

	fmt.Fprintf(f, "%d\n", os.Getpid())
	f.Close()

	return func() {
		os.Remove(path)
	}, nil
}
