package usecase

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawrag/internal/domain"
)

func TestAcquireRunLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.lock")

	release, err := AcquireRunLock(path)
	require.NoError(t, err)
	defer release()

	_, err = AcquireRunLock(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRunLocked))
}

func TestAcquireRunLock_ReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.lock")

	release, err := AcquireRunLock(path)
	require.NoError(t, err)
	release()

	release, err = AcquireRunLock(path)
	require.NoError(t, err)
	release()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "release must remove the lock file")
}
