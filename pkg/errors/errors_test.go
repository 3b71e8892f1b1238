package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	err := WrapWithCode(ErrNotFound, "favorite_missing", "favorite lookup")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "favorite_missing", GetCode(err))
	assert.Equal(t, "favorite lookup", GetMessage(err))
	assert.Equal(t, "favorite lookup: not found", err.Error())
}

func TestNetworkFailure(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NetworkFailure(cause, "fetch stories")

	assert.True(t, IsNetworkFailure(err))
	assert.True(t, stderrors.Is(err, cause))
	assert.False(t, IsRemoteRejection(err))
	assert.Equal(t, "network_failure", GetCode(err))
}

func TestStorageUnavailable(t *testing.T) {
	err := fmt.Errorf("open local store: %w", StorageUnavailable(stderrors.New("disk full"), "open"))

	assert.True(t, IsStorageUnavailable(err))
	assert.False(t, IsNetworkFailure(err))
}

func TestRemoteRejection(t *testing.T) {
	err := fmt.Errorf("submit story: %w", &RemoteRejection{StatusCode: 500, Message: "boom"})

	assert.True(t, IsRemoteRejection(err))
	assert.Equal(t, 500, RemoteStatus(err))
	assert.Equal(t, 0, RemoteStatus(ErrNotFound))
	assert.Contains(t, err.Error(), "status 500: boom")
}

func TestSyncItemFailure(t *testing.T) {
	cause := &RemoteRejection{StatusCode: 400}
	err := &SyncItemFailure{SubmissionID: 7, Err: cause}

	assert.True(t, Is(err, ErrSyncItemFailure))
	assert.True(t, IsRemoteRejection(err))
	assert.Equal(t, 400, RemoteStatus(err))
	assert.Equal(t, "pending submission 7: remote rejected request with status 400", err.Error())
}
