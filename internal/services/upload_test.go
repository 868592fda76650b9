package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"video-tracking-system/internal/models"
	"video-tracking-system/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	blobs   map[string][]byte
	saveErr error
	deleted []string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{blobs: map[string][]byte{}}
}

func (s *memoryStore) Save(_ context.Context, name string, src io.Reader) (int64, error) {
	if s.saveErr != nil {
		return 0, s.saveErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, src)
	if err != nil {
		return 0, err
	}
	s.blobs[name] = buf.Bytes()
	return n, nil
}

func (s *memoryStore) Delete(_ context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	delete(s.blobs, name)
	return nil
}

func TestUpload(t *testing.T) {
	repo := new(MockVideoRepository)
	store := newMemoryStore()
	svc := NewUploadService(store, repo, testLogger())

	var created *models.Video
	repo.On("Create", mock.Anything, mock.AnythingOfType("*models.Video")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*models.Video) }).
		Return(nil).Once()

	res, err := svc.Upload(context.Background(), strings.NewReader("webm-bytes"), "../../clips/demo.webm")
	require.NoError(t, err)

	_, err = uuid.Parse(res.ID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, res.ID+".webm", res.Filename)
	assert.Equal(t, "/watch/"+res.ID, res.ShareURL)
	assert.Equal(t, []byte("webm-bytes"), store.blobs[res.Filename])

	require.NotNil(t, created)
	assert.Equal(t, res.ID, created.ID)
	assert.Equal(t, res.Filename, created.Filename)
	assert.Equal(t, "demo.webm", created.OriginalName)
	assert.Equal(t, int64(len("webm-bytes")), created.Size)
	repo.AssertExpectations(t)
}

func TestUploadRemovesBlobWhenRecordFails(t *testing.T) {
	repo := new(MockVideoRepository)
	store := newMemoryStore()
	svc := NewUploadService(store, repo, testLogger())

	repo.On("Create", mock.Anything, mock.Anything).
		Return(fmt.Errorf("%w: disk full", repository.ErrCreateFailed))

	_, err := svc.Upload(context.Background(), strings.NewReader("data"), "demo.webm")
	assert.ErrorIs(t, err, ErrStoreFailure)
	require.Len(t, store.deleted, 1)
	assert.Empty(t, store.blobs)
}

func TestUploadStoreFailure(t *testing.T) {
	repo := new(MockVideoRepository)
	store := newMemoryStore()
	store.saveErr = errors.New("read-only filesystem")
	svc := NewUploadService(store, repo, testLogger())

	_, err := svc.Upload(context.Background(), strings.NewReader("data"), "demo.webm")
	assert.ErrorIs(t, err, ErrStoreFailure)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateVideoRecord(t *testing.T) {
	repo := new(MockVideoRepository)
	svc := NewUploadService(newMemoryStore(), repo, testLogger())
	ctx := context.Background()

	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *models.Video) bool {
		return v.ID == "v1"
	})).Return(nil).Once()
	repo.On("Create", mock.Anything, mock.MatchedBy(func(v *models.Video) bool {
		return v.ID == "dup"
	})).Return(repository.ErrDuplicateKey).Once()

	video, err := svc.CreateVideoRecord(ctx, "v1", "v1.webm", "demo.webm", 2048)
	require.NoError(t, err)
	assert.Equal(t, "v1.webm", video.Filename)
	assert.Zero(t, video.Views)
	assert.Zero(t, video.Completions)
	assert.Zero(t, video.TotalWatchTime)

	_, err = svc.CreateVideoRecord(ctx, "dup", "dup.webm", "demo.webm", 1)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateVideoRecord(ctx, "", "x.webm", "x", 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateVideoRecord(ctx, "v2", "", "x", 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.CreateVideoRecord(ctx, "v2", "v2.webm", "x", -1)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	repo.AssertExpectations(t)
}
