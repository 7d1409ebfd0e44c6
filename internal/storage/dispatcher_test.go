package storage_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/distill/internal/storage"
	"github.com/vmunix/distill/internal/storage/mocks"
	"go.uber.org/mock/gomock"
)

// testLogger returns a discard logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var artifact = storage.Artifact{Path: "/out/youtube/song.mp3", Name: "song.mp3", Category: "youtube"}

func TestDispatcher_AttemptsEveryDestination(t *testing.T) {
	ctrl := gomock.NewController(t)
	s3 := mocks.NewMockUploader(ctrl)
	gcp := mocks.NewMockUploader(ctrl)

	s3.EXPECT().IsConfigured().Return(true)
	s3.EXPECT().Upload(gomock.Any(), artifact.Path, "song.mp3", "youtube").Return("s3://b/youtube/song.mp3", nil)
	gcp.EXPECT().IsConfigured().Return(true)
	gcp.EXPECT().Upload(gomock.Any(), artifact.Path, "song.mp3", "youtube").Return("https://storage.googleapis.com/b/youtube/song.mp3", nil)

	d := storage.NewDispatcher(map[storage.Destination]storage.Uploader{
		storage.DestinationS3:  s3,
		storage.DestinationGCP: gcp,
	}, testLogger())

	got, err := d.Dispatch(context.Background(), artifact,
		[]storage.Destination{storage.DestinationLocal, storage.DestinationS3, storage.DestinationGCP})
	require.NoError(t, err)

	require.Len(t, got.Outcomes, 2)
	assert.True(t, got.Outcomes[0].Success)
	assert.True(t, got.Outcomes[1].Success)
	assert.Equal(t, "s3://b/youtube/song.mp3", got.Location, "first successful remote wins")
}

func TestDispatcher_FailureDoesNotShortCircuit(t *testing.T) {
	ctrl := gomock.NewController(t)
	s3 := mocks.NewMockUploader(ctrl)
	gcp := mocks.NewMockUploader(ctrl)

	s3.EXPECT().IsConfigured().Return(true)
	s3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("access denied"))
	gcp.EXPECT().IsConfigured().Return(true)
	gcp.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("gs-location", nil)

	d := storage.NewDispatcher(map[storage.Destination]storage.Uploader{
		storage.DestinationS3:  s3,
		storage.DestinationGCP: gcp,
	}, testLogger())

	got, err := d.Dispatch(context.Background(), artifact, []storage.Destination{storage.DestinationS3, storage.DestinationGCP})
	require.NoError(t, err)

	require.Len(t, got.Outcomes, 2)
	assert.False(t, got.Outcomes[0].Success)
	assert.ErrorIs(t, got.Outcomes[0].Err, storage.ErrUploadFailed)
	assert.Equal(t, "gs-location", got.Location)
}

func TestDispatcher_AllFailedKeepsLocalPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	s3 := mocks.NewMockUploader(ctrl)
	s3.EXPECT().IsConfigured().Return(false)

	d := storage.NewDispatcher(map[storage.Destination]storage.Uploader{storage.DestinationS3: s3}, testLogger())

	got, err := d.Dispatch(context.Background(), artifact, []storage.Destination{storage.DestinationS3, storage.DestinationGCP})
	require.NoError(t, err)

	require.Len(t, got.Outcomes, 2)
	assert.ErrorIs(t, got.Outcomes[0].Err, storage.ErrNotConfigured)
	assert.ErrorIs(t, got.Outcomes[1].Err, storage.ErrNoUploader)
	assert.Equal(t, artifact.Path, got.Location)
}

func TestDispatcher_LocalOnly(t *testing.T) {
	d := storage.NewDispatcher(nil, testLogger())

	got, err := d.Dispatch(context.Background(), artifact, []storage.Destination{storage.DestinationLocal})
	require.NoError(t, err)
	assert.Empty(t, got.Outcomes)
	assert.Equal(t, artifact.Path, got.Location)
}

func TestDispatcher_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	s3 := mocks.NewMockUploader(ctrl)
	gcp := mocks.NewMockUploader(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	s3.EXPECT().IsConfigured().Return(true)
	s3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, string, string) (string, error) {
			cancel()
			return "", context.Canceled
		})

	d := storage.NewDispatcher(map[storage.Destination]storage.Uploader{
		storage.DestinationS3:  s3,
		storage.DestinationGCP: gcp,
	}, testLogger())

	_, err := d.Dispatch(ctx, artifact, []storage.Destination{storage.DestinationS3, storage.DestinationGCP})
	require.ErrorIs(t, err, context.Canceled)
}
