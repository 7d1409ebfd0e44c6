package job_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmunix/distill/internal/download"
	"github.com/vmunix/distill/internal/engine"
	enginemocks "github.com/vmunix/distill/internal/engine/mocks"
	"github.com/vmunix/distill/internal/events"
	inscribemocks "github.com/vmunix/distill/internal/inscribe/mocks"
	"github.com/vmunix/distill/internal/job"
	"github.com/vmunix/distill/internal/media"
	"github.com/vmunix/distill/internal/storage"
	storagemocks "github.com/vmunix/distill/internal/storage/mocks"
	"go.uber.org/mock/gomock"
)

const songURL = "https://www.youtube.com/watch?v=abc123"

func blockedErr() error {
	return &engine.ExecError{Err: errors.New("exit status 1"), Output: "ERROR: [youtube] abc123: HTTP Error 403: Forbidden"}
}

func TestRunner_PartialSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	ins := inscribemocks.NewMockInscriber(ctrl)
	cfg := testConfig(t, "[media.audio]\nenabled_formats = [\"mp3\", \"flac\"]\n")
	rec := &recorder{}

	eng.EXPECT().ExtractMetadata(gomock.Any(), songURL).Return(&engine.Metadata{Title: "My Song"}, nil)
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req engine.Request, _ engine.ProgressSink) (*engine.Result, error) {
			if req.Options.AudioFormat == "flac" {
				return nil, &engine.ExecError{Err: errors.New("exit status 1"), Output: "ERROR: Unable to download webpage: network is unreachable"}
			}
			return artifactFor(t, req)
		}).Times(2)
	ins.EXPECT().Write(gomock.Any(), gomock.Any(), songURL).Return(nil)

	r := job.NewRunner(job.Deps{
		Config:    cfg,
		Engine:    eng,
		Settings:  download.SettingsFromConfig(cfg),
		Inscriber: ins,
		Events:    rec,
	}, testLogger())

	res, err := r.Run(context.Background(), job.Job{URL: songURL})
	require.NoError(t, err)

	assert.True(t, res.OverallSuccess)
	require.Len(t, res.Seals, 1)
	assert.Equal(t, "mp3", res.Seals[0].Extension)
	assert.Equal(t, filepath.Join(cfg.Paths.OutputDir, "youtube", "My Song.mp3"), res.Seals[0].Location)
	require.Len(t, res.Fractures, 1)
	assert.Equal(t, job.FracturedEntry{Extension: "flac", Cause: "network error", Err: res.Fractures[0].Err}, res.Fractures[0])

	assert.Equal(t, []string{events.EventJobStarted, events.EventJobCompleted}, rec.types())
	completed := rec.last(events.EventJobCompleted).(*events.JobCompleted)
	assert.Equal(t, 1, completed.Index)
	assert.NotEmpty(t, completed.RunID)
	assert.Len(t, completed.Fractures, 1)
}

func TestRunner_VideoFallbackExhausted(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	cfg := testConfig(t, "[media.video]\nenabled = true\n")
	rec := &recorder{}

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(&engine.Metadata{Title: "Clip"}, nil)
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, blockedErr()).Times(2)

	r := job.NewRunner(job.Deps{Config: cfg, Engine: eng, Settings: download.SettingsFromConfig(cfg), Events: rec}, testLogger())
	res, err := r.Run(context.Background(), job.Job{
		URL:       songURL,
		Overrides: job.Overrides{Formats: media.Overrides{VideoFormat: "mp4"}},
	})
	require.NoError(t, err)

	assert.False(t, res.OverallSuccess)
	assert.Empty(t, res.Seals)
	require.Len(t, res.Fractures, 1)
	assert.Equal(t, "mp4", res.Fractures[0].Extension)
	assert.Equal(t, "provider blocked (HTTP 403)", res.Fractures[0].Cause)
	assert.ErrorIs(t, res.Fractures[0].Err, download.ErrUnknownFailure)
	assert.Equal(t, []string{events.EventJobStarted, events.EventJobFailed}, rec.types())
}

func TestRunner_VideoFallbackUploadsAudio(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	s3 := storagemocks.NewMockUploader(ctrl)
	cfg := testConfig(t, `
[media.video]
enabled = true

[storage.s3]
bucket = "media"
access_key = "ak"
secret_key = "sk"
`)
	rec := &recorder{}

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(&engine.Metadata{Title: "Clip"}, nil)
	gomock.InOrder(
		eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, blockedErr()),
		eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req engine.Request, _ engine.ProgressSink) (*engine.Result, error) {
				return artifactFor(t, req)
			}),
	)
	s3.EXPECT().IsConfigured().Return(true)
	s3.EXPECT().Upload(gomock.Any(), gomock.Any(), "Clip.mp3", "youtube").Return("s3://media/youtube/Clip.mp3", nil)

	dispatcher := storage.NewDispatcher(map[storage.Destination]storage.Uploader{storage.DestinationS3: s3}, testLogger())
	r := job.NewRunner(job.Deps{
		Config:     cfg,
		Engine:     eng,
		Settings:   download.SettingsFromConfig(cfg),
		Dispatcher: dispatcher,
		Events:     rec,
	}, testLogger())

	res, err := r.Run(context.Background(), job.Job{
		URL: songURL,
		Overrides: job.Overrides{
			Formats:      media.Overrides{VideoFormat: "mp4"},
			Destinations: []storage.Destination{storage.DestinationS3},
		},
	})
	require.NoError(t, err)

	require.Len(t, res.Seals, 1)
	seal := res.Seals[0]
	assert.Equal(t, "mp3", seal.Extension)
	assert.Equal(t, media.CodecMP4, seal.FallbackFrom)
	assert.Equal(t, "s3://media/youtube/Clip.mp3", seal.Location)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, []string{events.EventJobStarted, events.EventJobFallback, events.EventJobCompleted}, rec.types())
	fb := rec.last(events.EventJobFallback).(*events.JobFallback)
	assert.Equal(t, "mp4", fb.Requested)
	assert.Equal(t, "mp3", fb.Produced)
}

func TestRunner_UploadFailureKeepsLocalSeal(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	gcp := storagemocks.NewMockUploader(ctrl)
	cfg := testConfig(t, "[storage.gcp]\nbucket = \"b\"\nsa_key_base64 = \"e30=\"\n")

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(&engine.Metadata{Title: "Song"}, nil)
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req engine.Request, _ engine.ProgressSink) (*engine.Result, error) {
			return artifactFor(t, req)
		})
	gcp.EXPECT().IsConfigured().Return(true)
	gcp.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return("", errors.New("permission denied"))

	r := job.NewRunner(job.Deps{
		Config:     cfg,
		Engine:     eng,
		Settings:   download.SettingsFromConfig(cfg),
		Dispatcher: storage.NewDispatcher(map[storage.Destination]storage.Uploader{storage.DestinationGCP: gcp}, testLogger()),
	}, testLogger())

	res, err := r.Run(context.Background(), job.Job{
		URL:       songURL,
		Overrides: job.Overrides{Destinations: []storage.Destination{storage.DestinationGCP}},
	})
	require.NoError(t, err)

	assert.True(t, res.OverallSuccess)
	require.Len(t, res.Seals, 1)
	assert.True(t, strings.HasSuffix(res.Seals[0].Location, "Song.mp3"), "falls back to local path")
	require.Len(t, res.Seals[0].Uploads, 1)
	assert.False(t, res.Seals[0].Uploads[0].Success)
	assert.ErrorIs(t, res.Seals[0].Uploads[0].Err, storage.ErrUploadFailed)
}

func TestRunner_UnconfiguredRemoteFallsBackToLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	t.Setenv("S3_ACCESS_KEY", "")
	t.Setenv("S3_SECRET_KEY", "")
	cfg := testConfig(t, "")

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(&engine.Metadata{Title: "Song"}, nil)
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req engine.Request, _ engine.ProgressSink) (*engine.Result, error) {
			return artifactFor(t, req)
		})

	r := job.NewRunner(job.Deps{Config: cfg, Engine: eng, Settings: download.SettingsFromConfig(cfg)}, testLogger())
	res, err := r.Run(context.Background(), job.Job{
		URL:       songURL,
		Overrides: job.Overrides{Destinations: []storage.Destination{storage.DestinationS3}},
	})
	require.NoError(t, err)

	assert.True(t, res.OverallSuccess)
	assert.Equal(t, []string{"S3 not configured, falling back to local"}, res.Warnings)
	assert.Empty(t, res.Seals[0].Uploads)
}

func TestRunner_InscribeFailureIsIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	ins := inscribemocks.NewMockInscriber(ctrl)
	cfg := testConfig(t, "")

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(&engine.Metadata{Title: "Song"}, nil)
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req engine.Request, _ engine.ProgressSink) (*engine.Result, error) {
			return artifactFor(t, req)
		})
	ins.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("ffmpeg not installed"))

	r := job.NewRunner(job.Deps{Config: cfg, Engine: eng, Settings: download.SettingsFromConfig(cfg), Inscriber: ins}, testLogger())
	res, err := r.Run(context.Background(), job.Job{URL: songURL})
	require.NoError(t, err)
	assert.True(t, res.OverallSuccess)
}

func TestRunner_MetadataFailureNamesFromURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	cfg := testConfig(t, "")

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(nil, errors.New("HTTP Error 429"))
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req engine.Request, _ engine.ProgressSink) (*engine.Result, error) {
			assert.Equal(t, filepath.Join(cfg.Paths.OutputDir, "youtube", "abc123"), req.OutputStem)
			return artifactFor(t, req)
		})

	r := job.NewRunner(job.Deps{Config: cfg, Engine: eng, Settings: download.SettingsFromConfig(cfg)}, testLogger())
	res, err := r.Run(context.Background(), job.Job{URL: songURL})
	require.NoError(t, err)
	assert.True(t, res.OverallSuccess)
}

func TestRunner_InvalidURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	rec := &recorder{}

	r := job.NewRunner(job.Deps{Config: testConfig(t, ""), Engine: eng, Events: rec}, testLogger())
	for _, u := range []string{"", "youtube.com/watch?v=x", "ftp://host/file", "https://"} {
		_, err := r.Run(context.Background(), job.Job{URL: u})
		assert.ErrorIs(t, err, job.ErrInvalidURL, u)
	}
	assert.Equal(t, events.EventJobFailed, rec.types()[1])
}

func TestRunner_ConfigurationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)

	// A file where the output directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, writeFile(blocker))

	r := job.NewRunner(job.Deps{Config: testConfig(t, ""), Engine: eng}, testLogger())
	_, err := r.Run(context.Background(), job.Job{URL: songURL, OutputDir: filepath.Join(blocker, "out")})
	require.ErrorIs(t, err, job.ErrConfiguration)
}

func TestRunner_Interrupted(t *testing.T) {
	ctrl := gomock.NewController(t)
	eng := enginemocks.NewMockEngine(ctrl)
	cfg := testConfig(t, "[media.audio]\nenabled_formats = [\"mp3\", \"flac\"]\n")
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng.EXPECT().ExtractMetadata(gomock.Any(), gomock.Any()).Return(&engine.Metadata{Title: "Song"}, nil)
	eng.EXPECT().Download(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, engine.Request, engine.ProgressSink) (*engine.Result, error) {
			cancel()
			return nil, context.Canceled
		})

	r := job.NewRunner(job.Deps{Config: cfg, Engine: eng, Settings: download.SettingsFromConfig(cfg), Events: rec}, testLogger())
	_, err := r.Run(ctx, job.Job{URL: songURL})
	require.ErrorIs(t, err, download.ErrInterrupted)
	assert.Equal(t, []string{events.EventJobStarted, events.EventJobInterrupted}, rec.types())
}
