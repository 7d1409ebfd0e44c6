package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/vmunix/distill/internal/config"
	"github.com/vmunix/distill/internal/job"
	"github.com/vmunix/distill/internal/media"
	"github.com/vmunix/distill/internal/storage"
)

// videoDefault is the --video value used when the flag is given without a codec.
const videoDefault = "default"

// addJobFlags registers the per-run format and destination flags.
func addJobFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("video", "", "Download video in this container (bare --video uses media.video.format)")
	f.Lookup("video").NoOptDefVal = videoDefault
	f.Bool("flac", false, "Save 16kHz mono FLAC audio only")
	f.String("audio-format", "", "Save audio in this format only")
	f.Bool("local", false, "Keep artifacts locally")
	f.Bool("s3", false, "Upload artifacts to S3")
	f.Bool("gcp", false, "Upload artifacts to Google Cloud Storage")
}

// overridesFromFlags reads the job flags, validating codec names against the
// known lists.
func overridesFromFlags(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (job.Overrides, error) {
	f := cmd.Flags()
	video, _ := f.GetString("video")
	flac, _ := f.GetBool("flac")
	audio, _ := f.GetString("audio-format")

	if video == videoDefault {
		video = cfg.Media.Video.Format
	}
	if video != "" {
		if err := checkCodec(video, media.KindVideo); err != nil {
			return job.Overrides{}, err
		}
		if !cfg.Media.Video.Enabled {
			log.Warn("video is disabled in config (media.video.enabled), ignoring --video")
		}
	}
	if audio != "" {
		if err := checkCodec(audio, media.KindAudio); err != nil {
			return job.Overrides{}, err
		}
	}

	var dests []storage.Destination
	for _, d := range []storage.Destination{storage.DestinationLocal, storage.DestinationS3, storage.DestinationGCP} {
		if on, _ := f.GetBool(string(d)); on {
			dests = append(dests, d)
		}
	}

	return job.Overrides{
		Formats:      media.Overrides{VideoFormat: video, Flac: flac, AudioFormat: audio},
		Destinations: dests,
	}, nil
}

func checkCodec(name string, kind media.Kind) error {
	if media.ParseCodec(name).IsKnown(kind) {
		return nil
	}
	if s := media.SuggestCodec(name, kind); s != "" {
		return fmt.Errorf("unknown %s format %q (did you mean %q?)", kind, name, s)
	}
	return fmt.Errorf("unknown %s format %q", kind, name)
}
