// Package transcode wraps the external FFmpeg encoder for the three local
// media operations the workbench needs: demuxing a video's audio track,
// remuxing a processed audio track back into a video container, and cutting
// time-bounded clips.
package transcode

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/jaki95/video-workbench/internal/domain"
)

// Fixed encoding parameters. The extracted track is 16-bit PCM at 44.1 kHz
// stereo, which is what the processing services expect; remuxed audio is
// re-encoded to AAC at a fixed bitrate.
const (
	extractedAudioName = "extracted_audio.wav"
	remuxAudioBitrate  = "192k"
)

var (
	ErrInvalidRange = fmt.Errorf("invalid clip range")
	ErrFileNotFound = fmt.Errorf("file not found")
	ErrFileEmpty    = fmt.Errorf("file is empty")
	ErrInvalidPath  = fmt.Errorf("invalid path")
)

// TranscodeError wraps an FFmpeg invocation failure with the command line and
// its captured diagnostic output.
type TranscodeError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("ffmpeg error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *TranscodeError) Unwrap() error {
	return e.wrapped
}

// Output returns the encoder's captured stdout/stderr.
func (e *TranscodeError) Output() string {
	return e.output
}

// newTranscodeError creates a TranscodeError with a truncated command string.
func newTranscodeError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	return &TranscodeError{
		cmd:     cmdStr,
		output:  string(output),
		wrapped: err,
	}
}

type ffmpeg struct{}

// NewFFMPEGEngine returns a transcoder backed by the ffmpeg binary on PATH.
func NewFFMPEGEngine() *ffmpeg {
	return &ffmpeg{}
}

func (f *ffmpeg) validateFile(path string) error {
	fileInfo, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("unable to access file: %s: %w", path, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrFileEmpty, path)
	}

	return nil
}

func (f *ffmpeg) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newTranscodeError(cmd, output, err)
	}
	return nil
}

// ExtractAudio demuxes and decodes videoPath's audio track into outDir as
// 16-bit PCM WAV and returns the written path. The expected output file must
// exist afterwards; a successful exit without it is still a failure.
func (f *ffmpeg) ExtractAudio(ctx context.Context, videoPath, outDir string) (string, error) {
	slog.Debug("Extracting audio track", "input", videoPath, "outDir", outDir)

	if err := f.validateFile(videoPath); err != nil {
		return "", fmt.Errorf("audio extraction failed: %w", err)
	}

	audioPath := filepath.Join(outDir, extractedAudioName)

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "44100",
		"-ac", "2",
		"-sn",
		"-dn",
		"-map_metadata", "-1",
		audioPath,
	}

	if err := f.run(ctx, args); err != nil {
		return "", err
	}

	if _, err := os.Stat(audioPath); err != nil {
		return "", fmt.Errorf("audio extraction produced no output: %w", err)
	}

	return audioPath, nil
}

// Remux produces a new container at outputPath that copies the video stream
// of videoPath unmodified and replaces its audio with audioPath, re-encoded
// to AAC and trimmed to the shorter of the two inputs. On failure any partial
// output file is undefined and must not be trusted.
func (f *ffmpeg) Remux(ctx context.Context, videoPath, audioPath, outputPath string) error {
	slog.Debug("Remuxing audio into video", "video", videoPath, "audio", audioPath, "output", outputPath)

	if err := f.validateFile(videoPath); err != nil {
		return fmt.Errorf("remux failed: %w", err)
	}
	if err := f.validateFile(audioPath); err != nil {
		return fmt.Errorf("remux failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", remuxAudioBitrate,
		"-map", "0:v",
		"-map", "1:a",
		"-shortest",
		outputPath,
	}

	if err := f.run(ctx, args); err != nil {
		return err
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("remux produced no output: %w", err)
	}

	return nil
}

// Clip cuts the [start, end) range of videoPath into outputPath. The range is
// validated before the encoder is invoked; the frame rate is inherited from
// the source.
func (f *ffmpeg) Clip(ctx context.Context, videoPath string, start, end float64, outputPath string) error {
	if err := ValidateRange(start, end); err != nil {
		return err
	}

	slog.Debug("Cutting clip",
		"input", videoPath,
		"output", outputPath,
		"start", domain.FormatSeconds(start),
		"end", domain.FormatSeconds(end),
	)

	if err := f.validateFile(videoPath); err != nil {
		return fmt.Errorf("clip extraction failed: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	args := []string{
		"-y",
		"-ss", domain.FormatSeconds(start),
		"-to", domain.FormatSeconds(end),
		"-i", videoPath,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "ultrafast",
		outputPath,
	}

	if err := f.run(ctx, args); err != nil {
		return err
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("clip extraction produced no output: %w", err)
	}

	return nil
}

// ValidateRange rejects clip ranges before any encoder work: start must be a
// finite non-negative number and end must be strictly greater.
func ValidateRange(start, end float64) error {
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return fmt.Errorf("%w: start and end must be finite", ErrInvalidRange)
	}
	if start < 0 {
		return fmt.Errorf("%w: start %s is negative", ErrInvalidRange, domain.FormatSeconds(start))
	}
	if end <= start {
		return fmt.Errorf("%w: end %s must be greater than start %s",
			ErrInvalidRange, domain.FormatSeconds(end), domain.FormatSeconds(start))
	}
	return nil
}
