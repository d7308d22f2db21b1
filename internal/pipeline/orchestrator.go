// Package pipeline composes the workspace manager, transcoder, processing
// service client, registry and cache into the workbench's end-user
// operations: resolve and register a video, cut clips, run derived
// processing, and finalize a title.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jaki95/video-workbench/internal/cache"
	"github.com/jaki95/video-workbench/internal/domain"
	"github.com/jaki95/video-workbench/internal/procsvc"
	"github.com/jaki95/video-workbench/internal/registry"
	"github.com/jaki95/video-workbench/internal/resolver"
	"github.com/jaki95/video-workbench/internal/srt"
	"github.com/jaki95/video-workbench/internal/storage"
	"github.com/jaki95/video-workbench/internal/transcode"
	"github.com/jaki95/video-workbench/internal/workspace"
)

// Operation is a derived media-processing operation.
type Operation string

const (
	OpRemoveVocals     Operation = "vocal_remove"
	OpExtractSubtitles Operation = "extract_subtitle"
	OpEnhanceAudio     Operation = "enhance_audio"
)

// Fixed output names. Only one result of each kind is retained at a time;
// each run overwrites the previous one.
const (
	vocalRemovedStem  = "vocal_removed"
	subtitleFileName  = "subtitle.srt"
	enhancedVideoName = "video_enhanced.mp4"
)

var (
	ErrMissingOriginal  = fmt.Errorf("original video file missing")
	ErrNoArtifacts      = fmt.Errorf("no video file available for processing")
	ErrUnknownOperation = fmt.Errorf("unknown operation")
)

// Transcoder is the local encoder surface the orchestrator needs.
type Transcoder interface {
	ExtractAudio(ctx context.Context, videoPath, outDir string) (string, error)
	Remux(ctx context.Context, videoPath, audioPath, outputPath string) error
	Clip(ctx context.Context, videoPath string, start, end float64, outputPath string) error
}

// ProcessingClient is the remote processing service surface.
type ProcessingClient interface {
	Probe(ctx context.Context, service procsvc.Service) error
	RemoveVocals(ctx context.Context, payload io.Reader, filename string, format procsvc.OutputFormat) ([]byte, error)
	EnhanceAudio(ctx context.Context, payload io.Reader, filename string, format procsvc.OutputFormat) ([]byte, error)
	ExtractSubtitles(ctx context.Context, payload io.Reader, filename string, returnType procsvc.ReturnType, outputFilename string) (*procsvc.SubtitleResult, error)
}

// Orchestrator owns the per-title lifecycle and the derived-processing flow.
type Orchestrator struct {
	resolver   resolver.Resolver
	registry   *registry.Registry
	cache      *cache.Cache
	store      storage.ArtifactStore
	workspaces *workspace.Manager
	transcoder Transcoder
	services   ProcessingClient

	// outputFormat is the audio format requested from the audio services.
	outputFormat procsvc.OutputFormat
}

// New wires up an orchestrator. An empty outputFormat defaults to WAV.
func New(
	res resolver.Resolver,
	reg *registry.Registry,
	c *cache.Cache,
	store storage.ArtifactStore,
	workspaces *workspace.Manager,
	transcoder Transcoder,
	services ProcessingClient,
	outputFormat procsvc.OutputFormat,
) *Orchestrator {
	if outputFormat == "" {
		outputFormat = procsvc.FormatWAV
	}
	return &Orchestrator{
		resolver:     res,
		registry:     reg,
		cache:        c,
		store:        store,
		workspaces:   workspaces,
		transcoder:   transcoder,
		services:     services,
		outputFormat: outputFormat,
	}
}

// ResolveAndRegister resolves a video URL, registers the downloaded file
// under its sanitized title and caches the response keyed by the URL
// fingerprint. A cached response is returned without calling the resolver or
// re-registering; stale cache hits after an out-of-band finalization are a
// documented hazard of this fast path.
func (o *Orchestrator) ResolveAndRegister(ctx context.Context, url string) (cache.Entry, error) {
	fingerprint := cache.Fingerprint(url)
	if entry, ok := o.cache.Get(fingerprint); ok {
		slog.Debug("Cache hit for video URL", "url", url)
		return entry, nil
	}

	result, err := o.resolver.Resolve(ctx, url)
	if err != nil {
		return cache.Entry{}, err
	}

	if !o.store.FileExists(result.LocalPath) {
		return cache.Entry{}, fmt.Errorf("%w: %s", ErrMissingOriginal, result.LocalPath)
	}

	sanitized := domain.SanitizeTitle(result.Title)
	o.registry.Register(sanitized, result.LocalPath)

	entry := cache.Entry{
		Title:    result.Title,
		VideoURL: "/downloads/" + filepath.Base(result.LocalPath),
	}
	o.cache.Put(fingerprint, entry)

	slog.Info("Resolved and registered video", "title", result.Title, "path", result.LocalPath)
	return entry, nil
}

// CreateClip cuts the [start, end) range of the title's original video into a
// new segment file and records it in the registry. The clip file never
// silently survives a concurrent finalization: if the title disappeared while
// the encoder ran, the file is removed again and ErrUnknownTitle returned.
func (o *Orchestrator) CreateClip(ctx context.Context, title string, start, end float64) (string, error) {
	if err := transcode.ValidateRange(start, end); err != nil {
		return "", err
	}

	sanitized := domain.SanitizeTitle(title)
	originalPath, err := o.registry.OriginalPath(sanitized)
	if err != nil {
		return "", err
	}

	if !o.store.FileExists(originalPath) {
		return "", fmt.Errorf("%w: %s", ErrMissingOriginal, originalPath)
	}

	clipPath := o.store.SegmentPath(sanitized, start, end)
	if err := o.transcoder.Clip(ctx, originalPath, start, end, clipPath); err != nil {
		return "", err
	}

	if err := o.registry.AddSegment(sanitized, clipPath); err != nil {
		os.Remove(clipPath)
		return "", err
	}

	slog.Info("Created clip", "title", sanitized, "start", start, "end", end, "path", clipPath)
	return clipPath, nil
}

// ListSegments returns the title's recorded clips in creation order.
func (o *Orchestrator) ListSegments(title string) []domain.Segment {
	return o.registry.ListSegments(domain.SanitizeTitle(title))
}

// OriginalPath returns the registered original file path for the title.
func (o *Orchestrator) OriginalPath(title string) (string, error) {
	return o.registry.OriginalPath(domain.SanitizeTitle(title))
}

// Finalize discards the title's whole working set and invalidates every
// cache entry that references it. The cache is only touched after the
// registry finalization succeeded, so a failed (retryable) finalize keeps
// its cache entries too.
func (o *Orchestrator) Finalize(title string) error {
	sanitized := domain.SanitizeTitle(title)
	if err := o.registry.Finalize(sanitized); err != nil {
		return err
	}
	o.cache.InvalidateByTitle(sanitized)
	return nil
}

// LatestArtifact returns the most recently modified video file in the
// downloads directory. This is the explicit input-selection policy for
// derived operations: they always act on whatever was last produced, which
// is not necessarily the file a user named last.
func (o *Orchestrator) LatestArtifact() (string, error) {
	entries, err := os.ReadDir(o.store.DownloadDir())
	if err != nil {
		return "", fmt.Errorf("failed to scan downloads directory: %w", err)
	}

	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "."+domain.SegmentExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestTime) {
			newest = filepath.Join(o.store.DownloadDir(), entry.Name())
			newestTime = info.ModTime()
		}
	}

	if newest == "" {
		return "", ErrNoArtifacts
	}
	return newest, nil
}

// RunDerivedOperation runs one derived processing operation against the
// latest artifact: extract the audio track into a fresh workspace, submit it
// to the corresponding service, and write the fixed-name result. Enhancement
// additionally remuxes the processed audio back over the source video. The
// workspace is released on every exit path.
func (o *Orchestrator) RunDerivedOperation(ctx context.Context, op Operation) (string, error) {
	service, err := serviceFor(op)
	if err != nil {
		return "", err
	}

	input, err := o.LatestArtifact()
	if err != nil {
		return "", err
	}
	slog.Info("Selected latest artifact for processing", "operation", op, "input", input)

	if err := o.services.Probe(ctx, service); err != nil {
		return "", err
	}

	ws, err := o.workspaces.Acquire()
	if err != nil {
		return "", err
	}
	defer ws.Release()

	audioPath, err := o.transcoder.ExtractAudio(ctx, input, ws.Dir())
	if err != nil {
		return "", err
	}

	audio, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open extracted audio: %w", err)
	}
	defer audio.Close()

	var outputPath string
	switch op {
	case OpRemoveVocals:
		outputPath, err = o.removeVocals(ctx, audio, audioPath)
	case OpExtractSubtitles:
		outputPath, err = o.extractSubtitles(ctx, audio, audioPath)
	case OpEnhanceAudio:
		outputPath, err = o.enhanceAudio(ctx, audio, audioPath, input, ws)
	}
	if err != nil {
		return "", err
	}

	if err := o.store.Export(ctx, outputPath); err != nil {
		return "", err
	}

	slog.Info("Derived operation completed", "operation", op, "output", outputPath)
	return outputPath, nil
}

func (o *Orchestrator) removeVocals(ctx context.Context, audio io.Reader, audioName string) (string, error) {
	result, err := o.services.RemoveVocals(ctx, audio, filepath.Base(audioName), o.outputFormat)
	if err != nil {
		return "", err
	}

	outputPath := o.store.DerivedPath(vocalRemovedStem + "." + string(o.outputFormat))
	if err := os.WriteFile(outputPath, result, 0644); err != nil {
		return "", fmt.Errorf("failed to write accompaniment audio: %w", err)
	}
	return outputPath, nil
}

func (o *Orchestrator) extractSubtitles(ctx context.Context, audio io.Reader, audioName string) (string, error) {
	result, err := o.services.ExtractSubtitles(ctx, audio, filepath.Base(audioName), procsvc.ReturnText, subtitleFileName)
	if err != nil {
		return "", err
	}

	// Normalizing pins the on-disk format regardless of how the service
	// numbered or separated its cues.
	content, err := srt.Normalize(result.Content)
	if err != nil {
		return "", fmt.Errorf("service returned unusable subtitle text: %w", err)
	}

	outputPath := o.store.DerivedPath(subtitleFileName)
	if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}
	return outputPath, nil
}

func (o *Orchestrator) enhanceAudio(ctx context.Context, audio io.Reader, audioName, videoPath string, ws *workspace.Workspace) (string, error) {
	result, err := o.services.EnhanceAudio(ctx, audio, filepath.Base(audioName), o.outputFormat)
	if err != nil {
		return "", err
	}

	enhancedPath := ws.Path("enhanced_audio." + string(o.outputFormat))
	if err := os.WriteFile(enhancedPath, result, 0644); err != nil {
		return "", fmt.Errorf("failed to write enhanced audio: %w", err)
	}

	outputPath := o.store.DerivedPath(enhancedVideoName)
	if err := o.transcoder.Remux(ctx, videoPath, enhancedPath, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}

func serviceFor(op Operation) (procsvc.Service, error) {
	switch op {
	case OpRemoveVocals:
		return procsvc.VocalRemoval, nil
	case OpExtractSubtitles:
		return procsvc.SubtitleExtraction, nil
	case OpEnhanceAudio:
		return procsvc.AudioEnhancement, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}
