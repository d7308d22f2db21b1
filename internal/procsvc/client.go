// Package procsvc is the client for the family of remote media-transform
// services: vocal removal, subtitle extraction and audio enhancement. Each
// service is stateless, addressed by a fixed base URL, and accepts a single
// multipart audio payload plus an output-format parameter.
package procsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

// Service identifies one of the remote processing services.
type Service string

const (
	VocalRemoval       Service = "vocal_removal"
	SubtitleExtraction Service = "subtitle_extraction"
	AudioEnhancement   Service = "audio_enhancement"
)

// OutputFormat is the audio container requested from an audio service.
type OutputFormat string

const (
	FormatWAV  OutputFormat = "wav"
	FormatFLAC OutputFormat = "flac"
	FormatOGG  OutputFormat = "ogg"
)

// ReturnType selects how the subtitle service returns its result.
type ReturnType string

const (
	ReturnText ReturnType = "text"
	ReturnFile ReturnType = "file"
)

const defaultTimeout = 5 * time.Minute

var (
	ErrUnavailable       = fmt.Errorf("processing service unavailable")
	ErrInvalidFormat     = fmt.Errorf("invalid output format")
	ErrInvalidReturnType = fmt.Errorf("invalid return type")
	ErrUnknownService    = fmt.Errorf("unknown service")
)

// ServiceError is a non-2xx response from a reachable service.
type ServiceError struct {
	Service Service
	Status  int
	Body    string
}

func (e *ServiceError) Error() string {
	body := e.Body
	if len(body) > 500 {
		body = body[:500] + "..."
	}
	return fmt.Sprintf("%s service failed: HTTP %d - %s", e.Service, e.Status, body)
}

// Endpoints holds the base URLs of the three services.
type Endpoints struct {
	VocalRemoval       string
	SubtitleExtraction string
	AudioEnhancement   string
}

// DefaultEndpoints matches the standard local deployment of the services.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		VocalRemoval:       "http://localhost:9093",
		SubtitleExtraction: "http://localhost:9091",
		AudioEnhancement:   "http://localhost:9092",
	}
}

// route describes where a service listens for probes and submissions.
type route struct {
	probePath  string
	submitPath string
}

var routes = map[Service]route{
	VocalRemoval:       {probePath: "/", submitPath: "/remove"},
	SubtitleExtraction: {probePath: "/health", submitPath: "/extract"},
	AudioEnhancement:   {probePath: "/", submitPath: "/enhance"},
}

// SubtitleResult is the subtitle service's text-mode response.
type SubtitleResult struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Client talks to the processing services over HTTP. All calls are
// synchronous, bounded by the configured timeout, and never retried: a
// failure is terminal for the request that triggered it.
type Client struct {
	endpoints  Endpoints
	httpClient *http.Client
}

// NewClient creates a client with the given endpoints and per-request
// timeout. A non-positive timeout falls back to the default.
func NewClient(endpoints Endpoints, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) baseURL(service Service) (string, error) {
	switch service {
	case VocalRemoval:
		return c.endpoints.VocalRemoval, nil
	case SubtitleExtraction:
		return c.endpoints.SubtitleExtraction, nil
	case AudioEnhancement:
		return c.endpoints.AudioEnhancement, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownService, service)
	}
}

// Probe checks whether a service is up. Unreachable services are a normal,
// expected outcome (the service may simply not be started) and are reported
// as ErrUnavailable rather than a transport-level fault.
func (c *Client) Probe(ctx context.Context, service Service) error {
	base, err := c.baseURL(service)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+routes[service].probePath, nil)
	if err != nil {
		return fmt.Errorf("failed to create probe request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, service, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s health check returned HTTP %d", ErrUnavailable, service, resp.StatusCode)
	}

	return nil
}

// ValidFormat reports whether format is one of the supported audio formats.
func ValidFormat(format OutputFormat) bool {
	switch format {
	case FormatWAV, FormatFLAC, FormatOGG:
		return true
	default:
		return false
	}
}

// RemoveVocals uploads an audio payload to the vocal-removal service and
// returns the accompaniment track as raw bytes in the requested format. The
// format is validated before any network I/O.
func (c *Client) RemoveVocals(ctx context.Context, payload io.Reader, filename string, format OutputFormat) ([]byte, error) {
	return c.submitAudio(ctx, VocalRemoval, payload, filename, format)
}

// EnhanceAudio uploads an audio payload to the enhancement service and
// returns the enhanced track as raw bytes in the requested format.
func (c *Client) EnhanceAudio(ctx context.Context, payload io.Reader, filename string, format OutputFormat) ([]byte, error) {
	return c.submitAudio(ctx, AudioEnhancement, payload, filename, format)
}

func (c *Client) submitAudio(ctx context.Context, service Service, payload io.Reader, filename string, format OutputFormat) ([]byte, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("%w: %q (supported: wav, flac, ogg)", ErrInvalidFormat, format)
	}

	query := map[string]string{"output_format": string(format)}
	return c.submit(ctx, service, payload, filename, query)
}

// ExtractSubtitles uploads an audio or video payload to the subtitle service.
// Text mode returns the parsed {filename, content} response; file mode
// returns the raw SRT stream in Content. A non-empty outputFilename asks the
// service to name its result accordingly.
func (c *Client) ExtractSubtitles(ctx context.Context, payload io.Reader, filename string, returnType ReturnType, outputFilename string) (*SubtitleResult, error) {
	if returnType != ReturnText && returnType != ReturnFile {
		return nil, fmt.Errorf("%w: %q (supported: text, file)", ErrInvalidReturnType, returnType)
	}

	query := map[string]string{"return_type": string(returnType)}
	if outputFilename != "" {
		query["output_filename"] = outputFilename
	}
	body, err := c.submit(ctx, SubtitleExtraction, payload, filename, query)
	if err != nil {
		return nil, err
	}

	if returnType == ReturnFile {
		return &SubtitleResult{Filename: filename, Content: string(body)}, nil
	}

	var result SubtitleResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode subtitle response: %w", err)
	}
	return &result, nil
}

// submit uploads a multipart payload and synchronously reads the full
// response body. Connection failures and timeouts map to ErrUnavailable;
// non-2xx responses map to ServiceError.
func (c *Client) submit(ctx context.Context, service Service, payload io.Reader, filename string, query map[string]string) ([]byte, error) {
	base, err := c.baseURL(service)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("audio_file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create multipart payload: %w", err)
	}
	if _, err := io.Copy(part, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+routes[service].submitPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	q := req.URL.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	req.URL.RawQuery = q.Encode()

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, service, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading response: %v", ErrUnavailable, service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{Service: service, Status: resp.StatusCode, Body: string(body)}
	}

	slog.Info("Processing service call completed",
		"service", service,
		"elapsed", time.Since(start).Round(time.Millisecond),
		"responseBytes", len(body),
	)

	return body, nil
}
