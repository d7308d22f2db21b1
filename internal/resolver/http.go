package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jaki95/video-workbench/internal/domain"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

	// Long timeout: large video files over slow links.
	downloadTimeout = 30 * time.Minute
)

// HTTPResolver resolves direct media URLs and simple HTML video pages. For a
// page it extracts the title and the og:video (or <video src>) media URL,
// then downloads the media into the downloads directory under the sanitized
// title.
type HTTPResolver struct {
	client      *http.Client
	downloadDir string
	userAgent   string
}

// NewHTTPResolver creates a resolver downloading into downloadDir. An empty
// userAgent falls back to a browser-like default, which many video hosts
// require.
func NewHTTPResolver(downloadDir, userAgent string) *HTTPResolver {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPResolver{
		client:      &http.Client{Timeout: downloadTimeout},
		downloadDir: downloadDir,
		userAgent:   userAgent,
	}
}

// Resolve fetches the URL. HTML responses are treated as a video page: the
// title and media URL are extracted and the media is downloaded. Anything
// else is treated as the media itself, with the title derived from the URL
// path.
func (r *HTTPResolver) Resolve(ctx context.Context, rawURL string) (*Result, error) {
	resp, err := r.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		title, mediaURL, err := r.parseVideoPage(resp.Body, rawURL)
		if err != nil {
			return nil, err
		}
		return r.download(ctx, title, mediaURL)
	}

	title := titleFromURL(rawURL)
	localPath, err := r.save(title, resp.Body)
	if err != nil {
		return nil, err
	}
	return &Result{Title: title, LocalPath: localPath}, nil
}

func (r *HTTPResolver) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrResolution, resp.StatusCode, rawURL)
	}
	return resp, nil
}

// parseVideoPage extracts the page title and the media URL from an HTML
// document. og: metadata wins over document elements.
func (r *HTTPResolver) parseVideoPage(body io.Reader, pageURL string) (title, mediaURL string, err error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", "", fmt.Errorf("%w: parsing page: %v", ErrResolution, err)
	}

	if content, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		title = content
	} else {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	if title == "" {
		return "", "", fmt.Errorf("%w: page has no title", ErrResolution)
	}

	if content, ok := doc.Find(`meta[property="og:video"]`).Attr("content"); ok {
		mediaURL = content
	} else if src, ok := doc.Find("video source").First().Attr("src"); ok {
		mediaURL = src
	} else if src, ok := doc.Find("video").First().Attr("src"); ok {
		mediaURL = src
	}
	if mediaURL == "" {
		return "", "", fmt.Errorf("%w: page has no video source", ErrResolution)
	}

	resolved, err := resolveReference(pageURL, mediaURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrResolution, err)
	}

	return title, resolved, nil
}

func (r *HTTPResolver) download(ctx context.Context, title, mediaURL string) (*Result, error) {
	slog.Info("Downloading video", "title", title, "url", mediaURL)

	resp, err := r.get(ctx, mediaURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	localPath, err := r.save(title, resp.Body)
	if err != nil {
		return nil, err
	}
	return &Result{Title: title, LocalPath: localPath}, nil
}

// save streams the media body to downloadDir/{sanitizedTitle}.mp4.
func (r *HTTPResolver) save(title string, body io.Reader) (string, error) {
	if err := os.MkdirAll(r.downloadDir, 0755); err != nil {
		return "", fmt.Errorf("%w: creating download directory: %v", ErrResolution, err)
	}

	filename := domain.SanitizeTitle(title) + "." + domain.SegmentExtension
	localPath := filepath.Join(r.downloadDir, filename)

	out, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("%w: creating output file: %v", ErrResolution, err)
	}
	defer out.Close()

	written, err := io.Copy(out, body)
	if err != nil {
		os.Remove(localPath)
		return "", fmt.Errorf("%w: saving video: %v", ErrResolution, err)
	}
	if written == 0 {
		os.Remove(localPath)
		return "", fmt.Errorf("%w: downloaded file is empty", ErrResolution)
	}

	slog.Info("Downloaded video file", "path", localPath, "size", written)
	return localPath, nil
}

func titleFromURL(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		name := filepath.Base(u.Path)
		if ext := filepath.Ext(name); ext != "" {
			name = strings.TrimSuffix(name, ext)
		}
		if name != "" && name != "." && name != "/" {
			return name
		}
	}
	return "video"
}

func resolveReference(baseURL, ref string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(refURL).String(), nil
}
