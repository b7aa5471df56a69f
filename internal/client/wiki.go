package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"factorio/wiki/internal/config"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

type WikiClient interface {
	FetchPage(ctx context.Context, url string) (*goquery.Document, error)
	EnsureAsset(ctx context.Context, url, destination string) (bool, error)
	IndexURL() string
	ItemURL(ref string) string
	AssetURL(pagePath string) string
}

type Option func(*wikiClient)

// WithTransport replaces the HTTP transport, mostly for tests.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *wikiClient) {
		c.httpClient.SetTransport(transport)
	}
}

type wikiClient struct {
	rl         ratelimit.Limiter
	baseURL    string
	httpClient *resty.Client
	logger     log.FieldLogger
}

func NewWikiClient(cfg config.WikiConfig, logger log.FieldLogger, opts ...Option) WikiClient {
	client := resty.New().
		SetRetryCount(0).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")

	if cfg.Timeout > 0 {
		client.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	}

	if cfg.Proxy != "" {
		client.SetProxy(cfg.Proxy)
		logger.Infof("🔗 Using proxy: %s", redactURL(cfg.Proxy))
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	c := &wikiClient{
		rl:         rl,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: client,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// redactURL hides userinfo credentials so proxy URLs can be logged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

func (c *wikiClient) IndexURL() string {
	return c.baseURL + "/Items"
}

func (c *wikiClient) ItemURL(ref string) string {
	return c.resolve(ref)
}

func (c *wikiClient) AssetURL(pagePath string) string {
	return c.resolve(pagePath)
}

func (c *wikiClient) resolve(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	if !strings.HasPrefix(ref, "/") {
		ref = "/" + ref
	}
	return c.baseURL + ref
}

// FetchPage issues a single GET and parses the body as HTML.
func (c *wikiClient) FetchPage(ctx context.Context, url string) (*goquery.Document, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &FetchError{URL: url, Status: resp.StatusCode()}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}

	c.logger.Debugf("Fetched %s", url)
	return doc, nil
}

// EnsureAsset downloads url to destination unless the file already exists.
// Existing files are trusted as-is. The body is written to a temporary file
// and renamed into place once fully copied, so destination never holds a
// partial download. It reports whether a download happened.
func (c *wikiClient) EnsureAsset(ctx context.Context, url, destination string) (bool, error) {
	if _, err := os.Stat(destination); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("failed to stat %s: %w", destination, err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return false, fmt.Errorf("failed to create image directory: %w", err)
	}

	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return false, &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if !resp.IsSuccess() {
		return false, &FetchError{URL: url, Status: resp.StatusCode()}
	}

	partial := destination + ".part"
	out, err := os.Create(partial)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", partial, err)
	}

	written, copyErr := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(partial)
		if copyErr != nil {
			return false, &FetchError{URL: url, Status: resp.StatusCode(), Err: copyErr}
		}
		return false, fmt.Errorf("failed to close %s: %w", partial, closeErr)
	}

	if err := os.Rename(partial, destination); err != nil {
		_ = os.Remove(partial)
		return false, fmt.Errorf("failed to move download into place: %w", err)
	}

	c.logger.Debugf("Downloaded %s (%d bytes) to %s", url, written, destination)
	return true, nil
}
