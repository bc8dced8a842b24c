package playerdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/pmurley/afl-trade-bot/internal/cache"
)

// ErrNoSource is returned when no player database has been configured
var ErrNoSource = errors.New("no player pool source configured")

type format int

const (
	formatUnknown format = iota
	formatJSON
	formatCSV
	formatHTML
)

// Client loads the candidate player pool from a local file or an http(s) URL
type Client struct {
	source     string
	httpClient *http.Client
}

func NewClient(source string) *Client {
	return &Client{
		source: strings.TrimSpace(source),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Configured reports whether a source was given
func (c *Client) Configured() bool {
	return c.source != ""
}

func (c *Client) Source() string {
	return c.source
}

// LoadInitialData loads the pool and stores it in the cache
func (c *Client) LoadInitialData(ctx context.Context, cache *cache.Cache) (*Result, error) {
	result, err := c.LoadPool(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load player pool: %w", err)
	}

	cache.SetPool(result.Players)
	return result, nil
}

// LoadPool fetches and decodes the configured source
func (c *Client) LoadPool(ctx context.Context) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNoSource
	}

	if isRemote(c.source) {
		return c.loadURL(ctx)
	}
	return c.loadFile()
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (c *Client) loadFile() (*Result, error) {
	f, err := os.Open(c.source)
	if err != nil {
		return nil, fmt.Errorf("opening player database: %w", err)
	}
	defer f.Close()

	return decode(formatFromPath(c.source), f)
}

func (c *Client) loadURL(ctx context.Context) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.source, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/csv, text/html;q=0.9, */*;q=0.5")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	f := formatUnknown
	if u, err := url.Parse(c.source); err == nil {
		f = formatFromPath(u.Path)
	}
	if f == formatUnknown {
		f = formatFromContentType(resp.Header.Get("Content-Type"))
	}
	return decode(f, resp.Body)
}

func decode(f format, body io.Reader) (*Result, error) {
	switch f {
	case formatJSON:
		return ParseJSON(body)
	case formatCSV:
		return ParseCSV(body)
	case formatHTML:
		return ParseHTML(body)
	default:
		return nil, fmt.Errorf("unsupported player database format")
	}
}

func formatFromPath(p string) format {
	switch strings.ToLower(path.Ext(p)) {
	case ".json":
		return formatJSON
	case ".csv":
		return formatCSV
	case ".html", ".htm":
		return formatHTML
	}
	return formatUnknown
}

func formatFromContentType(ct string) format {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return formatUnknown
	}
	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return formatJSON
	case mediaType == "text/csv":
		return formatCSV
	case mediaType == "text/html":
		return formatHTML
	}
	return formatUnknown
}
