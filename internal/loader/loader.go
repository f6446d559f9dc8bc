package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/goliatone/go-docgen/pkg/schema"
)

// ErrHTTPDisabled is returned for URL sources when no HTTP client is
// configured.
var ErrHTTPDisabled = errors.New("loader: http support disabled")

// Loader implements schema.Loader for file, fs.FS and URL sources. Inline
// sources carry their own payload and are rejected.
type Loader struct {
	files  fs.FS
	client *http.Client
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader. An injected client is copied so the request
// timeout can be applied without touching the caller's value.
func New(options schema.LoaderOptions) schema.Loader {
	l := &Loader{files: options.FileSystem}
	switch {
	case options.HTTPClient != nil:
		client := *options.HTTPClient
		if client.Timeout == 0 {
			client.Timeout = options.RequestTimeout
		}
		l.client = &client
	case options.AllowHTTPFallback:
		l.client = &http.Client{Timeout: options.RequestTimeout}
	}
	return l
}

// Load reads src and wraps the payload in a schema.Document.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil {
		return schema.Document{}, errors.New("loader: source is nil")
	}
	if src.Kind() == schema.SourceKindURL && l.client == nil {
		return schema.Document{}, ErrHTTPDisabled
	}
	if err := ctx.Err(); err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}

	data, err := l.read(ctx, src)
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}
	return schema.NewDocument(src, data)
}

func (l *Loader) read(ctx context.Context, src schema.Source) ([]byte, error) {
	location := src.Location()
	if location == "" {
		return nil, errors.New("location is required")
	}

	switch src.Kind() {
	case schema.SourceKindFile:
		return os.ReadFile(location)
	case schema.SourceKindFS:
		if l.files == nil {
			return nil, errors.New("no fs.FS configured")
		}
		return fs.ReadFile(l.files, location)
	case schema.SourceKindURL:
		return l.get(ctx, location)
	}
	return nil, fmt.Errorf("unsupported source kind %q", src.Kind())
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}
