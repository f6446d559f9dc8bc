package schema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader reads the bytes behind a Source. internal/loader provides the
// implementation used by the CLI and the orchestrator.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions selects which sources a Loader may read. URL sources are
// refused unless HTTPClient is set or AllowHTTPFallback is true.
type LoaderOptions struct {
	FileSystem        fs.FS
	HTTPClient        *http.Client
	AllowHTTPFallback bool
	// RequestTimeout bounds remote fetches. Zero keeps the client's own
	// timeout.
	RequestTimeout time.Duration
}

type LoaderOption func(*LoaderOptions)

// WithFileSystem resolves SourceFromFS names against files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(o *LoaderOptions) { o.FileSystem = files }
}

func WithHTTPClient(client *http.Client) LoaderOption {
	return func(o *LoaderOptions) { o.HTTPClient = client }
}

// WithHTTPFallback allows URL sources even without an injected client and
// sets the request timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(o *LoaderOptions) {
		o.AllowHTTPFallback = true
		o.RequestTimeout = timeout
	}
}

func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	var out LoaderOptions
	for _, apply := range options {
		if apply != nil {
			apply(&out)
		}
	}
	return out
}
