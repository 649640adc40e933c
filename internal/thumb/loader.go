// Package thumb reads image files into embeddable data URLs.
package thumb

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vincent-petithory/dataurl"

	"github.com/chmdznr/oss-file-organizer/internal/source"
)

// ErrTooLarge is returned for files above the configured size limit
var ErrTooLarge = errors.New("file too large for a thumbnail")

// ErrInvalidDataURL is returned when decoding malformed thumbnail data
var ErrInvalidDataURL = errors.New("invalid data URL")

// Result is the outcome of reading one file. Thumb is empty when Err is set.
type Result struct {
	Thumb string
	Err   error
}

// Observer receives progress events. Done may be called from several
// goroutines at once.
type Observer interface {
	Start(total int)
	Done(name string, err error)
	Finish()
}

// LoaderConfig holds configuration for the loader
type LoaderConfig struct {
	NumWorkers int
	MaxBytes   int64 // zero or negative disables the limit
}

// DefaultLoaderConfig returns default loader configuration
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		NumWorkers: 16,
		MaxBytes:   20 << 20,
	}
}

// Loader reads files concurrently with a bounded worker pool
type Loader struct {
	numWorkers int
	maxBytes   int64
	observer   Observer
}

// NewLoader creates a loader. A nil config uses the defaults, a nil observer
// disables progress reporting.
func NewLoader(config *LoaderConfig, observer Observer) *Loader {
	if config == nil {
		defaultConfig := DefaultLoaderConfig()
		config = &defaultConfig
	}
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Loader{
		numWorkers: numWorkers,
		maxBytes:   config.MaxBytes,
		observer:   observer,
	}
}

// Load reads every file and returns one result per input, in input order.
// It returns only after all reads have settled; a failed read never affects
// the others.
func (l *Loader) Load(files []source.File) []Result {
	results := make([]Result, len(files))
	if len(files) == 0 {
		return results
	}

	if l.observer != nil {
		l.observer.Start(len(files))
		defer l.observer.Finish()
	}

	jobs := make(chan int, l.numWorkers)
	workers := min(l.numWorkers, len(files))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				f := files[idx]
				thumb, err := l.read(f)
				if err != nil {
					slog.Warn("thumbnail read failed", "name", f.Name(), "error", err)
				}
				results[idx] = Result{Thumb: thumb, Err: err}
				if l.observer != nil {
					l.observer.Done(f.Name(), err)
				}
			}
		}()
	}

	for idx := range files {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}

func (l *Loader) read(f source.File) (string, error) {
	if l.maxBytes > 0 && f.Size() > l.maxBytes {
		return "", fmt.Errorf("%s: %w", f.Name(), ErrTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if l.maxBytes > 0 {
		r = io.LimitReader(rc, l.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", f.Name(), err)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return "", fmt.Errorf("%s: %w", f.Name(), ErrTooLarge)
	}

	return DataURL(f.Type(), data), nil
}

// DataURL encodes data as a base64 data URL
func DataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode splits a base64 data URL into its MIME type and bytes
func Decode(s string) (string, []byte, error) {
	du, err := dataurl.DecodeString(s)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidDataURL, err)
	}
	if du.Encoding != dataurl.EncodingBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURL)
	}
	return du.ContentType(), du.Data, nil
}
