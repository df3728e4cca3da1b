package export

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

// Image is a raster image in a format the PDF writer can embed.
type Image struct {
	Data []byte
	Type string // PNG, JPG or GIF
}

// LogoFetcher supplies the organization logo printed on exported documents.
type LogoFetcher interface {
	Logo(ctx context.Context) (Image, error)
}

var errUnsupportedLogo = errors.New("unsupported logo content type")

// HTTPLogoFetcher downloads the logo once and keeps it for later exports.
// Failed downloads are not cached.
type HTTPLogoFetcher struct {
	client *resty.Client
	url    string

	mu     sync.Mutex
	cached *Image
}

func NewHTTPLogoFetcher(url string, timeout time.Duration) *HTTPLogoFetcher {
	return &HTTPLogoFetcher{
		client: resty.New().SetTimeout(timeout),
		url:    url,
	}
}

func (f *HTTPLogoFetcher) Logo(ctx context.Context) (Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cached != nil {
		return *f.cached, nil
	}

	resp, err := f.client.R().SetContext(ctx).Get(f.url)
	if err != nil {
		return Image{}, fmt.Errorf("fetch logo: %w", err)
	}
	if resp.IsError() {
		return Image{}, fmt.Errorf("fetch logo: status %d", resp.StatusCode())
	}
	typ, err := imageType(resp.Header().Get("Content-Type"))
	if err != nil {
		return Image{}, err
	}
	img := Image{Data: resp.Body(), Type: typ}
	f.cached = &img
	return img, nil
}

func imageType(contentType string) (string, error) {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", errUnsupportedLogo, contentType)
	}
	switch mt {
	case "image/png":
		return "PNG", nil
	case "image/jpeg":
		return "JPG", nil
	case "image/gif":
		return "GIF", nil
	}
	return "", fmt.Errorf("%w: %s", errUnsupportedLogo, mt)
}
