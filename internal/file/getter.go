package file

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-getter"
	"github.com/wagoodman/go-progress"
)

type Getter interface {
	// GetFile downloads the given URL into the given path. The URL must reference a single file.
	GetFile(ctx context.Context, dst, src string, monitor ...*progress.Manual) error
}

type HashiGoGetter struct {
	httpGetter getter.HttpGetter
}

// NewGetter creates and returns a new Getter. Providing an http.Client is optional. If one is provided,
// it will be used for all HTTP(S) getting; otherwise, go-getter's default getters will be used.
func NewGetter(userAgent string, httpClient *http.Client) *HashiGoGetter {
	return &HashiGoGetter{
		httpGetter: getter.HttpGetter{
			Client: httpClient,
			Header: http.Header{
				"User-Agent": []string{userAgent},
			},
		},
	}
}

func (g HashiGoGetter) GetFile(ctx context.Context, dst, src string, monitors ...*progress.Manual) error {
	if len(monitors) > 1 {
		return fmt.Errorf("multiple monitors provided, which is not allowed")
	}

	return getterClient(ctx, dst, src, g.httpGetter, monitors).Get()
}

func getterClient(ctx context.Context, dst, src string, httpGetter getter.HttpGetter, monitors []*progress.Manual) *getter.Client {
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Mode: getter.ClientModeFile,
		Getters: map[string]getter.Getter{
			"http":  &httpGetter,
			"https": &httpGetter,
			"file":  new(getter.FileGetter),
			"gcs":   new(getter.GCSGetter),
			"s3":    new(getter.S3Getter),
		},
		// an APK is itself a zip archive and must never be unpacked on download
		Decompressors: map[string]getter.Decompressor{},
		Options:       mapToGetterClientOptions(monitors),
	}

	return client
}

func withProgress(monitor *progress.Manual) func(client *getter.Client) error {
	return getter.WithProgress(
		&progressAdapter{monitor: monitor},
	)
}

func mapToGetterClientOptions(monitors []*progress.Manual) []getter.ClientOption {
	var result []getter.ClientOption

	for _, monitor := range monitors {
		result = append(result, withProgress(monitor))
	}

	return result
}

type readCloser struct {
	progress.Reader
}

func (c *readCloser) Close() error { return nil }

type progressAdapter struct {
	monitor *progress.Manual
}

func (a *progressAdapter) TrackProgress(_ string, currentSize, totalSize int64, stream io.ReadCloser) io.ReadCloser {
	a.monitor.Set(currentSize)
	a.monitor.SetTotal(totalSize)
	return &readCloser{
		Reader: *progress.NewProxyReader(stream, a.monitor),
	}
}
