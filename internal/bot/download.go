package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tbourn/lawdesk/internal/forms"
)

// ErrDownload reports that a Telegram file could not be transferred.
var ErrDownload = errors.New("download failed")

// Fetcher stores the Telegram file fileID at dst, reading at most maxSize
// bytes. It returns the number of bytes written.
type Fetcher interface {
	Fetch(ctx context.Context, fileID, dst string, maxSize int64) (int64, error)
}

// FileURLResolver turns a file id into a download URL.
type FileURLResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// Downloader fetches files through the Bot API file endpoint.
type Downloader struct {
	Files  FileURLResolver
	Client *http.Client
}

// NewDownloader returns a Downloader with a 60 second HTTP timeout.
func NewDownloader(files FileURLResolver) *Downloader {
	return &Downloader{Files: files, Client: &http.Client{Timeout: 60 * time.Second}}
}

// Fetch implements Fetcher. The file is created exclusively and removed
// again on any failure, including a body larger than maxSize.
func (d *Downloader) Fetch(ctx context.Context, fileID, dst string, maxSize int64) (n int64, err error) {
	link, err := d.Files.GetFileDirectURL(fileID)
	if err != nil {
		return 0, fmt.Errorf("%w: resolve file: %v", ErrDownload, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, redactURL(err))
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, redactURL(err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrDownload, resp.StatusCode)
	}
	if maxSize <= 0 {
		maxSize = forms.DefaultMaxFileSize
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return 0, err
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(dst)
		}
	}()

	n, err = io.Copy(f, io.LimitReader(resp.Body, maxSize+1))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if n > maxSize {
		err = forms.ErrFileTooLarge
		return 0, err
	}
	if err = f.Close(); err != nil {
		return 0, err
	}
	return n, nil
}

// redactURL drops the request URL, which embeds the bot token, from
// transport errors.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}

// uniquePath returns dst, or dst with a numeric suffix before the extension
// when a file with that name already exists.
func uniquePath(dst string) string {
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		return dst
	}
	ext := filepath.Ext(dst)
	base := strings.TrimSuffix(dst, ext)
	for i := 2; ; i++ {
		p := fmt.Sprintf("%s_%d%s", base, i, ext)
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return p
		}
	}
}
