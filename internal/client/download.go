package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

const fallbackFilename = "sales_report.csv"

// Downloader is a dashboard.Navigator that saves the navigation target to a directory.
type Downloader struct {
	client *Client
	dir    string

	mu   sync.Mutex
	last string
}

// NewDownloader creates a downloader writing into dir.
func NewDownloader(c *Client, dir string) *Downloader {
	return &Downloader{client: c, dir: dir}
}

// Navigate fetches target and stores the body under the attachment filename.
func (d *Downloader) Navigate(ctx context.Context, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.client.URL(target), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := d.client.http.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("download: %w", err)
	}

	if err := os.MkdirAll(d.dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(d.dir, attachmentName(resp.Header.Get("Content-Disposition")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}

	d.mu.Lock()
	d.last = path
	d.mu.Unlock()
	return nil
}

// LastFile returns the path of the most recent download.
func (d *Downloader) LastFile() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// attachmentName extracts a safe base filename from a Content-Disposition header.
func attachmentName(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallbackFilename
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == "/" || name == "" {
		return fallbackFilename
	}
	return name
}
