// Package download streams resolved media to local files.
// Output paths are validated against directory traversal and files are
// written to a temp file that is only renamed into place once complete.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"teraview/internal/httputil"
)

// ProgressFunc receives the bytes written so far and the expected total,
// which is -1 when the server did not send a length.
type ProgressFunc func(written, total int64)

// Downloader fetches direct media URLs to disk.
type Downloader struct {
	client *http.Client
	logger *zap.Logger
}

// New creates a Downloader. A nil client uses httputil.NewStreamClient.
func New(client *http.Client, logger *zap.Logger) *Downloader {
	if client == nil {
		client = httputil.NewStreamClient()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Downloader{client: client, logger: logger}
}

// Download fetches rawURL into outputDir/filename and returns the final path.
// Partial files are removed on failure.
func (d *Downloader) Download(ctx context.Context, rawURL, outputDir, filename string, progress ProgressFunc) (string, error) {
	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	outputPath, err := httputil.SafeDownloadPath(absDir, filename)
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	resp, err := httputil.GetStream(ctx, d.client, rawURL)
	if err != nil {
		return "", fmt.Errorf("fetching media: %w", err)
	}
	defer resp.Body.Close()

	tmpFile, err := os.CreateTemp(absDir, ".teraview-*.part")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	d.logger.Info("downloading",
		zap.String("path", outputPath),
		zap.Int64("size", resp.ContentLength),
	)

	var dst io.Writer = tmpFile
	if progress != nil {
		dst = &progressWriter{w: tmpFile, total: resp.ContentLength, fn: progress}
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing media: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming download: %w", err)
	}

	return outputPath, nil
}

type progressWriter struct {
	w       io.Writer
	written int64
	total   int64
	fn      ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	p.written += int64(n)
	p.fn(p.written, p.total)
	return n, err
}
