package census

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher downloads census archives from the public mirror, politely and
// with retries. A file already present locally is never fetched again.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewFetcher(log *zap.Logger) *Fetcher {
	return &Fetcher{
		client: resty.New().
			SetTimeout(10 * time.Minute).
			SetRetryCount(3).
			SetRetryWaitTime(2 * time.Second).
			SetRetryMaxWaitTime(30 * time.Second),
		// one request every few seconds is plenty for a public mirror
		limiter: rate.NewLimiter(rate.Every(3*time.Second), 1),
		log:     log,
	}
}

// FetchArchive downloads url to zipPath unless it already exists, then
// extracts it into destDir. Extraction is skipped when destDir already
// has content.
func (f *Fetcher) FetchArchive(ctx context.Context, url, zipPath, destDir string) error {
	if populated(destDir) {
		f.log.Info("census data already extracted", zap.String("dir", destDir))
		return nil
	}
	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		if err := f.limiter.Wait(ctx); err != nil {
			return err
		}
		f.log.Info("downloading census archive", zap.String("url", url))
		resp, err := f.client.R().SetContext(ctx).SetOutput(zipPath).Get(url)
		if err != nil {
			return fmt.Errorf("download %s: %w", url, err)
		}
		if resp.StatusCode() != 200 {
			_ = os.Remove(zipPath)
			return fmt.Errorf("download %s: status %d", url, resp.StatusCode())
		}
	} else {
		f.log.Info("using cached archive", zap.String("zip", zipPath))
	}
	return extractZip(zipPath, destDir)
}

func populated(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err == nil && len(entries) > 0
}

func extractZip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", zipPath, err)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}
	for _, file := range zr.File {
		target := filepath.Join(destDir, file.Name)
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive %s: entry %q escapes destination", zipPath, file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := copyEntry(file, target); err != nil {
			return err
		}
	}
	return nil
}

func copyEntry(file *zip.File, target string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
