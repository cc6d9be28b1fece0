package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename strips path components and anything outside [A-Za-z0-9._-].
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" || name == "." {
		return "upload"
	}
	return name
}

func (s *implService) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	name := SecureFilename(filename)
	if !s.IsSupported(name) {
		return "", s.unsupported(name)
	}

	if err := os.MkdirAll(s.opts.UploadDir, 0755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	f, path, err := createUnique(s.opts.UploadDir, name)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	var src io.Reader = r
	if s.opts.MaxSizeBytes > 0 {
		src = io.LimitReader(r, s.opts.MaxSizeBytes+1)
	}

	n, err := io.Copy(f, src)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload: %w", err)
	}

	if s.opts.MaxSizeBytes > 0 && n > s.opts.MaxSizeBytes {
		os.Remove(path)
		return "", fmt.Errorf("%w: exceeds maximum %dMB", ErrFileTooLarge, s.opts.MaxSizeBytes/(1024*1024))
	}
	if n == 0 {
		os.Remove(path)
		return "", ErrEmptyFile
	}

	s.logger.Info(ctx, "Saved upload: %s (%d bytes)", path, n)
	return path, nil
}

// createUnique opens dir/name exclusively, appending _1, _2, ... to the stem on collision.
func createUnique(dir, name string) (*os.File, string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 0; i < 10000; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s_%d%s", stem, i, ext)
		}
		path := filepath.Join(dir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err == nil {
			return f, path, nil
		}
		if !os.IsExist(err) {
			return nil, "", err
		}
	}
	return nil, "", fmt.Errorf("no free filename for %s", name)
}
