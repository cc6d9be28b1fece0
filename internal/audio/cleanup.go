package audio

import (
	"context"
	"os"
)

// Cleanup removes intermediate files, logging instead of failing.
func (s *implService) Cleanup(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			s.logger.Warn(ctx, "Failed to cleanup temp file %s: %v", p, err)
			continue
		}
		s.logger.Debug(ctx, "Cleaned up temp file: %s", p)
	}
}
