package executor

import "context"

// Executor runs external tools (ffmpeg, ffprobe, whisper.cpp) and returns their stdout.
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error)
	// Available reports whether the named binary can be resolved on PATH.
	Available(name string) bool
}
