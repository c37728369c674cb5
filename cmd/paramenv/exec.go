package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"

	"paramenv/internal/envsink"
)

// execChild runs argv[0] with the fetched bindings appended to the
// inherited environment, so a fetched value wins over an inherited one
// with the same key. Standard streams pass through unchanged and the
// child's exit code becomes paramenv's.
//
// The signal-aware ctx means SIGINT/SIGTERM delivered to paramenv kills
// the child; the shell delivers terminal signals to the whole process
// group anyway, so this only matters for signals sent to paramenv alone.
func execChild(ctx context.Context, argv []string, sink *envsink.MapSink, logger *slog.Logger) int {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = sink.Environ(os.Environ())
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	logger.Info("starting command",
		"command", argv[0],
		"args", len(argv)-1,
		"injected_bindings", sink.Len(),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Warn("command exited with failure",
				"command", argv[0],
				"exit_code", exitErr.ExitCode(),
			)
			return exitErr.ExitCode()
		}
		logger.Error("cannot run command", "command", argv[0], "error", err)
		return 1
	}
	return 0
}
