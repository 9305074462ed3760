// Package prescan runs the configured shell commands before a resync pass,
// typically code generators whose output should be indexed.
package prescan

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	shellwords "github.com/mattn/go-shellwords"
	"go.uber.org/zap"
)

// Run executes the command lines in order with the working directory set to
// dir. The first failure stops the sequence and is returned, so the caller
// can skip the indexing pass that would have followed.
func Run(ctx context.Context, commands []string, dir string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, line := range commands {
		if strings.TrimSpace(line) == "" {
			continue
		}

		args, err := shellwords.Parse(line)
		if err != nil {
			return fmt.Errorf("parse command %q: %w", line, err)
		}
		if len(args) == 0 {
			continue
		}

		logger.Debug("running pre-scan command", zap.String("command", line), zap.String("dir", dir))

		cmd := exec.CommandContext(ctx, args[0], args[1:]...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			return fmt.Errorf("pre-scan command %q: %w: %s", line, err, strings.TrimSpace(string(out)))
		}
	}
	return nil
}
