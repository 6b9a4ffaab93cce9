package skills

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// scriptTimeout bounds a single script run. Scripts are model-facing
// helpers, not batch jobs; anything slower should be a real tool.
const scriptTimeout = 60 * time.Second

// RunScript executes a script from the skill's scripts directory and
// returns (ok, output). Failure modes are reported in the output
// string; a timeout is the distinguishable "Script execution timed out".
// The 60s cap is derived from ctx, so a sooner caller deadline wins.
func RunScript(ctx context.Context, skill *Skill, scriptName string, args []string) (bool, string) {
	path := filepath.Join(skill.ScriptsDir(), scriptName)
	if _, err := os.Stat(path); err != nil {
		return false, fmt.Sprintf("Script not found: %s", scriptName)
	}

	ctx, cancel := context.WithTimeout(ctx, scriptTimeout)
	defer cancel()

	var cmd *exec.Cmd
	switch filepath.Ext(path) {
	case ".py":
		cmd = exec.CommandContext(ctx, "python3", append([]string{path}, args...)...)
	case ".sh":
		cmd = exec.CommandContext(ctx, "bash", append([]string{path}, args...)...)
	default:
		cmd = exec.CommandContext(ctx, path, args...)
	}
	cmd.Dir = skill.Path

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		output += fmt.Sprintf("\nStderr: %s", stderr.String())
	}

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, "Script execution timed out"
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, output
		}
		return false, fmt.Sprintf("Script execution error: %v", err)
	}

	return true, output
}
