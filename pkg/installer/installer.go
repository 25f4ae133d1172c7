// pkg/installer/installer.go - locating and running the vendor's silent installer.

package installer

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// Result captures the outcome of a vendor installer invocation.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// FindSetup searches recursively under stagingDir for the vendor setup
// executable. The Ansys payload nests the installer a few directories
// deep, so the exact location is not fixed.
func FindSetup(stagingDir, setupName string) (string, error) {
	var found string
	err := filepath.WalkDir(stagingDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Debug("Error accessing path during setup search", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), setupName) {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("searching %s: %w", stagingDir, err)
	}
	if found == "" {
		return "", fmt.Errorf("installer %s not found under %s", setupName, stagingDir)
	}
	return found, nil
}

// FindResponseFile locates the silent-install response file under the
// staging directory, preferring one next to the setup executable.
func FindResponseFile(setupPath, stagingDir, responseName string) (string, error) {
	beside := filepath.Join(filepath.Dir(setupPath), responseName)
	if _, err := os.Stat(beside); err == nil {
		return beside, nil
	}
	return FindSetup(stagingDir, responseName)
}

// BuildArgs expands the silent argument template into an argument vector.
// The {response} placeholder is replaced with the response file path.
func BuildArgs(template, responsePath string) []string {
	expanded := strings.ReplaceAll(template, "{response}", responsePath)
	return splitArgs(expanded)
}

// splitArgs splits a command-line string on whitespace, honoring
// double-quoted sections so paths with spaces survive intact.
func splitArgs(s string) []string {
	var args []string
	var current strings.Builder
	inQuote := false

	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t'):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}
	return args
}

// RunSilent executes the vendor installer with the given arguments and a
// hidden window, waiting for it to exit. The installer's exit code is
// always captured so the caller can distinguish success, reboot-required,
// and failure.
func RunSilent(ctx context.Context, setupPath string, args []string, timeout time.Duration) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Info("Invoking vendor installer",
		"setup", setupPath,
		"args", strings.Join(args, " "),
		"timeout", timeout.String())

	cmd := exec.CommandContext(ctx, setupPath, args...)
	cmd.Dir = filepath.Dir(setupPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}

	start := time.Now()
	output, err := cmd.CombinedOutput()
	res := Result{
		Output:   string(output),
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			logging.Error("Vendor installer timed out", "setup", setupPath, "timeout", timeout.String())
			if cmd.Process != nil {
				terminateProcessTree(cmd.Process.Pid)
			}
			res.ExitCode = -1
			return res, fmt.Errorf("installer timed out after %s", timeout)
		}

		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
			logging.Warn("Vendor installer exited non-zero",
				"setup", setupPath, "exit_code", res.ExitCode)
			return res, nil
		}

		res.ExitCode = -1
		return res, fmt.Errorf("running installer: %w", err)
	}

	logging.Info("Vendor installer completed",
		"setup", setupPath,
		"exit_code", 0,
		"duration", res.Duration.Round(time.Second).String())
	return res, nil
}

// terminateProcessTree terminates a process and all its child processes.
// The vendor setup spawns sub-installers, so killing only the root would
// leave orphans holding file locks.
func terminateProcessTree(pid int) {
	cmd := exec.Command("taskkill", "/F", "/T", "/PID", fmt.Sprintf("%d", pid))
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	if err := cmd.Run(); err != nil {
		logging.Debug("Failed to terminate process tree", "pid", pid, "error", err)
	}
}
