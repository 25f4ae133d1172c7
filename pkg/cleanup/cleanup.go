// pkg/cleanup/cleanup.go - filesystem cleanup for install/uninstall phases.
//
// Every removal here is idempotent: a path that is already gone is success,
// so a repeated uninstall ends in the same state without error.

package cleanup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
	"github.com/windowsadmins/ansysdeploy/pkg/retry"
)

// RemoveDirectory deletes a directory tree, retrying transient failures
// such as share locks held by an exiting process.
func RemoveDirectory(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logging.Debug("Directory already absent", "path", path)
		return nil
	}

	logging.Info("Removing directory", "path", path)
	err := retry.Do(retry.DefaultConfig(), func() error {
		return os.RemoveAll(path)
	})
	if err != nil {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// RemoveShortcuts deletes start-menu entries (files or folders) matching
// pattern directly under dir. Absence of matches is not an error.
func RemoveShortcuts(dir, pattern string) error {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return fmt.Errorf("bad shortcut pattern %q: %w", pattern, err)
	}

	if len(matches) == 0 {
		logging.Debug("No shortcut entries matched", "dir", dir, "pattern", pattern)
		return nil
	}

	for _, match := range matches {
		logging.Info("Removing start-menu entry", "path", match)
		if err := os.RemoveAll(match); err != nil {
			return fmt.Errorf("removing %s: %w", match, err)
		}
	}
	return nil
}
