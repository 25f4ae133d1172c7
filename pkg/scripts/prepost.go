// pkg/scripts/prepost.go - optional pre/post deployment PowerShell hooks.

package scripts

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// RunPreDeploy runs predeploy.ps1 from the staging directory if present.
func RunPreDeploy(stagingDir string) error {
	return runScript(filepath.Join(stagingDir, "predeploy.ps1"), "predeploy")
}

// RunPostDeploy runs postdeploy.ps1 from the staging directory if present.
func RunPostDeploy(stagingDir string) error {
	return runScript(filepath.Join(stagingDir, "postdeploy.ps1"), "postdeploy")
}

// runScript executes a deployment hook script, mirroring its output into
// the session log line by line. A missing script is not an error.
func runScript(scriptPath, displayName string) error {
	if _, err := os.Stat(scriptPath); os.IsNotExist(err) {
		logging.Debug("Deployment script not found", "script", displayName, "path", scriptPath)
		return nil
	}

	logging.Info("Running deployment script", "script", displayName, "path", scriptPath)

	cmd := exec.Command(
		"pwsh.exe",
		"-NoLogo",
		"-NoProfile",
		"-NonInteractive",
		"-Command", fmt.Sprintf(`& "%s" 2>&1`, scriptPath),
	)
	cmd.Dir = filepath.Dir(scriptPath)

	outputBytes, err := cmd.CombinedOutput()
	outputStr := string(outputBytes)

	lines := strings.Split(outputStr, "\n")
	for _, line := range lines {
		txt := strings.TrimSpace(line)
		if txt == "" {
			continue
		}
		txt = strings.TrimPrefix(txt, "\ufeff")
		logging.Info(txt, "script", displayName)
	}

	if err != nil {
		logging.Error("Deployment script error", "script", displayName, "error", err)
		return fmt.Errorf("%s script error: %w", displayName, err)
	}

	logging.Info("Deployment script completed successfully", "script", displayName)
	return nil
}
