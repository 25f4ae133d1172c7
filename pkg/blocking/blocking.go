// pkg/blocking/blocking.go - detection and closing of applications that
// block the deployment while they run.

package blocking

import (
	"fmt"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// MatchesProcessName reports whether a running process name matches an
// app name from the blocking list, with or without the .exe suffix.
func MatchesProcessName(processName, appName string) bool {
	processName = strings.ToLower(processName)
	appName = strings.ToLower(appName)

	if strings.HasSuffix(appName, ".exe") {
		return processName == appName
	}
	return processName == appName || processName == appName+".exe"
}

// IsAppRunning checks if a specific application is currently running.
func IsAppRunning(appName string) bool {
	logging.Debug("Checking if application is running", "app", appName)

	processes, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return false
	}

	cleanAppName := strings.ToLower(appName)

	for _, proc := range processes {
		name, err := proc.Name()
		if err != nil {
			continue
		}

		if strings.HasPrefix(cleanAppName, `c:\`) {
			// Search by exact path
			exe, err := proc.Exe()
			if err != nil {
				continue
			}
			if strings.EqualFold(exe, appName) {
				logging.Debug("Found running app by exact path", "app", appName, "process", exe)
				return true
			}
		} else if MatchesProcessName(name, appName) {
			logging.Debug("Found running app by name", "app", appName, "process", name)
			return true
		}
	}

	logging.Debug("Application not found running", "app", appName)
	return false
}

// RunningApps returns the subset of appNames that are currently running.
func RunningApps(appNames []string) []string {
	var running []string
	for _, appName := range appNames {
		if IsAppRunning(appName) {
			running = append(running, appName)
		}
	}
	return running
}

// TerminateApps force-terminates every running process whose name matches
// one of appNames. Returns the names that could not be terminated.
func TerminateApps(appNames []string) []string {
	processes, err := process.Processes()
	if err != nil {
		logging.Error("Failed to get process list", "error", err)
		return appNames
	}

	failed := make(map[string]bool)
	for _, proc := range processes {
		name, err := proc.Name()
		if err != nil {
			continue
		}
		for _, appName := range appNames {
			if !MatchesProcessName(name, appName) {
				continue
			}
			logging.Info("Terminating blocking application", "app", appName, "pid", proc.Pid)
			if err := proc.Kill(); err != nil {
				logging.Warn("Failed to terminate process", "app", appName, "pid", proc.Pid, "error", err)
				failed[appName] = true
			}
		}
	}

	var stillFailed []string
	for name := range failed {
		stillFailed = append(stillFailed, name)
	}
	return stillFailed
}

// WaitForExit polls until none of appNames is running or the countdown
// elapses, returning the apps still running at the deadline.
func WaitForExit(appNames []string, countdown time.Duration) []string {
	deadline := time.Now().Add(countdown)
	for time.Now().Before(deadline) {
		running := RunningApps(appNames)
		if len(running) == 0 {
			return nil
		}
		logging.Debug("Waiting for blocking applications to exit",
			"apps", strings.Join(running, ", "),
			"remaining", time.Until(deadline).Round(time.Second).String())
		time.Sleep(5 * time.Second)
	}
	return RunningApps(appNames)
}

// CloseApps waits out the countdown for the listed applications and then
// force-terminates whatever is still running. The countdown gives users a
// chance to save work after the welcome prompt.
func CloseApps(appNames []string, countdown time.Duration) error {
	running := RunningApps(appNames)
	if len(running) == 0 {
		logging.Debug("No blocking applications running")
		return nil
	}

	logging.Info("Blocking applications are running",
		"apps", strings.Join(running, ", "),
		"countdown", countdown.String())

	remaining := WaitForExit(running, countdown)
	if len(remaining) == 0 {
		logging.Info("Blocking applications exited before the countdown elapsed")
		return nil
	}

	logging.Warn("Countdown elapsed, forcing closure",
		"apps", strings.Join(remaining, ", "))
	if failed := TerminateApps(remaining); len(failed) > 0 {
		return fmt.Errorf("could not terminate blocking applications: %s",
			strings.Join(failed, ", "))
	}

	// Give the OS a moment to release handles held by the killed processes.
	time.Sleep(2 * time.Second)
	return nil
}
