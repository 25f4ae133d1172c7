// pkg/deploy/collaborators.go - production wiring for the Driver's
// collaborator interfaces.

package deploy

import (
	"context"
	"time"

	"github.com/windowsadmins/ansysdeploy/pkg/blocking"
	"github.com/windowsadmins/ansysdeploy/pkg/cleanup"
	"github.com/windowsadmins/ansysdeploy/pkg/diskspace"
	"github.com/windowsadmins/ansysdeploy/pkg/env"
	"github.com/windowsadmins/ansysdeploy/pkg/installer"
	"github.com/windowsadmins/ansysdeploy/pkg/scripts"
	"github.com/windowsadmins/ansysdeploy/pkg/status"
)

type realProcessCloser struct{}

func (realProcessCloser) RunningApps(apps []string) []string {
	return blocking.RunningApps(apps)
}

func (realProcessCloser) CloseApps(apps []string, countdown time.Duration) error {
	return blocking.CloseApps(apps, countdown)
}

type realDiskChecker struct{}

func (realDiskChecker) SystemDriveFree() (uint64, error) {
	return diskspace.SystemDriveFree()
}

type realInstallerRunner struct{}

func (realInstallerRunner) FindSetup(stagingDir, setupName string) (string, error) {
	return installer.FindSetup(stagingDir, setupName)
}

func (realInstallerRunner) FindResponseFile(setupPath, stagingDir, responseName string) (string, error) {
	return installer.FindResponseFile(setupPath, stagingDir, responseName)
}

func (realInstallerRunner) RunSilent(ctx context.Context, setupPath string, args []string, timeout time.Duration) (installer.Result, error) {
	return installer.RunSilent(ctx, setupPath, args, timeout)
}

type realEnvManager struct{}

func (realEnvManager) SetMachine(vars map[string]string) error {
	return env.SetMachine(vars)
}

func (realEnvManager) DeleteMachine(names []string) error {
	return env.DeleteMachine(names)
}

type realCleaner struct{}

func (realCleaner) RemoveDirectory(path string) error {
	return cleanup.RemoveDirectory(path)
}

func (realCleaner) RemoveShortcuts(dir, pattern string) error {
	return cleanup.RemoveShortcuts(dir, pattern)
}

type realScriptRunner struct{}

func (realScriptRunner) PreDeploy(stagingDir string) error {
	return scripts.RunPreDeploy(stagingDir)
}

func (realScriptRunner) PostDeploy(stagingDir string) error {
	return scripts.RunPostDeploy(stagingDir)
}

type realInventory struct{}

func (realInventory) FindInstalled(namePart string) ([]status.InstalledProduct, error) {
	return status.FindInstalled(namePart)
}
