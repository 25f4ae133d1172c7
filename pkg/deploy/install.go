// pkg/deploy/install.go - the install phase sequence.

package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/windowsadmins/ansysdeploy/pkg/diskspace"
	"github.com/windowsadmins/ansysdeploy/pkg/env"
	"github.com/windowsadmins/ansysdeploy/pkg/exitcode"
	"github.com/windowsadmins/ansysdeploy/pkg/installer"
	"github.com/windowsadmins/ansysdeploy/pkg/logging"
	"github.com/windowsadmins/ansysdeploy/pkg/status"
)

// installDisposition classifies this install relative to a build already on
// the machine. Unparseable versions compare as equal, so they read as a
// reinstall rather than a bogus upgrade.
func installDisposition(installedVersion, targetVersion string) string {
	switch {
	case status.IsOlderVersion(installedVersion, targetVersion):
		return "upgrade"
	case status.IsOlderVersion(targetVersion, installedVersion):
		return "downgrade"
	default:
		return "reinstall"
	}
}

func (d *Driver) install(ctx context.Context, req Request) int {
	cfg := d.Config
	logging.SetPhase("pre-install")

	proceed, code := d.closeBlockingApps(req)
	if !proceed {
		return code
	}

	d.UI.ShowProgress(fmt.Sprintf("Installing %s. This may take some time. Please wait...", productTitle(cfg)))

	// Note what is already on the machine before touching anything.
	if installed, err := d.Products.FindInstalled(cfg.AppName); err == nil && len(installed) > 0 {
		for _, prod := range installed {
			logging.Info("Found existing installation",
				"name", prod.Name,
				"version", prod.Version,
				"location", prod.Location,
				"disposition", installDisposition(prod.Version, cfg.AppVersion))
		}
	}

	// Stray entries from earlier releases; absence is fine.
	if err := d.Clean.RemoveShortcuts(cfg.StartMenuDir, cfg.StartMenuPattern); err != nil {
		logging.Warn("Could not remove stray start-menu entries", "error", err)
	}

	free, err := d.Disk.SystemDriveFree()
	if err != nil {
		return d.fail("Checking free disk space", err)
	}
	if !diskspace.SufficientFree(free, cfg.MinFreeSpaceGB) {
		msg := fmt.Sprintf(
			"Installation requires at least %d GB of free space on the system drive, but only %d GB is available.\n\n"+
				"Free up disk space and run the installation again.",
			cfg.MinFreeSpaceGB, diskspace.FreeGB(free))
		logging.Error("Insufficient disk space",
			"required_gb", cfg.MinFreeSpaceGB,
			"available_gb", diskspace.FreeGB(free))
		d.UI.ShowError(productTitle(cfg), msg)
		return exitcode.InsufficientDiskSpace
	}
	logging.Info("Disk space check passed",
		"required_gb", cfg.MinFreeSpaceGB,
		"available_gb", diskspace.FreeGB(free))

	if err := d.Scripts.PreDeploy(cfg.StagingPath); err != nil {
		logging.Warn("Pre-deployment script failed, continuing", "error", err)
	}

	logging.SetPhase("install")

	setupPath, err := d.Installer.FindSetup(cfg.StagingPath, cfg.SetupName)
	if err != nil {
		return d.fail("Locating the vendor installer", err)
	}

	responsePath, err := d.Installer.FindResponseFile(setupPath, cfg.StagingPath, cfg.ResponseFile)
	if err != nil {
		return d.fail("Locating the silent-install response file", err)
	}

	args := installer.BuildArgs(cfg.SilentArgs, responsePath)
	timeout := time.Duration(cfg.InstallerTimeoutMinutes) * time.Minute

	result, err := d.Installer.RunSilent(ctx, setupPath, args, timeout)
	if err != nil {
		return d.fail("Running the vendor installer", err)
	}

	// The vendor setup keeps writing for a short while after the main
	// process exits.
	d.Sleep(time.Duration(cfg.SettleDelaySeconds) * time.Second)

	rebootNeeded := exitcode.IsRebootRequired(result.ExitCode)
	if result.ExitCode != 0 && !rebootNeeded {
		return d.fail("Vendor installer",
			fmt.Errorf("installer exited with code %d", result.ExitCode))
	}

	logging.SetPhase("post-install")

	if err := d.Env.SetMachine(env.ProductEnvironment(cfg)); err != nil {
		return d.fail("Setting machine environment variables", err)
	}

	if err := d.Scripts.PostDeploy(cfg.StagingPath); err != nil {
		logging.Warn("Post-deployment script failed, continuing", "error", err)
	}

	if req.Interactive() {
		d.UI.CloseProgress()
		d.UI.ShowMessage(productTitle(cfg),
			fmt.Sprintf("%s has been installed successfully.", productTitle(cfg)))
	}

	if rebootNeeded {
		logging.Info("Installer requested a reboot", "exit_code", result.ExitCode)
		if req.AllowRebootPassThru {
			return result.ExitCode
		}
	}
	return exitcode.Success
}
