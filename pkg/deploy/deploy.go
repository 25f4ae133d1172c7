// pkg/deploy/deploy.go - the deployment driver.
//
// The driver runs exactly one phase (install, uninstall, or repair) as an
// ordered sequence of calls into its collaborators, and guarantees every
// outcome funnels through a single finish path with a single exit code.

package deploy

import (
	"context"
	"fmt"
	"time"

	"github.com/windowsadmins/ansysdeploy/pkg/config"
	"github.com/windowsadmins/ansysdeploy/pkg/exitcode"
	"github.com/windowsadmins/ansysdeploy/pkg/installer"
	"github.com/windowsadmins/ansysdeploy/pkg/logging"
	"github.com/windowsadmins/ansysdeploy/pkg/status"
	"github.com/windowsadmins/ansysdeploy/pkg/ui"
)

// Type selects the phase sequence to run.
type Type string

const (
	TypeInstall   Type = "Install"
	TypeUninstall Type = "Uninstall"
	TypeRepair    Type = "Repair"
)

// Mode controls how much UI the run is allowed to show.
type Mode string

const (
	ModeInteractive    Mode = "Interactive"
	ModeSilent         Mode = "Silent"
	ModeNonInteractive Mode = "NonInteractive"
)

// Request is the immutable deployment request supplied by the caller
// (SCCM or an operator) at process start.
type Request struct {
	Type                Type
	Mode                Mode
	AllowRebootPassThru bool
	TerminalServerMode  bool
	DisableLogging      bool
}

// Interactive reports whether the run may prompt the user.
func (r Request) Interactive() bool {
	return r.Mode == ModeInteractive
}

// ProcessCloser finds and closes blocking applications.
type ProcessCloser interface {
	RunningApps(apps []string) []string
	CloseApps(apps []string, countdown time.Duration) error
}

// DiskChecker reports free space on the system drive.
type DiskChecker interface {
	SystemDriveFree() (uint64, error)
}

// InstallerRunner locates and executes the vendor's silent installer.
type InstallerRunner interface {
	FindSetup(stagingDir, setupName string) (string, error)
	FindResponseFile(setupPath, stagingDir, responseName string) (string, error)
	RunSilent(ctx context.Context, setupPath string, args []string, timeout time.Duration) (installer.Result, error)
}

// EnvManager manages the product's machine environment variables.
type EnvManager interface {
	SetMachine(vars map[string]string) error
	DeleteMachine(names []string) error
}

// Cleaner removes deployment filesystem artifacts.
type Cleaner interface {
	RemoveDirectory(path string) error
	RemoveShortcuts(dir, pattern string) error
}

// ScriptRunner runs the optional pre/post deployment hooks.
type ScriptRunner interface {
	PreDeploy(stagingDir string) error
	PostDeploy(stagingDir string) error
}

// Inventory looks up already-installed products.
type Inventory interface {
	FindInstalled(namePart string) ([]status.InstalledProduct, error)
}

// DeferralStore persists how many times the user has deferred.
type DeferralStore interface {
	Count() (int, error)
	Increment() error
	Clear() error
}

// Driver sequences one deployment phase over its collaborators.
type Driver struct {
	Config    *config.Configuration
	UI        ui.UserInterface
	Procs     ProcessCloser
	Disk      DiskChecker
	Installer InstallerRunner
	Env       EnvManager
	Clean     Cleaner
	Scripts   ScriptRunner
	Products  Inventory
	Deferrals DeferralStore

	// Sleep is swappable so tests don't wait out settle delays.
	Sleep func(time.Duration)
}

// New builds a Driver wired to the real collaborators, choosing the UI
// implementation from the deploy mode.
func New(cfg *config.Configuration, req Request) *Driver {
	var userInterface ui.UserInterface
	if req.Interactive() {
		userInterface = ui.NewInteractive(productTitle(cfg))
	} else {
		userInterface = ui.NewNoOp()
	}

	return &Driver{
		Config:    cfg,
		UI:        userInterface,
		Procs:     realProcessCloser{},
		Disk:      realDiskChecker{},
		Installer: realInstallerRunner{},
		Env:       realEnvManager{},
		Clean:     realCleaner{},
		Scripts:   realScriptRunner{},
		Products:  realInventory{},
		Deferrals: NewRegistryDeferralStore(),
		Sleep:     time.Sleep,
	}
}

// productTitle is the display name used in dialogs and log lines.
func productTitle(cfg *config.Configuration) string {
	return fmt.Sprintf("%s %s %s", cfg.AppVendor, cfg.AppName, cfg.AppVersion)
}

// Run executes the requested phase to completion or fails fast, always
// returning a single exit code. Any panic inside a phase is caught here
// once, mapped to the fatal exit code, logged, and surfaced before the
// common finish path runs.
func (d *Driver) Run(ctx context.Context, req Request) (code int) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Unhandled fault during deployment", "fault", fmt.Sprintf("%v", r))
			d.UI.ShowError(productTitle(d.Config),
				fmt.Sprintf("The deployment encountered an unexpected error and cannot continue.\n\n%v", r))
			code = exitcode.UnhandledFault
		}
		d.finish(code)
	}()

	logging.Info("Starting deployment phase",
		"type", string(req.Type),
		"mode", string(req.Mode),
		"app", productTitle(d.Config))

	switch req.Type {
	case TypeUninstall:
		code = d.uninstall(ctx, req)
	case TypeRepair:
		code = d.repair(ctx, req)
	default:
		code = d.install(ctx, req)
	}
	return code
}

// finish is the single teardown path shared by success and failure. A
// completed deployment resets the deferral allowance here so a deferral
// followed by the user closing the app themselves cannot leave a stale
// count behind.
func (d *Driver) finish(code int) {
	d.UI.CloseProgress()
	if code == exitcode.Success || exitcode.IsRebootRequired(code) {
		if err := d.Deferrals.Clear(); err != nil {
			logging.Debug("Could not clear deferral count", "error", err)
		}
	}
	logging.SetPhase("")
	logging.Info("Deployment phase finished", "exit_code", code)
}

// fail logs an error, shows the blocking error dialog, and maps the
// failure to the fatal exit code.
func (d *Driver) fail(step string, err error) int {
	logging.Error("Deployment step failed", "step", step, "error", err)
	d.UI.ShowError(productTitle(d.Config),
		fmt.Sprintf("%s failed:\n\n%v", step, err))
	return exitcode.UnhandledFault
}

// closeBlockingApps is the shared first step of the install and
// uninstall phases: prompt (interactive only, with deferral allowance),
// wait out the countdown, then force closure.
func (d *Driver) closeBlockingApps(req Request) (proceed bool, code int) {
	cfg := d.Config
	running := d.Procs.RunningApps(cfg.BlockingApps)
	if len(running) == 0 {
		return true, 0
	}

	countdown := time.Duration(cfg.CloseAppCountdownSeconds) * time.Second

	if req.Interactive() {
		used, err := d.Deferrals.Count()
		if err != nil {
			logging.Warn("Could not read deferral count", "error", err)
		}
		left := cfg.AllowedDeferrals - used
		if left < 0 {
			left = 0
		}

		choice := d.UI.CloseAppsPrompt(running, countdown, left)
		if choice == ui.ChoiceDefer && left > 0 {
			if err := d.Deferrals.Increment(); err != nil {
				logging.Warn("Could not record deferral", "error", err)
			}
			logging.Info("User deferred the deployment", "deferrals_left", left-1)
			return false, exitcode.DeploymentDeferred
		}
	} else {
		// Nobody is watching, so there is no point waiting out the
		// countdown before forcing closure.
		countdown = 0
	}

	if err := d.Procs.CloseApps(running, countdown); err != nil {
		return false, d.fail("Closing blocking applications", err)
	}
	return true, 0
}
