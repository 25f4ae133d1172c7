// cmd/ansysdeploy/main.go

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sys/windows"
	"gopkg.in/yaml.v3"

	"github.com/windowsadmins/ansysdeploy/pkg/config"
	"github.com/windowsadmins/ansysdeploy/pkg/deploy"
	"github.com/windowsadmins/ansysdeploy/pkg/exitcode"
	"github.com/windowsadmins/ansysdeploy/pkg/logging"
	"github.com/windowsadmins/ansysdeploy/pkg/sysinfo"
	"github.com/windowsadmins/ansysdeploy/pkg/version"
)

var logger *logging.Logger

// enableANSIConsole enables ANSI colors in the console.
func enableANSIConsole() {
	for _, stream := range []*os.File{os.Stdout, os.Stderr} {
		handle := windows.Handle(stream.Fd())
		var mode uint32
		if err := windows.GetConsoleMode(handle, &mode); err == nil {
			mode |= windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
			_ = windows.SetConsoleMode(handle, mode)
		}
	}
}

func main() {
	enableANSIConsole()

	// Define command-line flags.
	deploymentType := pflag.String("deployment-type", "Install", "Deployment phase to run: Install, Uninstall, or Repair.")
	deployMode := pflag.String("deploy-mode", "Interactive", "UI mode: Interactive, Silent, or NonInteractive.")
	allowRebootPassThru := pflag.Bool("allow-reboot-passthru", false, "Pass a reboot-required installer exit code through instead of masking it.")
	terminalServerMode := pflag.Bool("terminal-server-mode", false, "Wrap the run in Remote Desktop install mode.")
	disableLogging := pflag.Bool("disable-logging", false, "Disable writing log files for this run.")
	showConfig := pflag.Bool("show-config", false, "Display the current configuration and exit.")
	versionFlag := pflag.Bool("version", false, "Print the version and exit.")

	// Count the number of -v flags.
	var verbosity int
	pflag.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (e.g. -v, -vv, -vvv)")
	pflag.Parse()

	// Load configuration (only once).
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(exitcode.BootstrapFailure)
	}

	// Dynamically override LogLevel based on the number of -v flags.
	// 0 => INFO, 1 => INFO + verbose console, 2+ => DEBUG
	switch verbosity {
	case 0, 1:
		cfg.LogLevel = "INFO"
	default:
		cfg.LogLevel = "DEBUG"
	}
	if verbosity > 0 {
		cfg.Verbose = true
		if verbosity >= 2 {
			cfg.Debug = true
		}
	}

	logger = logging.New(verbosity > 0)

	// Informational flags exit before the session logger is initialized so
	// they leave no log directory behind.
	if *versionFlag {
		if verbosity > 0 {
			version.PrintFull()
		} else {
			version.Print()
		}
		os.Exit(0)
	}

	if *showConfig {
		if cfgYaml, err := yaml.Marshal(cfg); err == nil {
			logger.Printf("Current configuration:\n%s", string(cfgYaml))
		}
		os.Exit(0)
	}

	if err := logging.Init(cfg, *disableLogging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(exitcode.BootstrapFailure)
	}
	defer logging.CloseLogger()

	req, err := buildRequest(*deploymentType, *deployMode, *allowRebootPassThru, *terminalServerMode, *disableLogging)
	if err != nil {
		logger.Error("%v", err)
		pflag.Usage()
		os.Exit(exitcode.BootstrapFailure)
	}

	// Machine environment variables and HKLM state need elevation.
	admin, adminErr := adminCheck()
	if adminErr != nil || !admin {
		logger.Error("Administrative access required. Error: %v, Admin: %v", adminErr, admin)
		os.Exit(exitcode.BootstrapFailure)
	}

	// Handle system signals for graceful shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Warning("Signal received, exiting gracefully: %s", sig.String())
		cancel()
		logging.CloseLogger()
		os.Exit(exitcode.UnhandledFault)
	}()

	logger.Info("Starting %s deployment (%s mode)", req.Type, req.Mode)
	if cfg.Debug {
		logger.Debug("Session log directory: %s", logging.LogDir())
	}

	sysinfo.LogSession(sysinfo.Gather())

	if req.TerminalServerMode {
		if err := setUserInstallMode(true); err != nil {
			logger.Warning("Could not enter Remote Desktop install mode: %v", err)
		}
	}

	driver := deploy.New(cfg, req)
	code := driver.Run(ctx, req)

	if req.TerminalServerMode {
		if err := setUserInstallMode(false); err != nil {
			logger.Warning("Could not leave Remote Desktop install mode: %v", err)
		}
	}

	logging.CloseLogger()
	os.Exit(code)
}

// buildRequest validates the flag values and folds them into a request.
func buildRequest(deploymentType, deployMode string, allowRebootPassThru, terminalServerMode, disableLogging bool) (deploy.Request, error) {
	var req deploy.Request

	switch strings.ToLower(deploymentType) {
	case "install":
		req.Type = deploy.TypeInstall
	case "uninstall":
		req.Type = deploy.TypeUninstall
	case "repair":
		req.Type = deploy.TypeRepair
	default:
		return req, fmt.Errorf("invalid deployment type %q (expected Install, Uninstall, or Repair)", deploymentType)
	}

	switch strings.ToLower(deployMode) {
	case "interactive":
		req.Mode = deploy.ModeInteractive
	case "silent":
		req.Mode = deploy.ModeSilent
	case "noninteractive":
		req.Mode = deploy.ModeNonInteractive
	default:
		return req, fmt.Errorf("invalid deploy mode %q (expected Interactive, Silent, or NonInteractive)", deployMode)
	}

	req.AllowRebootPassThru = allowRebootPassThru
	req.TerminalServerMode = terminalServerMode
	req.DisableLogging = disableLogging
	return req, nil
}

// setUserInstallMode toggles Remote Desktop session hosts between
// install mode (change user /install) and execute mode.
func setUserInstallMode(install bool) error {
	mode := "/execute"
	if install {
		mode = "/install"
	}
	return exec.Command("change.exe", "user", mode).Run()
}

func adminCheck() (bool, error) {
	var adminSid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&adminSid)
	if err != nil {
		return false, err
	}
	defer windows.FreeSid(adminSid)
	token := windows.Token(0)
	isMember, err := token.IsMember(adminSid)
	return isMember, err
}
