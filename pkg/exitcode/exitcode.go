// pkg/exitcode/exitcode.go - process exit codes for ansysdeploy.
//
// Ranges follow the deployment-tooling convention used by the callers
// (SCCM/Intune): 0 success, 60000-68999 reserved for the deployment
// framework itself, 69000-69999 for script-specific failures. 3010 and
// 1641 come straight from the Windows Installer and signal that a reboot
// is required to finish the installation.

package exitcode

const (
	// Success indicates the phase completed with no outstanding work.
	Success = 0

	// RebootRequired is passed through from the vendor installer when a
	// restart is needed to complete the installation (msiexec 3010).
	RebootRequired = 3010

	// RebootInitiated is the msiexec code for "reboot already started".
	RebootInitiated = 1641

	// UnhandledFault is returned when any phase fails with an error or
	// panic that was not an expected precondition failure.
	UnhandledFault = 60001

	// BootstrapFailure is returned when configuration or logging could
	// not be initialized, before any phase ran.
	BootstrapFailure = 60008

	// InsufficientDiskSpace is returned when the free-space guard aborts
	// the install phase before the vendor installer is invoked.
	InsufficientDiskSpace = 69004

	// DeploymentDeferred is returned when the user elected to defer the
	// deployment instead of closing the blocking applications.
	DeploymentDeferred = 69602
)

// IsRebootRequired reports whether a vendor installer exit code signals a
// pending restart rather than a failure.
func IsRebootRequired(code int) bool {
	return code == RebootRequired || code == RebootInitiated
}
