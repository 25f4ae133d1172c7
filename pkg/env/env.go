// pkg/env/env.go - machine-level environment variables for the deployed product.
//
// Values live under the Session Manager environment key so they are visible
// to every user and service. A WM_SETTINGCHANGE broadcast tells running
// shells to re-read the block.

package env

import (
	"fmt"
	"path/filepath"
	"sort"
	"unsafe"

	"github.com/gonutz/w32"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/windowsadmins/ansysdeploy/pkg/config"
	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

const machineEnvKey = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`

const (
	hwndBroadcast   = 0xFFFF
	wmSettingChange = 0x001A
)

// ProductEnvironment builds the machine environment variables for the
// configured product. The versioned names and paths all derive from
// ProductCode so they track the deployed release together.
func ProductEnvironment(cfg *config.Configuration) map[string]string {
	code := cfg.ProductCode
	versionDir := filepath.Join(cfg.InstallRoot, "v"+code)

	return map[string]string{
		"ANSYSEM_ROOT" + code:   filepath.Join(versionDir, "Win64"),
		"AWP_ROOT" + code:       versionDir,
		"ANSYSEM_INSTALL_DIR":   cfg.InstallRoot,
		"ANSYSLMD_LICENSE_FILE": cfg.LicenseServer,
	}
}

// Names returns the variable names of a product environment in sorted
// order, for deterministic logging and removal.
func Names(vars map[string]string) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetMachine writes every variable in vars to the machine environment and
// broadcasts the change once.
func SetMachine(vars map[string]string) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, machineEnvKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening machine environment key: %w", err)
	}
	defer key.Close()

	for _, name := range Names(vars) {
		value := vars[name]
		if err := key.SetStringValue(name, value); err != nil {
			return fmt.Errorf("setting %s: %w", name, err)
		}
		logging.Info("Set machine environment variable", "name", name, "value", value)
	}

	broadcastChange()
	return nil
}

// DeleteMachine removes the named variables from the machine environment.
// Variables that are already absent are not an error; the delete is
// idempotent so a second uninstall run ends in the same state.
func DeleteMachine(names []string) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, machineEnvKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening machine environment key: %w", err)
	}
	defer key.Close()

	for _, name := range names {
		err := key.DeleteValue(name)
		if err == registry.ErrNotExist {
			logging.Debug("Machine environment variable already absent", "name", name)
			continue
		}
		if err != nil {
			return fmt.Errorf("deleting %s: %w", name, err)
		}
		logging.Info("Removed machine environment variable", "name", name)
	}

	broadcastChange()
	return nil
}

// broadcastChange notifies top-level windows that the environment block
// changed. Best effort; a failed broadcast only delays pickup until the
// next logon.
func broadcastChange() {
	param, err := windows.UTF16PtrFromString("Environment")
	if err != nil {
		return
	}
	w32.SendMessage(w32.HWND(hwndBroadcast), wmSettingChange, 0, uintptr(unsafe.Pointer(param)))
}
