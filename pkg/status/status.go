// pkg/status/status.go - installed-product detection from the Windows registry.

package status

import (
	"strings"

	version "github.com/hashicorp/go-version"
	"golang.org/x/sys/windows/registry"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// InstalledProduct describes one entry from the registry uninstall keys.
type InstalledProduct struct {
	Key       string
	Name      string
	Version   string
	Location  string
	Uninstall string
}

// Uninstall key paths checked for installed software, both native and
// 32-bit views.
var uninstallKeyPaths = []string{
	`SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`,
	`SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`,
}

// FindInstalled scans the uninstall keys for products whose DisplayName
// contains namePart (case-insensitive).
func FindInstalled(namePart string) ([]InstalledProduct, error) {
	var found []InstalledProduct

	for _, keyPath := range uninstallKeyPaths {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath, registry.READ)
		if err != nil {
			logging.Debug("Uninstall key not readable", "key", keyPath, "error", err)
			continue
		}

		subkeys, err := key.ReadSubKeyNames(-1)
		if err != nil {
			key.Close()
			continue
		}

		for _, sub := range subkeys {
			subKey, err := registry.OpenKey(registry.LOCAL_MACHINE, keyPath+`\`+sub, registry.READ)
			if err != nil {
				continue
			}

			name, _, err := subKey.GetStringValue("DisplayName")
			if err != nil || !strings.Contains(strings.ToLower(name), strings.ToLower(namePart)) {
				subKey.Close()
				continue
			}

			prod := InstalledProduct{Key: sub, Name: name}
			prod.Version, _, _ = subKey.GetStringValue("DisplayVersion")
			prod.Location, _, _ = subKey.GetStringValue("InstallLocation")
			prod.Uninstall, _, _ = subKey.GetStringValue("UninstallString")
			subKey.Close()

			found = append(found, prod)
		}
		key.Close()
	}

	return found, nil
}

// IsOlderVersion returns true if `local` is strictly older than `remote`.
// Unparseable versions compare as not-older so an unknown build is never
// treated as an upgrade candidate by accident.
func IsOlderVersion(local, remote string) bool {
	vLocal, errLocal := version.NewVersion(local)
	vRemote, errRemote := version.NewVersion(remote)

	if errLocal != nil || errRemote != nil {
		logging.Debug("Version parse error, skipping comparison",
			"local", local,
			"remote", remote,
			"errLocal", errLocal,
			"errRemote", errRemote,
		)
		return false
	}
	return vLocal.LessThan(vRemote)
}
