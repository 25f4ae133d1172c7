// pkg/config/config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.Equal(t, "Ansys", cfg.AppVendor)
	assert.Equal(t, "Electromagnetics Suite", cfg.AppName)
	assert.Equal(t, "231", cfg.ProductCode)
	assert.Equal(t, "setup.exe", cfg.SetupName)
	assert.Equal(t, []string{"ansysedt.exe"}, cfg.BlockingApps)
	assert.Equal(t, 30, cfg.MinFreeSpaceGB)
	assert.Equal(t, 3, cfg.AllowedDeferrals)
	assert.Equal(t, 90, cfg.CloseAppCountdownSeconds)
	assert.NotEmpty(t, cfg.StagingPath)
	assert.NotEmpty(t, cfg.InstallRoot)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Config.yaml")
	yaml := `
AppVersion: "2024 R2"
ProductCode: "242"
LicenseServer: "1055@licenses.corp.example.com"
MinFreeSpaceGB: 50
BlockingApps:
  - ansysedt.exe
  - desktopjob.exe
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, "2024 R2", cfg.AppVersion)
	assert.Equal(t, "242", cfg.ProductCode)
	assert.Equal(t, "1055@licenses.corp.example.com", cfg.LicenseServer)
	assert.Equal(t, 50, cfg.MinFreeSpaceGB)
	assert.Equal(t, []string{"ansysedt.exe", "desktopjob.exe"}, cfg.BlockingApps)

	// Untouched defaults survive.
	assert.Equal(t, "Ansys", cfg.AppVendor)
	assert.Equal(t, "setup.exe", cfg.SetupName)
	assert.Equal(t, 120, cfg.InstallerTimeoutMinutes)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYaml(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("AppVersion: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyDefaultsFixesNonPositiveValues(t *testing.T) {
	cfg := &Configuration{
		CloseAppCountdownSeconds: -5,
		InstallerTimeoutMinutes:  0,
	}
	applyDefaults(cfg)

	assert.Equal(t, 90, cfg.CloseAppCountdownSeconds)
	assert.Equal(t, 120, cfg.InstallerTimeoutMinutes)
	assert.NotEmpty(t, cfg.StagingPath)
}
