// pkg/config/config.go - configuration settings for ansysdeploy.

package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/windows/registry"
	"gopkg.in/yaml.v3"
)

const ConfigPath = `C:\ProgramData\AnsysDeploy\Config.yaml`

// CSP OMA-URI registry path for enterprise policy configuration
const CSPRegistryPath = `SOFTWARE\AnsysDeploy\Config`

// Configuration holds the configurable options for ansysdeploy in YAML format
type Configuration struct {
	AppVendor   string `yaml:"AppVendor"`
	AppName     string `yaml:"AppName"`
	AppVersion  string `yaml:"AppVersion"`
	ProductCode string `yaml:"ProductCode"` // versioned suffix for env vars and paths, e.g. "231"

	InstallRoot   string `yaml:"InstallRoot"`   // vendor installation directory
	StagingPath   string `yaml:"StagingPath"`   // where the vendor payload is staged
	LicenseServer string `yaml:"LicenseServer"` // port@host license pointer

	SetupName    string `yaml:"SetupName"`    // vendor installer executable name
	ResponseFile string `yaml:"ResponseFile"` // silent-install response file name
	SilentArgs   string `yaml:"SilentArgs"`   // argument template, {response} expands to the response file path

	BlockingApps             []string `yaml:"BlockingApps"`
	CloseAppCountdownSeconds int      `yaml:"CloseAppCountdownSeconds"`
	AllowedDeferrals         int      `yaml:"AllowedDeferrals"`

	MinFreeSpaceGB     int `yaml:"MinFreeSpaceGB"`
	SettleDelaySeconds int `yaml:"SettleDelaySeconds"`

	StartMenuDir     string `yaml:"StartMenuDir"`
	StartMenuPattern string `yaml:"StartMenuPattern"`

	LogLevel                string `yaml:"LogLevel"`
	Debug                   bool   `yaml:"Debug"`
	Verbose                 bool   `yaml:"Verbose"`
	InstallerTimeoutMinutes int    `yaml:"InstallerTimeoutMinutes"`
}

// LoadConfig loads the configuration from the default YAML file.
// If the YAML file doesn't exist, it falls back to CSP OMA-URI registry settings.
func LoadConfig() (*Configuration, error) {
	if _, err := os.Stat(ConfigPath); os.IsNotExist(err) {
		log.Printf("Configuration file does not exist: %s", ConfigPath)
		log.Printf("Attempting to load configuration from CSP OMA-URI registry settings...")

		config, cspErr := LoadConfigFromCSP()
		if cspErr == nil {
			log.Printf("Successfully loaded configuration from CSP OMA-URI registry settings")
			return config, nil
		}

		log.Printf("Failed to load from CSP registry: %v", cspErr)
		log.Printf("Falling back to built-in defaults")
		return GetDefaultConfig(), nil
	}

	return Load(ConfigPath)
}

// Load reads and parses a configuration file from an explicit path,
// layering it over the built-in defaults.
func Load(path string) (*Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Failed to read configuration file: %v", err)
		return nil, err
	}

	config := GetDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		log.Printf("Failed to parse configuration file: %v", err)
		return nil, err
	}

	applyDefaults(config)
	return config, nil
}

// SaveConfig saves the current configuration to the default YAML file.
func SaveConfig(config *Configuration) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		log.Printf("Failed to serialize configuration: %v", err)
		return err
	}

	err = os.MkdirAll(filepath.Dir(ConfigPath), 0755)
	if err != nil {
		log.Printf("Failed to create configuration directory: %v", err)
		return err
	}

	err = os.WriteFile(ConfigPath, data, 0644)
	if err != nil {
		log.Printf("Failed to write configuration file: %v", err)
		return err
	}

	return nil
}

// GetDefaultConfig provides default configuration values for the
// Ansys Electromagnetics suite deployment.
func GetDefaultConfig() *Configuration {
	// Use ProgramW6432 environment variable to force 64-bit Program Files path
	programFiles := os.Getenv("ProgramW6432")
	if programFiles == "" {
		programFiles = `C:\Program Files`
	}
	cfg := &Configuration{
		AppVendor:   "Ansys",
		AppName:     "Electromagnetics Suite",
		AppVersion:  "2023 R1",
		ProductCode: "231",

		InstallRoot:   filepath.Join(programFiles, "AnsysEM"),
		LicenseServer: "1055@ansyslm.example.com",

		SetupName:    "setup.exe",
		ResponseFile: "silent_install.cfg",
		SilentArgs:   `-silent -responseFile "{response}"`,

		BlockingApps:             []string{"ansysedt.exe"},
		CloseAppCountdownSeconds: 90,
		AllowedDeferrals:         3,

		MinFreeSpaceGB:     30,
		SettleDelaySeconds: 60,

		StartMenuDir:     `C:\ProgramData\Microsoft\Windows\Start Menu\Programs`,
		StartMenuPattern: "ANSYS EM Suite*",

		LogLevel:                "INFO",
		InstallerTimeoutMinutes: 120,
	}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills in values that are derived from others when left empty.
func applyDefaults(cfg *Configuration) {
	if cfg.StagingPath == "" {
		if exe, err := os.Executable(); err == nil {
			cfg.StagingPath = filepath.Join(filepath.Dir(exe), "Files")
		} else {
			cfg.StagingPath = "Files"
		}
	}
	if cfg.InstallerTimeoutMinutes <= 0 {
		cfg.InstallerTimeoutMinutes = 120
	}
	if cfg.CloseAppCountdownSeconds <= 0 {
		cfg.CloseAppCountdownSeconds = 90
	}
}

// LoadConfigFromCSP loads configuration from Windows CSP OMA-URI registry settings.
// This serves as a fallback when the Config.yaml file doesn't exist.
func LoadConfigFromCSP() (*Configuration, error) {
	config := GetDefaultConfig()

	err := loadCSPFromRegistryPath(CSPRegistryPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to load from CSP registry path: %v", err)
	}

	log.Printf("Loaded CSP configuration from registry path: %s", CSPRegistryPath)
	applyDefaults(config)
	return config, nil
}

// loadCSPFromRegistryPath loads configuration values from a specific registry path.
func loadCSPFromRegistryPath(registryPath string, config *Configuration) error {
	key, err := registry.OpenKey(registry.LOCAL_MACHINE, registryPath, registry.READ)
	if err != nil {
		return fmt.Errorf("failed to open CSP registry key %s: %v", registryPath, err)
	}
	defer key.Close()

	// Load string configuration values
	loadStringFromRegistry(key, "AppVendor", &config.AppVendor)
	loadStringFromRegistry(key, "AppName", &config.AppName)
	loadStringFromRegistry(key, "AppVersion", &config.AppVersion)
	loadStringFromRegistry(key, "ProductCode", &config.ProductCode)
	loadStringFromRegistry(key, "InstallRoot", &config.InstallRoot)
	loadStringFromRegistry(key, "StagingPath", &config.StagingPath)
	loadStringFromRegistry(key, "LicenseServer", &config.LicenseServer)
	loadStringFromRegistry(key, "SetupName", &config.SetupName)
	loadStringFromRegistry(key, "ResponseFile", &config.ResponseFile)
	loadStringFromRegistry(key, "SilentArgs", &config.SilentArgs)
	loadStringFromRegistry(key, "StartMenuDir", &config.StartMenuDir)
	loadStringFromRegistry(key, "StartMenuPattern", &config.StartMenuPattern)
	loadStringFromRegistry(key, "LogLevel", &config.LogLevel)

	// Load integer configuration values
	loadIntFromRegistry(key, "CloseAppCountdownSeconds", &config.CloseAppCountdownSeconds)
	loadIntFromRegistry(key, "AllowedDeferrals", &config.AllowedDeferrals)
	loadIntFromRegistry(key, "MinFreeSpaceGB", &config.MinFreeSpaceGB)
	loadIntFromRegistry(key, "SettleDelaySeconds", &config.SettleDelaySeconds)
	loadIntFromRegistry(key, "InstallerTimeoutMinutes", &config.InstallerTimeoutMinutes)

	// Load boolean configuration values
	loadBoolFromRegistry(key, "Debug", &config.Debug)
	loadBoolFromRegistry(key, "Verbose", &config.Verbose)

	// Load array configuration values
	loadStringArrayFromRegistry(key, "BlockingApps", &config.BlockingApps)

	return nil
}

// loadStringFromRegistry loads a string value from registry if it exists.
func loadStringFromRegistry(key registry.Key, valueName string, target *string) {
	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		*target = val
		log.Printf("CSP: Loaded %s = %s", valueName, val)
	}
}

// loadBoolFromRegistry loads a boolean value from registry if it exists.
// Accepts various formats: "true"/"false", "1"/"0", DWORD 1/0
func loadBoolFromRegistry(key registry.Key, valueName string, target *bool) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.ParseBool(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %t", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = val != 0
		log.Printf("CSP: Loaded %s = %t", valueName, val != 0)
	}
}

// loadIntFromRegistry loads an integer value from registry if it exists.
func loadIntFromRegistry(key registry.Key, valueName string, target *int) {
	if val, _, err := key.GetStringValue(valueName); err == nil {
		if parsed, parseErr := strconv.Atoi(val); parseErr == nil {
			*target = parsed
			log.Printf("CSP: Loaded %s = %d", valueName, parsed)
			return
		}
	}

	if val, _, err := key.GetIntegerValue(valueName); err == nil {
		*target = int(val)
		log.Printf("CSP: Loaded %s = %d", valueName, int(val))
	}
}

// loadStringArrayFromRegistry loads a string array from registry.
// Arrays can be stored as comma-separated values or multi-string (REG_MULTI_SZ).
func loadStringArrayFromRegistry(key registry.Key, valueName string, target *[]string) {
	if vals, _, err := key.GetStringsValue(valueName); err == nil && len(vals) > 0 {
		filtered := make([]string, 0, len(vals))
		for _, val := range vals {
			if strings.TrimSpace(val) != "" {
				filtered = append(filtered, strings.TrimSpace(val))
			}
		}
		if len(filtered) > 0 {
			*target = filtered
			log.Printf("CSP: Loaded %s = %v", valueName, filtered)
			return
		}
	}

	if val, _, err := key.GetStringValue(valueName); err == nil && val != "" {
		parts := strings.Split(val, ",")
		filtered := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				filtered = append(filtered, trimmed)
			}
		}
		if len(filtered) > 0 {
			*target = filtered
			log.Printf("CSP: Loaded %s = %v", valueName, filtered)
		}
	}
}
