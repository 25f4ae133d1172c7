// pkg/sysinfo/sysinfo.go - system facts recorded once per deployment session.
//
// Gathered over WMI so the deployment log identifies the machine class the
// run happened on (model, domain membership, OS build, memory).

package sysinfo

import (
	"fmt"
	"os"

	"github.com/yusufpapurcu/wmi"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// Facts contains the machine information logged with every session.
type Facts struct {
	Hostname     string `json:"hostname"`
	Model        string `json:"model,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Domain       string `json:"domain,omitempty"`
	PartOfDomain bool   `json:"part_of_domain"`
	OSCaption    string `json:"os_caption,omitempty"`
	OSVersion    string `json:"os_version,omitempty"`
	FreeMemoryKB uint64 `json:"free_memory_kb,omitempty"`
}

type win32ComputerSystem struct {
	Model        string `wmi:"Model"`
	Manufacturer string `wmi:"Manufacturer"`
	Domain       string `wmi:"Domain"`
	PartOfDomain bool   `wmi:"PartOfDomain"`
}

type win32OperatingSystem struct {
	Caption            string `wmi:"Caption"`
	Version            string `wmi:"Version"`
	FreePhysicalMemory uint64 `wmi:"FreePhysicalMemory"`
}

// Gather collects machine facts. WMI failures degrade to partial facts
// rather than failing the deployment.
func Gather() Facts {
	facts := Facts{}
	facts.Hostname, _ = os.Hostname()

	var cs []win32ComputerSystem
	if err := wmi.Query("SELECT Model, Manufacturer, Domain, PartOfDomain FROM Win32_ComputerSystem", &cs); err != nil {
		logging.Debug("Win32_ComputerSystem query failed", "error", err)
	} else if len(cs) > 0 {
		facts.Model = cs[0].Model
		facts.Manufacturer = cs[0].Manufacturer
		facts.Domain = cs[0].Domain
		facts.PartOfDomain = cs[0].PartOfDomain
	}

	var osInfo []win32OperatingSystem
	if err := wmi.Query("SELECT Caption, Version, FreePhysicalMemory FROM Win32_OperatingSystem", &osInfo); err != nil {
		logging.Debug("Win32_OperatingSystem query failed", "error", err)
	} else if len(osInfo) > 0 {
		facts.OSCaption = osInfo[0].Caption
		facts.OSVersion = osInfo[0].Version
		facts.FreeMemoryKB = osInfo[0].FreePhysicalMemory
	}

	return facts
}

// LogSession writes the gathered facts to the session log.
func LogSession(facts Facts) {
	logging.Info("Session system facts",
		"hostname", facts.Hostname,
		"model", facts.Model,
		"manufacturer", facts.Manufacturer,
		"domain", facts.Domain,
		"part_of_domain", fmt.Sprintf("%t", facts.PartOfDomain),
		"os", facts.OSCaption,
		"os_version", facts.OSVersion,
		"free_memory_kb", facts.FreeMemoryKB,
	)
}
