// pkg/diskspace/diskspace.go - free-space guard for the system drive.

package diskspace

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

const bytesPerGB = 1024 * 1024 * 1024

// FreeBytes returns the free bytes available to the caller on the volume
// holding the given path.
func FreeBytes(path string) (uint64, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}

	var freeBytesAvailable, totalBytes, totalFreeBytes uint64
	if err := windows.GetDiskFreeSpaceEx(p, &freeBytesAvailable, &totalBytes, &totalFreeBytes); err != nil {
		return 0, fmt.Errorf("querying free space for %s: %w", path, err)
	}
	return freeBytesAvailable, nil
}

// SystemDriveFree returns the free bytes on the system drive.
func SystemDriveFree() (uint64, error) {
	drive := os.Getenv("SystemDrive")
	if drive == "" {
		drive = "C:"
	}
	return FreeBytes(drive + `\`)
}

// SufficientFree reports whether freeBytes satisfies the minimum
// free-space requirement in gigabytes.
func SufficientFree(freeBytes uint64, minGB int) bool {
	if minGB <= 0 {
		return true
	}
	return freeBytes >= uint64(minGB)*bytesPerGB
}

// FreeGB converts a byte count to whole gigabytes for display.
func FreeGB(freeBytes uint64) int {
	return int(freeBytes / bytesPerGB)
}
