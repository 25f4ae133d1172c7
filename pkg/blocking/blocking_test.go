// pkg/blocking/blocking_test.go

package blocking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesProcessName(t *testing.T) {
	tests := []struct {
		process string
		app     string
		want    bool
	}{
		{"ansysedt.exe", "ansysedt.exe", true},
		{"ansysedt.exe", "ansysedt", true},
		{"ANSYSEDT.EXE", "ansysedt.exe", true},
		{"ansysedt.exe", "AnsysEDT", true},
		{"ansysedt", "ansysedt.exe", false},
		{"notepad.exe", "ansysedt.exe", false},
		{"ansysedt2.exe", "ansysedt.exe", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesProcessName(tt.process, tt.app),
			"process %q vs app %q", tt.process, tt.app)
	}
}

func TestRunningAppsEmptyList(t *testing.T) {
	assert.Empty(t, RunningApps(nil))
}

func TestCloseAppsNothingRunning(t *testing.T) {
	// A name that cannot exist as a real process.
	assert.NoError(t, CloseApps([]string{"definitely-not-running-xyz.exe"}, 0))
}
