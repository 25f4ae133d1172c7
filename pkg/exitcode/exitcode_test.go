// pkg/exitcode/exitcode_test.go

package exitcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRebootRequired(t *testing.T) {
	assert.True(t, IsRebootRequired(RebootRequired))
	assert.True(t, IsRebootRequired(RebootInitiated))
	assert.False(t, IsRebootRequired(Success))
	assert.False(t, IsRebootRequired(UnhandledFault))
	assert.False(t, IsRebootRequired(1))
}

func TestReservedValues(t *testing.T) {
	// These values are contractual with the distribution system; changing
	// one silently breaks reporting.
	assert.Equal(t, 0, Success)
	assert.Equal(t, 3010, RebootRequired)
	assert.Equal(t, 1641, RebootInitiated)
	assert.Equal(t, 60001, UnhandledFault)
	assert.Equal(t, 60008, BootstrapFailure)
	assert.Equal(t, 69004, InsufficientDiskSpace)
	assert.Equal(t, 69602, DeploymentDeferred)
}
