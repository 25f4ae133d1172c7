// pkg/status/status_test.go

package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOlderVersion(t *testing.T) {
	assert.True(t, IsOlderVersion("22.2", "23.1"))
	assert.True(t, IsOlderVersion("23.1.0", "23.1.1"))
	assert.False(t, IsOlderVersion("23.1", "23.1"))
	assert.False(t, IsOlderVersion("23.2", "23.1"))
}

func TestIsOlderVersionUnparseable(t *testing.T) {
	// An unknown build must never be treated as an upgrade candidate.
	assert.False(t, IsOlderVersion("2023 R1", "23.1"))
	assert.False(t, IsOlderVersion("23.1", "not a version"))
	assert.False(t, IsOlderVersion("", ""))
}
