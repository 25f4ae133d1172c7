// pkg/ui/ui_test.go

package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPromptWithTimeoutUserAnswers(t *testing.T) {
	choice := promptWithTimeout(func() Choice { return ChoiceDefer }, time.Second)
	assert.Equal(t, ChoiceDefer, choice)
}

func TestPromptWithTimeoutElapses(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	choice := promptWithTimeout(func() Choice {
		<-block
		return ChoiceDefer
	}, 10*time.Millisecond)

	assert.Equal(t, ChoiceClose, choice, "an unanswered prompt closes on schedule")
}

func TestPromptWithTimeoutDisabled(t *testing.T) {
	choice := promptWithTimeout(func() Choice { return ChoiceDefer }, 0)
	assert.Equal(t, ChoiceDefer, choice)
}

func TestNoOpAlwaysCloses(t *testing.T) {
	n := NewNoOp()
	assert.Equal(t, ChoiceClose, n.CloseAppsPrompt([]string{"ansysedt.exe"}, time.Minute, 3))
}
