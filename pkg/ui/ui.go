// pkg/ui/ui.go - user-facing prompts and progress for deployment phases.
//
// The Driver talks to this interface only; interactive runs get real
// dialogs, silent and non-interactive runs get the no-op implementation.

package ui

import (
	"time"
)

// Choice is the user's answer to the close-applications prompt.
type Choice int

const (
	// ChoiceClose proceeds with the deployment, closing blocking apps.
	ChoiceClose Choice = iota
	// ChoiceDefer postpones the deployment to a later run.
	ChoiceDefer
)

// UserInterface is the surface the deployment driver uses to talk to an
// interactive user. All methods must be safe to call in any mode.
type UserInterface interface {
	// CloseAppsPrompt tells the user which applications must close and
	// how long they have before forced closure. When deferralsLeft is
	// positive the user may choose to defer instead.
	CloseAppsPrompt(apps []string, countdown time.Duration, deferralsLeft int) Choice

	// ShowProgress surfaces a phase progress message.
	ShowProgress(message string)

	// CloseProgress dismisses any visible progress indicator.
	CloseProgress()

	// ShowMessage displays an informational prompt and waits for dismissal.
	ShowMessage(title, message string)

	// ShowError displays a blocking error dialog.
	ShowError(title, message string)
}

// promptWithTimeout runs a blocking prompt and answers ChoiceClose once the
// countdown elapses without a response, so an unattended dialog cannot stall
// the deployment past its countdown. A non-positive countdown waits forever.
func promptWithTimeout(show func() Choice, countdown time.Duration) Choice {
	if countdown <= 0 {
		return show()
	}

	answered := make(chan Choice, 1)
	go func() { answered <- show() }()

	select {
	case choice := <-answered:
		return choice
	case <-time.After(countdown):
		return ChoiceClose
	}
}

// NoOp is the UserInterface for Silent and NonInteractive deploy modes:
// prompts auto-answer "close" and nothing is displayed.
type NoOp struct{}

// NewNoOp returns the silent UserInterface.
func NewNoOp() *NoOp {
	return &NoOp{}
}

func (n *NoOp) CloseAppsPrompt(apps []string, countdown time.Duration, deferralsLeft int) Choice {
	return ChoiceClose
}

func (n *NoOp) ShowProgress(message string) {}

func (n *NoOp) CloseProgress() {}

func (n *NoOp) ShowMessage(title, message string) {}

func (n *NoOp) ShowError(title, message string) {}
