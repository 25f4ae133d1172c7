// pkg/ui/interactive.go - dialog-based UserInterface for interactive runs.

package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gonutz/w32"
	"golang.org/x/sys/windows"

	"github.com/windowsadmins/ansysdeploy/pkg/logging"
)

// Interactive shows native message boxes for prompts and mirrors progress
// to the session log.
type Interactive struct {
	appTitle string
}

// NewInteractive returns a dialog-based UserInterface titled with the
// product being deployed.
func NewInteractive(appTitle string) *Interactive {
	return &Interactive{appTitle: appTitle}
}

// CloseAppsPrompt shows the close-applications dialog. The dialog itself is
// bounded by the countdown: a user who never answers gets the same forced
// closure a dismissed prompt would, on schedule.
func (i *Interactive) CloseAppsPrompt(apps []string, countdown time.Duration, deferralsLeft int) Choice {
	appList := strings.Join(apps, "\n  ")

	if deferralsLeft > 0 {
		text := fmt.Sprintf(
			"The following applications must be closed before %s can continue:\n\n  %s\n\n"+
				"They will be closed automatically in %s.\n\n"+
				"Choose Yes to close them now, or No to defer (%d deferral(s) remaining).",
			i.appTitle, appList, countdown.Round(time.Second), deferralsLeft)
		return promptWithTimeout(func() Choice {
			ret := w32.MessageBox(0, text, i.appTitle, w32.MB_YESNO|w32.MB_ICONWARNING|windows.MB_SETFOREGROUND)
			if ret == w32.IDNO {
				return ChoiceDefer
			}
			return ChoiceClose
		}, countdown)
	}

	text := fmt.Sprintf(
		"The following applications must be closed before %s can continue:\n\n  %s\n\n"+
			"Please save your work. They will be closed automatically in %s.",
		i.appTitle, appList, countdown.Round(time.Second))
	return promptWithTimeout(func() Choice {
		w32.MessageBox(0, text, i.appTitle, w32.MB_OK|w32.MB_ICONWARNING|windows.MB_SETFOREGROUND)
		return ChoiceClose
	}, countdown)
}

func (i *Interactive) ShowProgress(message string) {
	logging.Info("Progress", "message", message)
	fmt.Printf("  %s\n", message)
}

func (i *Interactive) CloseProgress() {}

func (i *Interactive) ShowMessage(title, message string) {
	w32.MessageBox(0, message, title, w32.MB_OK|w32.MB_ICONINFORMATION|windows.MB_SETFOREGROUND)
}

func (i *Interactive) ShowError(title, message string) {
	w32.MessageBox(0, message, title, w32.MB_OK|w32.MB_ICONERROR|windows.MB_SETFOREGROUND|windows.MB_SYSTEMMODAL)
}
