// Package notify derives local notifications from the task store and
// schedules their delivery.
package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// SummaryID is the fixed identifier of the rolling summary notification.
// Every recomputation targets this id, so delivery replaces the previous
// summary instead of stacking a duplicate.
const SummaryID = "8888"

// Notification is the descriptor handed to the delivery collaborator. The
// composer decides every field; the collaborator only delivers.
type Notification struct {
	ID         string
	Title      string
	Message    string
	BigText    string
	Color      string
	Number     int // badge count, 0 means no badge
	AutoCancel bool
	Ongoing    bool
	Vibrate    bool
	PlaySound  bool
	SoundName  string
}

// baseNotification carries the delivery defaults; composed notifications
// override what they need.
func baseNotification() Notification {
	return Notification{
		Message:   "todue notification",
		Vibrate:   true,
		PlaySound: true,
		SoundName: "default",
	}
}

// Notifier is the delivery collaborator. Send failures are non-fatal; the
// next recomputation tries again naturally.
type Notifier interface {
	Send(Notification) error
}

type NoopNotifier struct{}

func (NoopNotifier) Send(Notification) error { return nil }

// ExecNotifier delivers through the host's notification command.
type ExecNotifier struct{}

func (ExecNotifier) Send(n Notification) error {
	body := n.Message
	if n.BigText != "" {
		body = n.BigText
	}
	switch runtime.GOOS {
	case "linux":
		return exec.Command("notify-send", n.Title, body).Run()
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			escapeAppleScript(body), escapeAppleScript(n.Title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return nil
	}
}

func escapeAppleScript(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
