package ui

import (
	"fmt"

	"github.com/anushkanegi003/google-meet/internal/client"
)

// FormatEvent renders one relay event as a single styled line.
func FormatEvent(ev client.Event) string {
	switch ev.Kind {
	case client.EventPeerJoined:
		return fmt.Sprintf("%s %s", IconPeer, MutedStyle.Render(ev.Participant+" joined"))
	case client.EventPeerLeft:
		return fmt.Sprintf("%s %s", IconLeave, MutedStyle.Render(ev.Participant+" left"))
	case client.EventChat:
		from := ev.Chat.From
		if from == "" {
			from = "someone"
		}
		return fmt.Sprintf("%s %s", SenderStyle.Render(from+":"), ev.Chat.Text)
	default:
		return MutedStyle.Render(string(ev.Raw))
	}
}
