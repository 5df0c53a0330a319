package ui

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/anushkanegi003/google-meet/internal/relay"
)

// RenderRooms writes a table of occupied rooms to w.
func RenderRooms(w io.Writer, connections int, rooms []relay.RoomStat) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}

	t.AppendHeader(table.Row{"#", "Room", "Members"})

	members := 0
	for i, r := range rooms {
		t.AppendRow(table.Row{i + 1, r.RoomID, r.Members})
		members += r.Members
	}

	t.AppendFooter(table.Row{"", "Joined / open connections", text.Colors{text.FgHiBlack}.Sprintf("%d / %d", members, connections)})
	t.Render()
}
