package ui

import (
	"context"

	"GoBoardOverlay/internal/overlay"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// RunApp opens the overlay window for peer and blocks until it is closed.
// shareLinks, when given, are shown read-only so they can be copied.
func RunApp(peer *overlay.Peer, shareLinks ...string) {
	myApp := app.New()
	title := "Go Board Overlay"
	if peer.Session.RoomID != "" {
		title += " - " + peer.Session.RoomID
	}
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(1280, 800))

	board := NewBoardWidget(peer)
	toolbar := NewToolbar(board, myWindow)

	links := container.NewVBox()
	for _, l := range shareLinks {
		if l == "" {
			continue
		}
		entry := widget.NewEntry()
		entry.SetText(l)
		entry.Disable()
		links.Add(entry)
	}

	myWindow.SetContent(container.NewBorder(toolbar, links, nil, nil, board))
	myWindow.Canvas().SetOnTypedKey(board.TypedKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go board.Run(ctx)

	myWindow.ShowAndRun()
	peer.Close()
}
