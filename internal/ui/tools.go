package ui

import (
	"image/color"
	"log"

	"GoBoardOverlay/internal/colors"
	"GoBoardOverlay/internal/export"
	"GoBoardOverlay/internal/input"
	"GoBoardOverlay/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// swatchColors are the first palette entries offered as marker colors.
const swatchColors = 6

type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(colors.Parse(s.Hex, black))
	rect.SetMinSize(fyne.NewSize(24, 24))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

func toolNames() []string {
	names := make([]string, len(input.Tools))
	for i, t := range input.Tools {
		names[i] = string(t)
	}
	return names
}

// NewToolbar builds the commentator controls. Viewers get only the export
// action and the status line.
func NewToolbar(board *BoardWidget, w fyne.Window) fyne.CanvasObject {
	peer := board.peer
	ctrl := peer.Controller

	exportAction := widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
		dialog.ShowFileSave(func(wc fyne.URIWriteCloser, err error) {
			if err != nil || wc == nil {
				return
			}
			defer wc.Close()
			sc := peer.Scene()
			sc.Hover = nil
			if err := export.Write(wc, sc); err != nil {
				log.Printf("[UI] Export failed: %v", err)
				board.SetStatus("Export failed")
				return
			}
			board.SetStatus("Exported " + wc.URI().Name())
		}, w)
	})

	if peer.Session.IsViewer() {
		return container.NewHBox(widget.NewToolbar(exportAction), layout.NewSpacer(), board.statusBar)
	}

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.ContentUndoIcon(), func() { ctrl.Key(input.KeyLeft); board.Refresh() }),
		widget.NewToolbarAction(theme.ContentRedoIcon(), func() { ctrl.Key(input.KeyRight); board.Refresh() }),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() { ctrl.Key(input.KeySpace); board.Refresh() }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { ctrl.Key(input.KeyDelete); board.Refresh() }),
		widget.NewToolbarAction(theme.ViewRefreshIcon(), func() { ctrl.Key(input.KeyReset); board.Refresh() }),
		widget.NewToolbarSeparator(),
		exportAction,
	)

	tools := widget.NewSelect(toolNames(), func(name string) {
		ctrl.SetTool(input.Tool(name))
	})
	tools.SetSelected(string(ctrl.Tool()))

	onColorTapped := func(hex string) {
		ctrl.SetColor(hex)
		board.Refresh()
	}
	colorBox := container.NewHBox()
	for _, hex := range colors.Palette[:swatchColors] {
		colorBox.Add(newColorSwatch(hex, onColorTapped))
	}

	sizeSlider := widget.NewSlider(50, 200)
	sizeSlider.SetValue(float64(peer.StoneSize()))
	sizeSlider.OnChanged = func(v float64) {
		peer.SetStoneSize(int(v))
	}
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(120, 35)), sizeSlider)

	triangles := widget.NewCheck("Triangles", func(on bool) {
		style := state.MarkerNumbers
		if on {
			style = state.MarkerTriangle
		}
		ctrl.SetMarkerStyle(style)
	})
	coords := widget.NewCheck("Coordinates", peer.SetShowCoordinates)
	coords.SetChecked(peer.ShowCoordinates())

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tools,
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Stones:"),
		sliderContainer,
		triangles,
		coords,
		layout.NewSpacer(),
		board.statusBar,
	)
}
