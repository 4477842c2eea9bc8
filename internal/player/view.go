package player

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/sceneforge/internal/expr"
	"github.com/dshills/sceneforge/internal/scene"
)

type rowKind int

const (
	rowHeading rowKind = iota
	rowItem
	rowActive
	rowSelected
)

type row struct {
	kind rowKind
	text string
}

const helpLine = "n next  p prev  r reset  f finish  up/down select  </> move  q quit"

var styles = map[rowKind]tcell.Style{
	rowHeading:  tcell.StyleDefault.Bold(true).Underline(true),
	rowItem:     tcell.StyleDefault,
	rowActive:   tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true),
	rowSelected: tcell.StyleDefault.Reverse(true),
}

// rows lays out the scene state. selected is -1 when no group is selected.
func rows(sc *scene.Scene, selected int) []row {
	reg := sc.Registry
	var out []row

	out = append(out, row{rowHeading, "Trackers"})
	for _, name := range reg.Names() {
		t, _ := reg.Tracker(name)
		out = append(out, row{rowItem, fmt.Sprintf("  %s = %s", name, expr.FormatNumber(t.Value()))})
	}
	for _, name := range reg.PointNames() {
		pt, _ := reg.PointTracker(name)
		v := pt.Point()
		out = append(out, row{rowItem, fmt.Sprintf("  %s = (%s, %s)", name, expr.FormatNumber(v.X), expr.FormatNumber(v.Y))})
	}

	out = append(out, row{rowHeading, "Links"})
	for _, text := range reg.Expressions() {
		out = append(out, row{rowItem, "  " + text})
	}

	l := sc.Ledger
	out = append(out, row{rowHeading, fmt.Sprintf("Ledger (next %d/%d)", l.ActiveIndex()+1, l.Len())})
	for i, g := range l.GroupsWithMeta() {
		marker := " "
		kind := rowItem
		if i == l.ActiveIndex() {
			marker = ">"
			kind = rowActive
		}
		if i == selected {
			kind = rowSelected
		}
		label := ""
		if g.Meta.Label != "" {
			label = g.Meta.Label + ": "
		}
		out = append(out, row{kind, fmt.Sprintf("%s %d %s%s", marker, i+1, label, strings.Join(g.IDs, ", "))})
	}
	return out
}

func (p *Player) draw() {
	s := p.screen
	s.Clear()
	width, height := s.Size()

	title := "sceneforge"
	if p.scene.Name != "" {
		title += ": " + p.scene.Name
	}
	drawText(s, 0, 0, width, tcell.StyleDefault.Bold(true), title)
	if p.status != "" && len(title)+len(p.status)+2 < width {
		drawText(s, width-len(p.status), 0, width, tcell.StyleDefault.Dim(true), p.status)
	}

	y := 2
	for _, r := range rows(p.scene, p.selected) {
		if y >= height-1 {
			break
		}
		drawText(s, 0, y, width, styles[r.kind], r.text)
		y++
	}
	drawText(s, 0, height-1, width, tcell.StyleDefault.Dim(true), helpLine)
	s.Show()
}

func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	for _, r := range text {
		if x >= width {
			return
		}
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
