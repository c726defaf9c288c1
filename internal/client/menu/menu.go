// Package menu models the collapsible extensions menu shown under a pass.
package menu

import "github.com/vova4o/passkeeper/internal/models"

// RowKind identifies a menu row
type RowKind int

// Menu rows in display order
const (
	RowHeader RowKind = iota
	RowWatch
	RowWidget
	RowChirp
)

// Row is one visible menu entry
type Row struct {
	Kind    RowKind
	Title   string
	Detail  string
	Checked bool
}

// Destination returns the exclusivity group a row pins the pass to
func (r Row) Destination() (models.Destination, bool) {
	switch r.Kind {
	case RowWatch:
		return models.Watch, true
	case RowWidget:
		return models.Widget, true
	default:
		return 0, false
	}
}

// State is the expansion state of one menu. The zero value is collapsed.
type State struct {
	expanded bool
}

// Toggle flips between collapsed and expanded
func (s *State) Toggle() {
	s.expanded = !s.expanded
}

// Expanded reports whether the extension rows are visible
func (s *State) Expanded() bool {
	return s.expanded
}

// Rows returns the visible rows for pass
func (s *State) Rows(pass models.Pass) []Row {
	rows := []Row{{Kind: RowHeader, Title: "Extensions"}}
	if !s.expanded {
		return rows
	}

	return append(rows,
		Row{
			Kind:    RowWatch,
			Title:   "Set Watch",
			Detail:  "Your pass will be readily available on the watch app.",
			Checked: pass.IsOnWatch,
		},
		Row{
			Kind:    RowWidget,
			Title:   "Set Widget",
			Detail:  "Your pass will be readily available in the lockscreen widget.",
			Checked: pass.IsOnWidget,
		},
		Row{
			Kind:   RowChirp,
			Title:  "Play Chirp",
			Detail: "Chirp is like an audio QR code. Your pass data is sent via sound.",
		},
	)
}
