package careers

import (
	"slices"
	"strings"

	"github.com/eureka-automation/eureka-site/internal/content"
)

// AllDepartments is the identity department filter.
const AllDepartments = "All"

// ViewMode switches between a flat list and department groups.
type ViewMode string

const (
	ViewAll      ViewMode = "all"
	ViewCategory ViewMode = "category"
)

// BoardState is the serializable state of the open-positions board.
type BoardState struct {
	Search     string   `json:"search"`
	Department string   `json:"department"`
	Mode       ViewMode `json:"mode"`
	Expanded   []string `json:"expanded"`
}

// DepartmentGroup is one section of the category view.
type DepartmentGroup struct {
	Department string               `json:"department"`
	Positions  []content.CareerView `json:"positions"`
}

// Board filters localized postings by search term and department.
type Board struct {
	positions []content.CareerView
	state     BoardState
}

// NewBoard starts with every position visible and none expanded.
func NewBoard(positions []content.CareerView) *Board {
	return &Board{
		positions: positions,
		state:     BoardState{Department: AllDepartments, Mode: ViewAll, Expanded: []string{}},
	}
}

// State returns a copy of the board state.
func (b *Board) State() BoardState {
	state := b.state
	state.Expanded = slices.Clone(b.state.Expanded)
	return state
}

// Positions returns every listed position.
func (b *Board) Positions() []content.CareerView { return b.positions }

// SetSearch updates the search term.
func (b *Board) SetSearch(term string) { b.state.Search = term }

// SetDepartment selects a department, or every department for "All" or "".
func (b *Board) SetDepartment(dept string) {
	dept = strings.TrimSpace(dept)
	if dept == "" {
		dept = AllDepartments
	}
	b.state.Department = dept
}

// SetMode switches the view. Unknown modes fall back to the flat list.
func (b *Board) SetMode(mode ViewMode) {
	if mode != ViewCategory {
		mode = ViewAll
	}
	b.state.Mode = mode
}

// Toggle expands or collapses the position with id and reports the new state.
func (b *Board) Toggle(id string) bool {
	if idx := slices.Index(b.state.Expanded, id); idx >= 0 {
		b.state.Expanded = slices.Delete(b.state.Expanded, idx, idx+1)
		return false
	}
	b.state.Expanded = append(b.state.Expanded, id)
	return true
}

// IsExpanded reports whether id is expanded.
func (b *Board) IsExpanded(id string) bool {
	return slices.Contains(b.state.Expanded, id)
}

// Departments returns the sorted unique trimmed department names.
func (b *Board) Departments() []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, position := range b.positions {
		dept := strings.TrimSpace(position.Dept)
		if dept == "" {
			continue
		}
		if _, ok := seen[dept]; ok {
			continue
		}
		seen[dept] = struct{}{}
		out = append(out, dept)
	}
	slices.Sort(out)
	return out
}

// Visible applies the search term and department filter, keeping order.
func (b *Board) Visible() []content.CareerView {
	term := strings.ToLower(b.state.Search)
	out := make([]content.CareerView, 0, len(b.positions))
	for _, position := range b.positions {
		if !matchesSearch(position, term) {
			continue
		}
		if b.state.Department != AllDepartments && strings.TrimSpace(position.Dept) != b.state.Department {
			continue
		}
		out = append(out, position)
	}
	return out
}

// Groups returns the visible positions grouped by department in first-seen order.
func (b *Board) Groups() []DepartmentGroup {
	var groups []DepartmentGroup
	index := map[string]int{}
	for _, position := range b.Visible() {
		dept := strings.TrimSpace(position.Dept)
		if dept == "" {
			continue
		}
		idx, ok := index[dept]
		if !ok {
			idx = len(groups)
			index[dept] = idx
			groups = append(groups, DepartmentGroup{Department: dept})
		}
		groups[idx].Positions = append(groups[idx].Positions, position)
	}
	return groups
}

func matchesSearch(position content.CareerView, term string) bool {
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(position.Title), term) ||
		strings.Contains(strings.ToLower(position.ID), term) ||
		strings.Contains(strings.ToLower(strings.Join(position.Desc, " ")), term)
}
