package careers

import (
	"reflect"
	"testing"

	"github.com/eureka-automation/eureka-site/internal/content"
)

func samplePositions() []content.CareerView {
	return []content.CareerView{
		{ID: "p1", Dept: "Engineering ", Title: "PLC Engineer", Desc: []string{"Ladder logic", "Commissioning"}},
		{ID: "p2", Dept: "Sales", Title: "Sales Engineer", Desc: []string{"Key accounts"}},
		{ID: "p3", Dept: "Engineering", Title: "Robot Programmer", Desc: []string{"ABB and FANUC cells"}},
		{ID: "p4", Dept: "", Title: "Intern"},
	}
}

func visibleIDs(positions []content.CareerView) []string {
	out := []string{}
	for _, position := range positions {
		out = append(out, position.ID)
	}
	return out
}

func TestBoardDepartmentsSortedUnique(t *testing.T) {
	board := NewBoard(samplePositions())
	if got := board.Departments(); !reflect.DeepEqual(got, []string{"Engineering", "Sales"}) {
		t.Fatalf("unexpected departments %v", got)
	}
}

func TestBoardSearchAndDepartmentFilter(t *testing.T) {
	board := NewBoard(samplePositions())

	board.SetSearch("ENGINEER")
	if got := visibleIDs(board.Visible()); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Fatalf("unexpected search result %v", got)
	}

	board.SetSearch("fanuc")
	if got := visibleIDs(board.Visible()); !reflect.DeepEqual(got, []string{"p3"}) {
		t.Fatalf("expected description match, got %v", got)
	}

	board.SetSearch("p2")
	if got := visibleIDs(board.Visible()); !reflect.DeepEqual(got, []string{"p2"}) {
		t.Fatalf("expected id match, got %v", got)
	}

	board.SetSearch("")
	board.SetDepartment("Engineering")
	if got := visibleIDs(board.Visible()); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Fatalf("expected trimmed department match, got %v", got)
	}

	board.SetDepartment("")
	if board.State().Department != AllDepartments || len(board.Visible()) != 4 {
		t.Fatalf("expected all departments, got %+v", board.State())
	}
}

func TestBoardToggleAndGroups(t *testing.T) {
	board := NewBoard(samplePositions())
	if !board.Toggle("p1") || !board.IsExpanded("p1") {
		t.Fatal("expected p1 expanded")
	}
	if board.Toggle("p1") || board.IsExpanded("p1") {
		t.Fatal("expected p1 collapsed")
	}

	board.SetMode(ViewCategory)
	if board.State().Mode != ViewCategory {
		t.Fatalf("expected category mode, got %s", board.State().Mode)
	}
	board.SetMode("grid")
	if board.State().Mode != ViewAll {
		t.Fatalf("expected fallback to all, got %s", board.State().Mode)
	}

	groups := board.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %+v", groups)
	}
	if groups[0].Department != "Engineering" || groups[1].Department != "Sales" {
		t.Fatalf("unexpected group order %+v", groups)
	}
	if got := visibleIDs(groups[0].Positions); !reflect.DeepEqual(got, []string{"p1", "p3"}) {
		t.Fatalf("unexpected engineering positions %v", got)
	}
}
