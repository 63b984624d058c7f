package mapreduce

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dtnitsch/referendum-map/models"
)

func joinedRow(codeReg, nameReg string, registered, abst, null, a, b int64) models.JoinedRecord {
	return models.JoinedRecord{
		Referendum: models.ReferendumRecord{
			Registered:  registered,
			Abstentions: abst,
			Null:        null,
			ChoiceA:     a,
			ChoiceB:     b,
		},
		Area: models.AreaRecord{CodeReg: codeReg, NameReg: nameReg},
	}
}

var testJoined = []models.JoinedRecord{
	joinedRow("84", "Auvergne-Rhône-Alpes", 592, 84, 8, 229, 271),
	joinedRow("44", "Grand Est", 300, 60, 5, 100, 135),
	joinedRow("84", "Auvergne-Rhône-Alpes", 215, 45, 4, 53, 113),
	joinedRow("44", "Grand Est", 1000, 200, 20, 350, 430),
	joinedRow("28", "Normandie", 800, 150, 10, 300, 340),
}

func TestAggregateByRegion(t *testing.T) {
	got, err := AggregateByRegion(testJoined)
	if err != nil {
		t.Fatalf("AggregateByRegion() error = %v", err)
	}

	want := []models.RegionResult{
		{CodeReg: "28", NameReg: "Normandie", Registered: 800, Abstentions: 150, Null: 10, ChoiceA: 300, ChoiceB: 340},
		{CodeReg: "44", NameReg: "Grand Est", Registered: 1300, Abstentions: 260, Null: 25, ChoiceA: 450, ChoiceB: 565},
		{CodeReg: "84", NameReg: "Auvergne-Rhône-Alpes", Registered: 807, Abstentions: 129, Null: 12, ChoiceA: 282, ChoiceB: 384},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AggregateByRegion() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateByRegion_SumInvariant(t *testing.T) {
	got, err := AggregateByRegion(testJoined)
	if err != nil {
		t.Fatalf("AggregateByRegion() error = %v", err)
	}

	var joinedRegistered int64
	for _, j := range testJoined {
		joinedRegistered += j.Referendum.Registered
	}
	if total := Totals(got).Registered; total != joinedRegistered {
		t.Errorf("Totals().Registered = %d, want %d", total, joinedRegistered)
	}
}

func TestAggregateByRegion_Deterministic(t *testing.T) {
	first, err := AggregateByRegion(testJoined)
	if err != nil {
		t.Fatalf("AggregateByRegion() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := AggregateByRegion(testJoined)
		if err != nil {
			t.Fatalf("AggregateByRegion() error = %v", err)
		}
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestAggregateByRegion_Empty(t *testing.T) {
	got, err := AggregateByRegion(nil)
	if err != nil {
		t.Fatalf("AggregateByRegion(nil) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("AggregateByRegion(nil) = %v, want empty", got)
	}
}

func TestAggregateByRegion_InconsistentName(t *testing.T) {
	joined := []models.JoinedRecord{
		joinedRow("28", "Normandie", 1, 0, 0, 1, 0),
		joinedRow("28", "Basse-Normandie", 1, 0, 0, 1, 0),
	}
	if _, err := AggregateByRegion(joined); !errors.Is(err, models.ErrInconsistentRegion) {
		t.Errorf("AggregateByRegion() error = %v, want ErrInconsistentRegion", err)
	}
}

func TestReduce(t *testing.T) {
	left, err := Map(testJoined[:2])
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}
	right, err := Map(testJoined[2:])
	if err != nil {
		t.Fatalf("Map() error = %v", err)
	}

	reduced, err := Reduce([]Tally{left, right})
	if err != nil {
		t.Fatalf("Reduce() error = %v", err)
	}
	whole, err := AggregateByRegion(testJoined)
	if err != nil {
		t.Fatalf("AggregateByRegion() error = %v", err)
	}
	if diff := cmp.Diff(whole, reduced.Results()); diff != "" {
		t.Errorf("Reduce() differs from single pass (-want +got):\n%s", diff)
	}
}

func TestRankRegions(t *testing.T) {
	results := []models.RegionResult{
		{CodeReg: "11", NameReg: "Île-de-France", ChoiceA: 400000, ChoiceB: 340000},
		{CodeReg: "28", NameReg: "Normandie", ChoiceA: 300, ChoiceB: 340},
		{CodeReg: "32", NameReg: "Hauts-de-France", ChoiceA: 300, ChoiceB: 340},
		{CodeReg: "99", NameReg: "Empty"},
	}

	got := RankRegions(results, 2)
	if len(got) != 2 {
		t.Fatalf("len(RankRegions) = %d, want 2", len(got))
	}
	if got[0].CodeReg != "11" || got[1].CodeReg != "28" {
		t.Errorf("RankRegions() order = %s, %s; want 11, 28", got[0].CodeReg, got[1].CodeReg)
	}

	all := RankRegions(results, -1)
	if len(all) != 3 {
		t.Errorf("RankRegions(-1) = %d rows, want 3 (empty region skipped)", len(all))
	}

	top := TopRegions(results, 1)
	if diff := cmp.Diff([]string{"Île-de-France:54.05%"}, top); diff != "" {
		t.Errorf("TopRegions() mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregateByRegion_ManyDepartments(t *testing.T) {
	row := func(codeDep, codeReg, nameReg string, registered, a, b int64) models.JoinedRecord {
		j := joinedRow(codeReg, nameReg, registered, 0, 0, a, b)
		j.Area.CodeDep = codeDep
		return j
	}
	joined := []models.JoinedRecord{
		row("14", "28", "Normandie", 100, 30, 50),
		row("08", "44", "Grand Est", 200, 60, 90),
		row("14", "28", "Normandie", 50, 10, 20),
		row("27", "28", "Normandie", 70, 20, 30),
		row("51", "44", "Grand Est", 10, 1, 2),
	}

	got, err := AggregateByRegion(joined)
	if err != nil {
		t.Fatalf("AggregateByRegion() error = %v", err)
	}
	want := []models.RegionResult{
		{CodeReg: "28", NameReg: "Normandie", Registered: 220, ChoiceA: 60, ChoiceB: 100},
		{CodeReg: "44", NameReg: "Grand Est", Registered: 210, ChoiceA: 61, ChoiceB: 92},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AggregateByRegion() mismatch (-want +got):\n%s", diff)
	}

	if groups := groupByDepartment(joined); len(groups) != 4 || len(groups[0]) != 2 {
		t.Errorf("groupByDepartment() = %d groups, first has %d lines; want 4 and 2", len(groups), len(groups[0]))
	}
}

func TestAggregateByRegion_InconsistentNameAcrossDepartments(t *testing.T) {
	a := joinedRow("28", "Normandie", 1, 0, 0, 1, 1)
	a.Area.CodeDep = "14"
	b := joinedRow("28", "Basse-Normandie", 1, 0, 0, 1, 1)
	b.Area.CodeDep = "50"

	_, err := AggregateByRegion([]models.JoinedRecord{a, b})
	if !errors.Is(err, models.ErrInconsistentRegion) {
		t.Errorf("AggregateByRegion() error = %v, want ErrInconsistentRegion", err)
	}
}

func TestPrintTopRegions(t *testing.T) {
	results := []models.RegionResult{
		{CodeReg: "28", NameReg: "Normandie", ChoiceA: 30, ChoiceB: 70},
		{CodeReg: "94", NameReg: "Corse", ChoiceA: 20, ChoiceB: 20},
	}

	var buf bytes.Buffer
	PrintTopRegions(&buf, results, 5)
	want := "1. Corse: 50.00%\n2. Normandie: 30.00%\n"
	if buf.String() != want {
		t.Errorf("PrintTopRegions() = %q, want %q", buf.String(), want)
	}
}
