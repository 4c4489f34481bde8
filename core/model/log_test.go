package model

import "testing"

func sampleLog() Log {
	return Log{
		Instance:      "x",
		MakespanBound: 10,
		CostBound:     100,
		Entries: []LogEntry{
			{Time: 1, Makespan: 14, Cost: 150},
			{Time: 2, Makespan: 12, Cost: 160},
			{Time: 3, Makespan: 12, Cost: 140},
			{Time: 4, Makespan: 12, Cost: 140},
			{Time: 5, Makespan: 12, Cost: 120},
		},
	}
}

func TestLogAnalytics(t *testing.T) {
	l := sampleLog()
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"best makespan", l.BestMakespan(), 12},
		{"best cost", l.BestCost(), 120},
		{"time to best makespan", l.TimeToBestMakespan(), 2.0},
		{"time to best cost", l.TimeToBestCost(), 5.0},
		{"first makespan", l.FirstMakespan(), 14},
		{"last cost", l.LastCost(), 120},
		{"first solution", l.TimeToFirstSolution(), 1.0},
		{"last solution", l.TimeToLastSolution(), 5.0},
		{"lexicographic", l.IsLexicographic(), true},
		{"second phase", l.SecondPhaseStart(), 4.0},
		{"best cost from 4", l.BestCostFrom(4), 120},
		{"first cost from 4", l.FirstCostFrom(4), 140},
		{"first makespan from 6", l.FirstMakespanFrom(6), NoValue},
		{"makespan optimal", l.IsMakespanOptimal(), false},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v want %v", c.name, c.got, c.want)
		}
	}
}

func TestEmptyLog(t *testing.T) {
	var l Log
	if l.BestMakespan() != NoValue || l.FirstCost() != NoValue || l.LastMakespan() != NoValue {
		t.Fatalf("expected sentinels on empty log")
	}
	if l.TimeToFirstSolution() != NoTime || l.IsLexicographic() {
		t.Fatalf("unexpected time or lexicographic flag on empty log")
	}
}

func TestGap(t *testing.T) {
	if g := Gap(110, 100); g < 0.0999 || g > 0.1001 {
		t.Fatalf("gap = %v", g)
	}
}
