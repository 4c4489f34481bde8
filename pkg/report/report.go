// Package report renders a solution and its search log as a static HTML
// page of charts.
package report

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/adsp/core/check"
	"github.com/kilianp07/adsp/core/model"
)

// ErrNothingToRender is returned when neither a solution nor a log is given.
var ErrNothingToRender = errors.New("report: no solution and no log")

const (
	idleColor = "transparent"
	busyColor = "#5470c6"
)

// Render writes an HTML page to w. The schedule charts need sol and the
// progress charts need log; either may be nil.
func Render(w io.Writer, title string, sol *model.Solution, log *model.Log) error {
	if sol == nil && (log == nil || len(log.Entries) == 0) {
		return ErrNothingToRender
	}
	page := components.NewPage()
	page.PageTitle = title
	if sol != nil {
		if sol.Instance == nil {
			return errors.New("report: solution has no instance")
		}
		page.AddCharts(OperationsGantt(sol), ResourceGantt(sol))
		af, lr, err := check.BalanceProfile(sol)
		if err != nil {
			return fmt.Errorf("report: balance: %w", err)
		}
		page.AddCharts(BalanceChart(sol.Instance, af, lr))
		occ, err := check.OccupancyProfile(sol)
		if err != nil {
			return fmt.Errorf("report: occupancy: %w", err)
		}
		page.AddCharts(OccupancyChart(sol.Instance, occ))
	}
	if log != nil && len(log.Entries) > 0 {
		page.AddCharts(ProgressChart(*log, "Makespan", log.MakespanBound, func(e model.LogEntry) int { return e.Makespan }))
		page.AddCharts(ProgressChart(*log, "Cost", log.CostBound, func(e model.LogEntry) int { return e.Cost }))
	}
	return page.Render(w)
}

// Row is one line of a Gantt chart as alternating idle and busy lengths,
// starting with idle time from 0.
type Row struct {
	Label    string
	Segments []int
}

func gantt(title, axis string, rows []Row) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Name: axis}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "item"}),
	)
	labels := make([]string, len(rows))
	depth := 0
	for i, r := range rows {
		labels[i] = r.Label
		depth = max(depth, len(r.Segments))
	}
	bar.SetXAxis(labels)
	for k := 0; k < depth; k++ {
		name, color := "busy", busyColor
		if k%2 == 0 {
			name, color = "idle", idleColor
		}
		data := make([]opts.BarData, len(rows))
		for i, r := range rows {
			v := 0
			if k < len(r.Segments) {
				v = r.Segments[k]
			}
			data[i] = opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: color}}
		}
		bar.AddSeries(name, data, charts.WithBarChartOpts(opts.BarChart{Stack: "gantt"}))
	}
	return bar.XYReversal()
}

// OperationRows returns one row per operation in instance order.
// Operations without an activity get an empty row.
func OperationRows(sol *model.Solution) []Row {
	rows := make([]Row, 0, len(sol.Instance.Operations))
	for _, op := range sol.Instance.Operations {
		r := Row{Label: op.Card}
		if r.Label == "" {
			r.Label = op.Name
		}
		if a, ok := sol.Activity(op.ID); ok {
			r.Segments = []int{a.Start, a.End - a.Start}
		}
		rows = append(rows, r)
	}
	return rows
}

// ResourceRows returns one row per resource with its assignments in time
// order.
func ResourceRows(sol *model.Solution) []Row {
	rows := make([]Row, 0, len(sol.Instance.Resources))
	for _, res := range sol.Instance.Resources {
		as := sol.AssignmentsOf(res.ID)
		sort.Slice(as, func(i, j int) bool { return as[i].Start < as[j].Start })
		r := Row{Label: res.Name}
		t := 0
		for _, a := range as {
			r.Segments = append(r.Segments, max(a.Start-t, 0), a.End-a.Start)
			t = max(t, a.End)
		}
		rows = append(rows, r)
	}
	return rows
}

// OperationsGantt charts the activity of every operation.
func OperationsGantt(sol *model.Solution) *charts.Bar {
	return gantt("Operations", "time", OperationRows(sol))
}

// ResourceGantt charts the assignments of every resource.
func ResourceGantt(sol *model.Solution) *charts.Bar {
	return gantt("Resources", "time", ResourceRows(sol))
}

// Times returns the sorted distinct times of the given profiles.
func Times(profiles ...[]check.Point) []int {
	seen := make(map[int]struct{})
	var out []int
	for _, p := range profiles {
		for _, pt := range p {
			if _, ok := seen[pt.Time]; !ok {
				seen[pt.Time] = struct{}{}
				out = append(out, pt.Time)
			}
		}
	}
	sort.Ints(out)
	return out
}

// LevelAt returns the level of a profile at t, 0 before its first point.
func LevelAt(points []check.Point, t int) int {
	level := 0
	for _, p := range points {
		if p.Time > t {
			break
		}
		level = p.Level
	}
	return level
}

func labels(times []int) []string {
	out := make([]string, len(times))
	for i, t := range times {
		out[i] = strconv.Itoa(t)
	}
	return out
}

func series(points []check.Point, times []int, shift int) []opts.LineData {
	out := make([]opts.LineData, len(times))
	for i, t := range times {
		out[i] = opts.LineData{Value: LevelAt(points, t) - shift}
	}
	return out
}

// BalanceChart plots the AF and LR mass differences around zero.
func BalanceChart(inst *model.Instance, af, lr []check.Point) *charts.Line {
	times := Times(af, lr)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Balance",
			Subtitle: fmt.Sprintf("AF within ±%d, LR within ±%d", inst.BalanceAF, inst.BalanceLR),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "mass"}),
	)
	line.SetXAxis(labels(times)).
		AddSeries("AF", series(af, times, inst.BalanceAF)).
		AddSeries("LR", series(lr, times, inst.BalanceLR))
	return line
}

// OccupancyChart plots the occupancy of every used location.
func OccupancyChart(inst *model.Instance, occ map[int][]check.Point) *charts.Line {
	all := make([][]check.Point, 0, len(occ))
	for _, p := range occ {
		all = append(all, p)
	}
	times := Times(all...)
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Occupancy"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "time"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "occupancy"}),
	)
	line.SetXAxis(labels(times))
	for _, loc := range inst.Locations {
		if p, ok := occ[loc.ID]; ok {
			line.AddSeries(fmt.Sprintf("%s (cap %d)", loc.Name, loc.Capacity), series(p, times, 0))
		}
	}
	return line
}

// ProgressChart plots one objective of every log entry against its bound.
func ProgressChart(log model.Log, name string, bound int, value func(model.LogEntry) int) *charts.Line {
	x := make([]string, len(log.Entries))
	ys := make([]opts.LineData, len(log.Entries))
	bs := make([]opts.LineData, len(log.Entries))
	for i, e := range log.Entries {
		x[i] = strconv.FormatFloat(e.Time, 'f', 2, 64)
		ys[i] = opts.LineData{Value: value(e)}
		bs[i] = opts.LineData{Value: bound}
	}
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: name + " progress", Subtitle: log.Instance}),
		charts.WithXAxisOpts(opts.XAxis{Name: "seconds"}),
		charts.WithYAxisOpts(opts.YAxis{Name: name}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
	)
	line.SetXAxis(x).AddSeries(name, ys).AddSeries("bound", bs)
	return line
}
