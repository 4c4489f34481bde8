// Package export writes the assignments of a solution in tabular formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/adsp/core/model"
)

// Row is one resource assignment joined with its operation and resource.
type Row struct {
	Operation   int    `json:"operation"`
	Card        string `json:"card"`
	Requirement int    `json:"requirement"`
	Resource    int    `json:"resource"`
	Name        string `json:"resource_name"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
	Cost        int    `json:"cost"`
}

// Rows joins every assignment of sol with its instance data.
func Rows(sol *model.Solution) []Row {
	ops := make(map[int]model.Operation, len(sol.Instance.Operations))
	for _, op := range sol.Instance.Operations {
		ops[op.ID] = op
	}
	res := make(map[int]model.Resource, len(sol.Instance.Resources))
	for _, r := range sol.Instance.Resources {
		res[r.ID] = r
	}
	out := make([]Row, 0, len(sol.Assignments))
	for _, a := range sol.Assignments {
		r := res[a.Resource]
		out = append(out, Row{
			Operation:   a.Operation,
			Card:        ops[a.Operation].Card,
			Requirement: a.Requirement,
			Resource:    a.Resource,
			Name:        r.Name,
			Start:       a.Start,
			End:         a.End,
			Cost:        (a.End - a.Start) * r.Cost,
		})
	}
	return out
}

// WriteJSON writes the assignment rows of sol to w in JSON format.
func WriteJSON(w io.Writer, sol *model.Solution) error {
	enc := json.NewEncoder(w)
	return enc.Encode(Rows(sol))
}

// WriteCSV writes the assignment rows of sol to w in CSV format with a header.
func WriteCSV(w io.Writer, sol *model.Solution) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"operation", "card", "requirement", "resource", "resource_name", "start", "end", "cost"}); err != nil {
		return err
	}
	for _, r := range Rows(sol) {
		rec := []string{
			strconv.Itoa(r.Operation),
			r.Card,
			strconv.Itoa(r.Requirement),
			strconv.Itoa(r.Resource),
			r.Name,
			strconv.Itoa(r.Start),
			strconv.Itoa(r.End),
			strconv.Itoa(r.Cost),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
