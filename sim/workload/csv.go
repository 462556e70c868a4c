package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvColumns are the recognized header names, case-insensitive.
// id, arrival and burst are required; priority defaults to 0, name to "P<id>".
var csvColumns = map[string]bool{"id": true, "name": true, "arrival": true, "burst": true, "priority": true}

// ReadCSV parses a process table. With a header row, columns may appear in any
// order. Without one, rows are read positionally as id,arrival,burst[,priority].
func ReadCSV(r io.Reader) ([]ProcessSpec, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing workload csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("parsing workload csv: empty input")
	}

	index := map[string]int{"id": 0, "arrival": 1, "burst": 2, "priority": 3}
	if isHeader(rows[0]) {
		index = make(map[string]int)
		for i, col := range rows[0] {
			name := strings.ToLower(strings.TrimSpace(col))
			if !csvColumns[name] {
				return nil, fmt.Errorf("parsing workload csv: unknown column %q", col)
			}
			index[name] = i
		}
		for _, required := range []string{"id", "arrival", "burst"} {
			if _, ok := index[required]; !ok {
				return nil, fmt.Errorf("parsing workload csv: missing column %q", required)
			}
		}
		rows = rows[1:]
	}

	procs := make([]ProcessSpec, 0, len(rows))
	for n, row := range rows {
		line := n + 1
		p, err := parseRow(row, index)
		if err != nil {
			return nil, fmt.Errorf("parsing workload csv: row %d: %w", line, err)
		}
		procs = append(procs, p)
	}
	return procs, nil
}

func isHeader(row []string) bool {
	for _, col := range row {
		if csvColumns[strings.ToLower(strings.TrimSpace(col))] {
			return true
		}
	}
	return false
}

func parseRow(row []string, index map[string]int) (ProcessSpec, error) {
	field := func(name string) (string, bool) {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return "", false
		}
		return strings.TrimSpace(row[i]), true
	}
	integer := func(name string, required bool) (int64, error) {
		v, ok := field(name)
		if !ok || v == "" {
			if required {
				return 0, fmt.Errorf("missing %s", name)
			}
			return 0, nil
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		return n, nil
	}

	var p ProcessSpec
	id, err := integer("id", true)
	if err != nil {
		return p, err
	}
	if p.Arrival, err = integer("arrival", true); err != nil {
		return p, err
	}
	if p.Burst, err = integer("burst", true); err != nil {
		return p, err
	}
	priority, err := integer("priority", false)
	if err != nil {
		return p, err
	}
	p.ID = int(id)
	p.Priority = int(priority)
	p.Name, _ = field("name")
	return p, nil
}
