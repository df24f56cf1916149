package export

import (
	"encoding/json"
	"fmt"
)

// Columns is the header of the jobs table, in order.
var Columns = []string{"id", "title", "clicks", "applies", "cpc", "cpa", "spent"}

// Strategy locates the list of job records inside a report payload.
type Strategy struct {
	Name string
	Find func(data any) []any
}

func fieldArray(field string) func(data any) []any {
	return func(data any) []any {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil
		}
		arr, _ := obj[field].([]any)
		return arr
	}
}

// Strategies is the ordered list of places the jobs report has been seen
// to keep its records in. The api is unversioned, so this is a guess at
// its shape and the first strategy yielding a non-empty array wins.
var Strategies = []Strategy{
	{
		Name: "top-level array",
		Find: func(data any) []any {
			arr, _ := data.([]any)
			return arr
		},
	},
	{Name: "jobs", Find: fieldArray("jobs")},
	{Name: "data", Find: fieldArray("data")},
	{Name: "job_groups", Find: fieldArray("job_groups")},
}

// Discover runs Strategies against data, it returns the name of the
// strategy that matched or false if none did.
func Discover(data any) ([]any, string, bool) {
	for _, s := range Strategies {
		records := s.Find(data)
		if len(records) > 0 {
			return records, s.Name, true
		}
	}
	return nil, "", false
}

// JobRecord is one row of the jobs table, values are kept as the text the
// api sent, numbers are not reformatted.
type JobRecord [7]string

func (r JobRecord) Get(column string) string {
	for i, c := range Columns {
		if c == column {
			return r[i]
		}
	}
	return ""
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		// only reachable for data decoded without UseNumber
		return fmt.Sprint(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}

// lookup tries the record itself and then its nested "stats" object,
// null counts as absent.
func lookup(record map[string]any, field string) string {
	if v, ok := record[field]; ok && v != nil {
		return stringify(v)
	}
	stats, ok := record["stats"].(map[string]any)
	if ok {
		if v, ok := stats[field]; ok && v != nil {
			return stringify(v)
		}
	}
	return ""
}

func toRecord(element any) JobRecord {
	var row JobRecord
	obj, ok := element.(map[string]any)
	if !ok {
		return row
	}
	for i, column := range Columns {
		row[i] = lookup(obj, column)
	}
	return row
}

// Records flattens the records found by Discover into rows.
func Records(data any) ([]JobRecord, bool) {
	elements, _, ok := Discover(data)
	if !ok {
		return nil, false
	}
	rows := make([]JobRecord, len(elements))
	for i, e := range elements {
		rows[i] = toRecord(e)
	}
	return rows, true
}
