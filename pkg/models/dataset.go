package models

import "sort"

// ============================================================================
// Record
// ============================================================================

// Record maps column names to scalar values. Column order lives on the
// owning Dataset; a Record missing a schema column reads as null.
type Record map[string]Value

// Get returns the value for a column, or null if the column is absent.
func (r Record) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Clone returns a copy of the record. Downstream nodes must never mutate
// an upstream node's output in place.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordFromRaw builds a Record from arbitrary decoded values.
func RecordFromRaw(raw map[string]any) Record {
	rec := make(Record, len(raw))
	for k, v := range raw {
		rec[k] = Infer(v)
	}
	return rec
}

// ============================================================================
// Dataset
// ============================================================================

// Dataset is a finite, ordered sequence of Records sharing a nominal
// schema. The schema is inferred from the first record; columns absent
// from later records are treated as null, not an error.
type Dataset struct {
	ID      string   `json:"id,omitempty"`
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

// NewDataset builds a dataset from records, inferring the schema from the
// first record. Column order within the first record is not observable on
// a Go map, so columns are sorted for reproducible schemas unless an
// explicit order is supplied via NewDatasetWithColumns.
func NewDataset(name string, records []Record) Dataset {
	ds := Dataset{Name: name, Records: records}
	if len(records) > 0 {
		ds.Columns = sortedColumns(records[0])
	}
	return ds
}

// NewDatasetWithColumns builds a dataset with an explicit column order.
func NewDatasetWithColumns(name string, columns []string, records []Record) Dataset {
	return Dataset{Name: name, Columns: columns, Records: records}
}

// DatasetFromRaw builds a dataset from rows of arbitrary decoded values.
func DatasetFromRaw(name string, rows []map[string]any) Dataset {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = RecordFromRaw(row)
	}
	return NewDataset(name, records)
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.Records)
}

// IsEmpty returns true if the dataset holds no records.
func (d Dataset) IsEmpty() bool {
	return len(d.Records) == 0
}

// HasColumn returns true if the schema contains the named column.
func (d Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	out := Dataset{ID: d.ID, Name: d.Name}
	out.Columns = append([]string(nil), d.Columns...)
	out.Records = make([]Record, len(d.Records))
	for i, r := range d.Records {
		out.Records[i] = r.Clone()
	}
	return out
}

// Concat appends the records of other, merging schema columns in order of
// first appearance.
func Concat(datasets ...Dataset) Dataset {
	var out Dataset
	seen := make(map[string]bool)
	for _, ds := range datasets {
		for _, c := range ds.Columns {
			if !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
		out.Records = append(out.Records, ds.Records...)
	}
	return out
}

func sortedColumns(r Record) []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
