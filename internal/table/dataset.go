package table

import "github.com/google/uuid"

// Dataset is an immutable typed snapshot of a loaded source together with
// its processed column descriptors.
type Dataset struct {
	ID      string
	Source  string
	Columns []Column
	Records []Record
	Stats   TransformStats
}

// Build validates the schema, coerces raw rows and runs the column processors.
func Build(source string, raw []RawRecord, cols []Column) (*Dataset, error) {
	if err := Validate(cols); err != nil {
		return nil, err
	}
	records, stats := Transform(raw, cols)
	return &Dataset{
		ID:      uuid.NewString(),
		Source:  source,
		Columns: Process(cols, records),
		Records: records,
		Stats:   stats,
	}, nil
}

// Column returns the processed descriptor for name.
func (d *Dataset) Column(name string) (Column, bool) {
	return Lookup(d.Columns, name)
}
