package dbapi

import (
	"database/sql/driver"

	"github.com/tomyedwab/sqlite-dbapi/types"
)

// Column describes one result column. The size, precision and scale slots
// exist for interface compatibility; the engine does not report them.
type Column struct {
	Name         string
	TypeCode     types.TypeCode
	DisplaySize  *int
	InternalSize *int
	Precision    *int
	Scale        *int
	NullOK       bool
}

// Description lists the columns of the last result set. It is nil after a
// statement that produces no columns.
type Description []Column

// Names returns the column names in order.
func (d Description) Names() []string {
	names := make([]string, len(d))
	for i, c := range d {
		names[i] = c.Name
	}
	return names
}

// describe reads name and declared type for every column of rows.
func describe(rows driver.Rows) Description {
	names := rows.Columns()
	if len(names) == 0 {
		return nil
	}
	typed, _ := rows.(driver.RowsColumnTypeDatabaseTypeName)
	desc := make(Description, len(names))
	for i, name := range names {
		var declared string
		if typed != nil {
			declared = typed.ColumnTypeDatabaseTypeName(i)
		}
		desc[i] = Column{
			Name:     name,
			TypeCode: types.CoarseTypeCode(declared),
			NullOK:   true,
		}
	}
	return desc
}
