// Package types is the value bridge between SQLite's five storage classes and
// richer Go values.
//
// Conversion is keyed off the declared type of each result column rather
// than the runtime value: a TEXT value in a DATE column comes back as a
// civil.Date, the same text in a VARCHAR column stays a string. Outbound, Bind
// reduces any supported Go value to one of int64, float64, string, []byte or
// nil before it reaches the engine.
package types

import (
	"strings"
)

// TypeCode is a column's declared type with any size or precision suffix
// removed, upper-cased.
type TypeCode string

const (
	None     TypeCode = ""
	Integer  TypeCode = "INTEGER"
	Varchar  TypeCode = "VARCHAR"
	Text     TypeCode = "TEXT"
	Date     TypeCode = "DATE"
	Datetime TypeCode = "DATETIME"
	Boolean  TypeCode = "BOOLEAN"
	Float    TypeCode = "FLOAT"
	Blob     TypeCode = "BLOB"
	Time     TypeCode = "TIME"
)

// CoarseTypeCode strips a parenthesized suffix from a declared column type:
// "VARCHAR(10)" and "varchar (10)" both become VARCHAR. Expressions and
// untyped columns have no declared type and map to None.
func CoarseTypeCode(declared string) TypeCode {
	name, _, _ := strings.Cut(declared, "(")
	return TypeCode(strings.ToUpper(strings.TrimSpace(name)))
}

// TypeObject groups type codes that compare equal to one client-interface
// type category.
type TypeObject struct {
	Name  string
	codes []TypeCode
}

// Matches reports whether code belongs to the category.
func (o TypeObject) Matches(code TypeCode) bool {
	for _, c := range o.codes {
		if c == code {
			return true
		}
	}
	return false
}

func (o TypeObject) String() string {
	return o.Name
}

var (
	STRING   = TypeObject{Name: "STRING", codes: []TypeCode{Text, Varchar}}
	BINARY   = TypeObject{Name: "BINARY", codes: []TypeCode{Blob}}
	NUMBER   = TypeObject{Name: "NUMBER", codes: []TypeCode{Integer, Float, Boolean}}
	DATETIME = TypeObject{Name: "DATETIME", codes: []TypeCode{Date, Datetime, Time}}
	ROWID    = TypeObject{Name: "ROWID", codes: []TypeCode{Integer}}
)
