package types

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Converter turns a value read from the engine into its Go representation.
type Converter func(v any) (any, error)

// ConversionError reports a stored value that does not parse as its
// column's declared type.
type ConversionError struct {
	Code  TypeCode
	Value any
	Err   error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %#v to %s: %v", e.Value, e.Code, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// ConverterFor returns the inbound conversion for a coarse type code. Codes
// without a conversion, including ones this package has never heard of, get
// the identity function.
func ConverterFor(code TypeCode) Converter {
	switch code {
	case Date:
		return toDate
	case Datetime:
		return toDatetime
	case Time:
		return toTime
	default:
		return passThrough
	}
}

// Convert applies the conversion for code to v.
func Convert(code TypeCode, v any) (any, error) {
	return ConverterFor(code)(v)
}

func passThrough(v any) (any, error) {
	return v, nil
}

// datetimeLayouts are the ISO-8601 shapes accepted for DATETIME columns, most
// specific first. Layouts without a zone parse as UTC.
var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

func text(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s), true
	case []byte:
		return strings.TrimSpace(string(s)), true
	}
	return "", false
}

// ParseDatetime parses an ISO-8601 date or date-time string.
func ParseDatetime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// ParseTime parses an ISO-8601 time of day, with or without seconds.
func ParseTime(s string) (civil.Time, error) {
	t, err := civil.ParseTime(s)
	if err == nil {
		return t, nil
	}
	if hm, hmErr := time.Parse("15:04", s); hmErr == nil {
		return civil.TimeOf(hm), nil
	}
	return civil.Time{}, err
}

func toDate(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return civil.DateOf(x), nil
	case civil.Date:
		return x, nil
	}
	s, ok := text(v)
	if !ok {
		return nil, &ConversionError{Code: Date, Value: v, Err: fmt.Errorf("unexpected storage type %T", v)}
	}
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}
	t, err := ParseDatetime(s)
	if err != nil {
		return nil, &ConversionError{Code: Date, Value: v, Err: err}
	}
	return civil.DateOf(t), nil
}

func toDatetime(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return x, nil
	}
	s, ok := text(v)
	if !ok {
		return nil, &ConversionError{Code: Datetime, Value: v, Err: fmt.Errorf("unexpected storage type %T", v)}
	}
	t, err := ParseDatetime(s)
	if err != nil {
		return nil, &ConversionError{Code: Datetime, Value: v, Err: err}
	}
	return t, nil
}

func toTime(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return civil.TimeOf(x), nil
	case civil.Time:
		return x, nil
	}
	s, ok := text(v)
	if !ok {
		return nil, &ConversionError{Code: Time, Value: v, Err: fmt.Errorf("unexpected storage type %T", v)}
	}
	t, err := ParseTime(s)
	if err != nil {
		return nil, &ConversionError{Code: Time, Value: v, Err: err}
	}
	return t, nil
}
