package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
)

// DatetimeFormat is the ISO-8601 layout time.Time parameters are bound with.
const DatetimeFormat = "2006-01-02T15:04:05.999999999-07:00"

// ErrIntegerRange is returned when an unsigned parameter does not fit in the
// engine's 64-bit signed integer.
var ErrIntegerRange = errors.New("integer out of range")

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func narrow[N, M integer](n N) (M, error) {
	m := M(n)
	if N(m) != n || (n < 0) != (m < 0) {
		return 0, ErrIntegerRange
	}
	return m, nil
}

// Bind converts a parameter to a value of one of the engine's storage
// classes: int64, float64, string, []byte or nil.
//
// Booleans become 0 or 1 and temporal values their ISO-8601 text. Values
// implementing driver.Valuer are resolved first. Anything without a better
// mapping is bound as its fmt.Sprint form.
func Bind(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case int64, float64, string, []byte:
		return x, nil
	case time.Time:
		return x.Format(DatetimeFormat), nil
	case civil.Date:
		return x.String(), nil
	case civil.Time:
		return x.String(), nil
	case civil.DateTime:
		return x.String(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, nil
	}
	if valuer, ok := v.(driver.Valuer); ok {
		val, err := valuer.Value()
		if err != nil {
			return nil, fmt.Errorf("types: resolving %T: %w", v, err)
		}
		return Bind(val)
	}

	switch rv.Kind() {
	case reflect.Pointer:
		return Bind(rv.Elem().Interface())
	case reflect.Bool:
		return Bind(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := narrow[uint64, int64](rv.Uint())
		if err != nil {
			return nil, fmt.Errorf("types: binding %v: %w", v, err)
		}
		return n, nil
	case reflect.Float32, reflect.Float64:
		return rv.Float(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return rv.Bytes(), nil
		}
	}
	return fmt.Sprint(v), nil
}

// BindAll applies Bind to every parameter, keeping their order.
func BindAll(params []any) ([]any, error) {
	if len(params) == 0 {
		return nil, nil
	}
	bound := make([]any, len(params))
	for i, p := range params {
		b, err := Bind(p)
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", i+1, err)
		}
		bound[i] = b
	}
	return bound, nil
}
