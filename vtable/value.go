package vtable

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"
)

// ValueKind discriminates the variants of Value. The set is closed: SQLite
// has exactly these five storage classes.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInteger
	KindFloat
	KindText
	KindBlob
)

// Value is a single typed datum crossing the virtual-table boundary: a bound
// filter argument on the way in, a column result on the way out. A Value is
// immutable once constructed.
type Value struct {
	kind  ValueKind
	num   int64
	fnum  float64
	text  string
	bytes []byte
}

// NullValue returns the SQL NULL value.
func NullValue() Value { return Value{kind: KindNull} }

// IntegerValue returns an integer Value.
func IntegerValue(v int64) Value { return Value{kind: KindInteger, num: v} }

// FloatValue returns a floating-point Value.
func FloatValue(v float64) Value { return Value{kind: KindFloat, fnum: v} }

// TextValue returns a text Value.
func TextValue(v string) Value { return Value{kind: KindText, text: v} }

// BlobValue returns a blob Value. The payload is copied so later mutation of
// the argument cannot alter the Value.
func BlobValue(v []byte) Value {
	return Value{kind: KindBlob, bytes: append([]byte(nil), v...)}
}

// Kind reports the variant of the value.
func (v Value) Kind() ValueKind { return v.kind }

// IsNull reports whether the value is SQL NULL.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Int64 returns the value as an integer. Floats truncate, numeric text is
// parsed, everything else yields zero.
func (v Value) Int64() int64 {
	switch v.kind {
	case KindInteger:
		return v.num
	case KindFloat:
		return int64(v.fnum)
	case KindText:
		n, _ := strconv.ParseInt(v.text, 10, 64)
		return n
	default:
		return 0
	}
}

// Float64 returns the value as a float. Integers widen, numeric text is
// parsed, everything else yields zero.
func (v Value) Float64() float64 {
	switch v.kind {
	case KindFloat:
		return v.fnum
	case KindInteger:
		return float64(v.num)
	case KindText:
		f, _ := strconv.ParseFloat(v.text, 64)
		return f
	default:
		return 0
	}
}

// Text returns the textual payload. Non-text values are formatted.
func (v Value) Text() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindFloat:
		return strconv.FormatFloat(v.fnum, 'g', -1, 64)
	case KindBlob:
		return string(v.bytes)
	default:
		return ""
	}
}

// Blob returns the blob payload, or nil for non-blob values.
func (v Value) Blob() []byte {
	if v.kind != KindBlob {
		return nil
	}
	return append([]byte(nil), v.bytes...)
}

// Equal reports variant-and-payload equality. NULL follows SQL semantics and
// is never equal to anything, including another NULL.
func (v Value) Equal(o Value) bool {
	if v.kind == KindNull || o.kind == KindNull {
		return false
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInteger:
		return v.num == o.num
	case KindFloat:
		return v.fnum == o.fnum
	case KindText:
		return v.text == o.text
	case KindBlob:
		return bytes.Equal(v.bytes, o.bytes)
	}
	return false
}

// String implements fmt.Stringer for diagnostics.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindText:
		return strconv.Quote(v.text)
	case KindBlob:
		return fmt.Sprintf("x'%x'", v.bytes)
	default:
		return v.Text()
	}
}

// valueFromDriver converts a raw driver value supplied by the engine into a
// Value. The engine hands over int64, float64, string, []byte or nil.
func valueFromDriver(dv driver.Value) Value {
	switch val := dv.(type) {
	case nil:
		return NullValue()
	case int64:
		return IntegerValue(val)
	case float64:
		return FloatValue(val)
	case string:
		return TextValue(val)
	case []byte:
		return BlobValue(val)
	case bool:
		if val {
			return IntegerValue(1)
		}
		return IntegerValue(0)
	default:
		return TextValue(fmt.Sprint(val))
	}
}

// driverValue converts a Value back into the engine's raw representation.
func (v Value) driverValue() driver.Value {
	switch v.kind {
	case KindInteger:
		return v.num
	case KindFloat:
		return v.fnum
	case KindText:
		return v.text
	case KindBlob:
		return append([]byte(nil), v.bytes...)
	default:
		return nil
	}
}
