package uifilter

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindDate
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// isoDateTime matches the date-time strings the table widgets send for date filters.
var isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d*)?(Z|[-+]\d{2}:\d{2})$`)

// Value is a filter operand. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	t    time.Time
	// raw keeps the text a date was decoded from.
	raw  string
	list []Value
}

func Null() Value                { return Value{} }
func String(s string) Value      { return Value{kind: KindString, str: s} }
func Number(n float64) Value     { return Value{kind: KindNumber, num: n} }
func Int(n int) Value            { return Value{kind: KindNumber, num: float64(n)} }
func Bool(b bool) Value          { return Value{kind: KindBool, b: b} }
func Date(t time.Time) Value     { return Value{kind: KindDate, t: t} }
func List(values ...Value) Value { return Value{kind: KindList, list: cloneValues(values)} }

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether v carries nothing to filter on: null, "" or an empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == ""
	case KindList:
		return len(v.list) == 0
	default:
		return false
	}
}

// IsFalsy reports whether the grid would treat v as no value at all: empty, zero, NaN or false.
func (v Value) IsFalsy() bool {
	switch v.kind {
	case KindNumber:
		return v.num == 0 || math.IsNaN(v.num)
	case KindBool:
		return !v.b
	default:
		return v.IsEmpty()
	}
}

func (v Value) AsString() (string, bool)  { return v.str, v.kind == KindString }
func (v Value) AsNumber() (float64, bool) { return v.num, v.kind == KindNumber }
func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == KindBool }
func (v Value) AsDate() (time.Time, bool) { return v.t, v.kind == KindDate }

// AsList returns a copy of the list elements.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return cloneValues(v.list), true
}

// String renders the value as text, which is how text columns compare against it.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindDate:
		if v.raw != "" {
			return v.raw
		}
		return v.t.Format(time.RFC3339Nano)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.String()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindBool:
		return v.b == o.b
	case KindDate:
		return v.t.Equal(o.t)
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) clone() Value {
	if v.kind == KindList {
		v.list = cloneValues(v.list)
	}
	return v
}

func cloneValues(values []Value) []Value {
	if values == nil {
		return nil
	}
	out := make([]Value, len(values))
	for i, item := range values {
		out[i] = item.clone()
	}
	return out
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	case KindDate:
		return json.Marshal(v.String())
	case KindList:
		items := v.list
		if items == nil {
			items = []Value{}
		}
		return json.Marshal(items)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty filter value")
	}

	switch data[0] {
	case 'n':
		*v = Null()
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Wrap(err, "decode string filter value")
		}
		*v = parseString(s)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return errors.Wrap(err, "decode bool filter value")
		}
		*v = Bool(b)
	case '[':
		var items []Value
		if err := json.Unmarshal(data, &items); err != nil {
			return errors.Wrap(err, "decode list filter value")
		}
		*v = Value{kind: KindList, list: items}
	case '{':
		return errors.New("object filter values are not supported")
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.Wrap(err, "decode number filter value")
		}
		*v = Number(n)
	}

	return nil
}

func parseString(s string) Value {
	if isoDateTime.MatchString(s) {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return Value{kind: KindDate, t: t, raw: s}
		}
	}
	return String(s)
}
