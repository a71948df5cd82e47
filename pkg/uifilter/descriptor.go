package uifilter

import (
	"reflect"
	"strings"
	"sync"
	"time"
)

// DataType selects how a column is compared.
type DataType uint8

const (
	Text DataType = iota
	Numeric
	DateTime
)

func (d DataType) String() string {
	switch d {
	case Numeric:
		return "numeric"
	case DateTime:
		return "date"
	default:
		return "text"
	}
}

// FieldDescriptor maps a filter field onto a column.
type FieldDescriptor struct {
	Column   string
	DataType DataType
	// Global fields are searched by the "global" filter key.
	Global bool
}

// DescriptorMap is keyed by the field name the client uses.
type DescriptorMap map[string]FieldDescriptor

var descriptorCache sync.Map // reflect.Type -> DescriptorMap

var timeType = reflect.TypeOf(time.Time{})

// DescriptorsFor reads the `uifilter` struct tags of model, once per type.
//
//	Name string `json:"name" db:"name" uifilter:"name,global"`
//
// The tag name defaults to the json name and the column to the db tag. Fields without a
// uifilter tag cannot be filtered or sorted on. The returned map is shared and must not be
// modified.
func DescriptorsFor(model any) DescriptorMap {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return DescriptorMap{}
	}

	if cached, ok := descriptorCache.Load(t); ok {
		return cached.(DescriptorMap)
	}

	actual, _ := descriptorCache.LoadOrStore(t, registerType(t))
	return actual.(DescriptorMap)
}

func registerType(t reflect.Type) DescriptorMap {
	dm := DescriptorMap{}
	if t.Kind() != reflect.Struct {
		return dm
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag, ok := field.Tag.Lookup("uifilter")
		if !ok || tag == "-" || !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = jsonName(field)
		}

		column := field.Tag.Get("db")
		if column == "" {
			column = strings.ToLower(field.Name)
		}

		dm[name] = FieldDescriptor{
			Column:   column,
			DataType: dataTypeOf(field.Type),
			Global:   hasOption(opts, "global"),
		}
	}

	return dm
}

func dataTypeOf(t reflect.Type) DataType {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return DateTime
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Numeric
	default:
		return Text
	}
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return field.Name
	}
	return name
}

func hasOption(opts, want string) bool {
	for _, opt := range strings.Split(opts, ",") {
		if strings.TrimSpace(opt) == want {
			return true
		}
	}
	return false
}
