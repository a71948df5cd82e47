package uifilter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// ErrInvalidFilter is returned when a filter value or mode does not fit its column.
var ErrInvalidFilter = errors.New("invalid filter")

var comparisonOps = map[MatchMode]string{
	MatchEquals:    "=",
	MatchNotEquals: "<>",
	MatchLt:        "<",
	MatchLte:       "<=",
	MatchGt:        ">",
	MatchGte:       ">=",
}

// Specification turns the filters of a request into a WHERE predicate.
type Specification struct {
	Request     FilterRequest
	Descriptors DescriptorMap
}

// Predicate ANDs the per-field predicates together. It returns nil when nothing filters.
// Fields missing from the descriptor map are ignored.
func (s Specification) Predicate() (squirrel.Sqlizer, error) {
	keys := make([]string, 0, len(s.Request.Filters))
	for key := range s.Request.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var outer squirrel.And
	for _, key := range keys {
		p, err := s.fieldPredicate(key, s.Request.Filters[key])
		if err != nil {
			return nil, err
		}
		if p != nil {
			outer = append(outer, p)
		}
	}

	if len(outer) == 0 {
		return nil, nil
	}
	return outer, nil
}

func (s Specification) fieldPredicate(key string, entries []FilterData) (squirrel.Sqlizer, error) {
	var (
		inner    []squirrel.Sqlizer
		operator Operator
	)

	for _, fd := range entries {
		if fd.Operator != "" {
			operator = fd.Operator
		}
		if fd.Value.IsEmpty() {
			continue
		}

		if key == GlobalKey {
			inner = append(inner, s.globalPredicate(fd))
			continue
		}

		desc, ok := s.Descriptors[key]
		if !ok {
			return nil, nil
		}

		p, err := predicate(desc, fd)
		if err != nil {
			return nil, errors.Wrapf(err, "filter %q", key)
		}
		inner = append(inner, p)
	}

	if len(inner) == 0 {
		return nil, nil
	}

	switch operator {
	case "", OperatorOr:
		return squirrel.Or(inner), nil
	case OperatorAnd:
		return squirrel.And(inner), nil
	default:
		return nil, errors.Wrapf(ErrInvalidFilter, "filter %q: unknown operator %q", key, operator)
	}
}

// globalPredicate ORs fd over every global field that can take its value. When none can,
// the result matches nothing.
func (s Specification) globalPredicate(fd FilterData) squirrel.Sqlizer {
	names := make([]string, 0, len(s.Descriptors))
	for name, desc := range s.Descriptors {
		if desc.Global {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var globals squirrel.Or
	for _, name := range names {
		if p, err := predicate(s.Descriptors[name], fd); err == nil {
			globals = append(globals, p)
		}
	}
	return globals
}

func predicate(desc FieldDescriptor, fd FilterData) (squirrel.Sqlizer, error) {
	mode := NormalizeMatchMode(fd.MatchMode)
	if mode == "" {
		mode = defaultMatchMode(desc.DataType)
	}

	switch desc.DataType {
	case Numeric:
		return numericPredicate(desc.Column, mode, fd.Value)
	case DateTime:
		return datePredicate(desc.Column, mode, fd.Value)
	default:
		return textPredicate(desc.Column, mode, fd.Value)
	}
}

func defaultMatchMode(dt DataType) MatchMode {
	if dt == Text {
		return MatchContains
	}
	return MatchEquals
}

func textPredicate(column string, mode MatchMode, v Value) (squirrel.Sqlizer, error) {
	col := "LOWER(" + column + ")"

	if mode == MatchIn {
		items := listOf(v)
		values := make([]string, len(items))
		for i, item := range items {
			values[i] = strings.ToLower(item.String())
		}
		return squirrel.Expr(col+" = ANY(?)", pq.Array(values)), nil
	}

	if v.Kind() == KindList {
		return nil, errors.Wrapf(ErrInvalidFilter, "%s does not take a list", mode)
	}
	s := strings.ToLower(v.String())

	switch mode {
	case MatchStartsWith:
		return squirrel.Expr(col+" LIKE ?", escapeLike(s)+"%"), nil
	case MatchContains:
		return squirrel.Expr(col+" LIKE ?", "%"+escapeLike(s)+"%"), nil
	case MatchNotContains:
		return squirrel.Expr(col+" NOT LIKE ?", "%"+escapeLike(s)+"%"), nil
	case MatchEndsWith:
		return squirrel.Expr(col+" LIKE ?", "%"+escapeLike(s)), nil
	case MatchEquals:
		return squirrel.Expr(col+" = ?", s), nil
	case MatchNotEquals:
		return squirrel.Expr(col+" <> ?", s), nil
	default:
		return nil, errors.Wrapf(ErrInvalidFilter, "match mode %q does not apply to text", mode)
	}
}

func numericPredicate(column string, mode MatchMode, v Value) (squirrel.Sqlizer, error) {
	switch mode {
	case MatchIn:
		items := listOf(v)
		values := make([]float64, len(items))
		for i, item := range items {
			n, err := toNumber(item)
			if err != nil {
				return nil, err
			}
			values[i] = n
		}
		return squirrel.Expr(column+" = ANY(?::float8[])", pq.Array(values)), nil
	case MatchBetween:
		lo, hi, err := bounds(v, toNumber)
		if err != nil {
			return nil, err
		}
		return squirrel.Expr(column+" BETWEEN ?::float8 AND ?::float8", lo, hi), nil
	}

	op, ok := comparisonOps[mode]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidFilter, "match mode %q does not apply to numbers", mode)
	}
	n, err := toNumber(v)
	if err != nil {
		return nil, err
	}
	return squirrel.Expr(fmt.Sprintf("%s %s ?::float8", column, op), n), nil
}

func datePredicate(column string, mode MatchMode, v Value) (squirrel.Sqlizer, error) {
	switch mode {
	case MatchIn:
		items := listOf(v)
		values := make([]time.Time, len(items))
		for i, item := range items {
			t, err := toDate(item)
			if err != nil {
				return nil, err
			}
			values[i] = t
		}
		return squirrel.Expr(column+" = ANY(?::timestamptz[])", values), nil
	case MatchBetween:
		lo, hi, err := bounds(v, toDate)
		if err != nil {
			return nil, err
		}
		return squirrel.Expr(column+" BETWEEN ?::timestamptz AND ?::timestamptz", lo, hi), nil
	}

	op, ok := comparisonOps[mode]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidFilter, "match mode %q does not apply to dates", mode)
	}
	t, err := toDate(v)
	if err != nil {
		return nil, err
	}
	return squirrel.Expr(fmt.Sprintf("%s %s ?::timestamptz", column, op), t), nil
}

func listOf(v Value) []Value {
	if items, ok := v.AsList(); ok {
		return items
	}
	return []Value{v}
}

func bounds[T any](v Value, conv func(Value) (T, error)) (lo, hi T, err error) {
	items, ok := v.AsList()
	if !ok || len(items) != 2 {
		return lo, hi, errors.Wrap(ErrInvalidFilter, "between needs a list of two values")
	}
	if lo, err = conv(items[0]); err != nil {
		return lo, hi, err
	}
	hi, err = conv(items[1])
	return lo, hi, err
}

func toNumber(v Value) (float64, error) {
	switch v.Kind() {
	case KindNumber:
		n, _ := v.AsNumber()
		return n, nil
	case KindString:
		s, _ := v.AsString()
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidFilter, "%q is not a number", s)
		}
		return n, nil
	default:
		return 0, errors.Wrapf(ErrInvalidFilter, "%s value is not a number", v.Kind())
	}
}

func toDate(v Value) (time.Time, error) {
	switch v.Kind() {
	case KindDate:
		t, _ := v.AsDate()
		return t, nil
	case KindString:
		s, _ := v.AsString()
		for _, layout := range []string{time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, strings.TrimSpace(s)); err == nil {
				return t, nil
			}
		}
		return time.Time{}, errors.Wrapf(ErrInvalidFilter, "%q is not a date", s)
	default:
		return time.Time{}, errors.Wrapf(ErrInvalidFilter, "%s value is not a date", v.Kind())
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
