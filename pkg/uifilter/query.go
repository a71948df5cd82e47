package uifilter

import (
	"github.com/Masterminds/squirrel"
)

// BuildSort returns ORDER BY terms for the request's sort fields, skipping unknown ones.
// Without sort fields the default field is used, ascending, if it is known.
func BuildSort(req FilterRequest, defaultField string, descriptors DescriptorMap) []string {
	if len(req.SortFields) == 0 {
		if desc, ok := descriptors[defaultField]; ok && defaultField != "" {
			return []string{desc.Column + " ASC"}
		}
		return nil
	}

	orders := make([]string, 0, len(req.SortFields))
	for _, sf := range req.SortFields {
		desc, ok := descriptors[sf.Field]
		if !ok {
			continue
		}
		direction := " DESC"
		if sf.Order > 0 {
			direction = " ASC"
		}
		orders = append(orders, desc.Column+direction)
	}
	return orders
}

// Page converts first/rows to LIMIT/OFFSET. The offset is aligned down to a whole page.
// ok is false when the request asks for every row.
func Page(req FilterRequest) (limit, offset uint64, ok bool) {
	if req.Rows == nil || *req.Rows <= 0 {
		return 0, 0, false
	}

	rows := *req.Rows
	first := 0
	if req.First != nil && *req.First > 0 {
		first = *req.First
	}

	return uint64(rows), uint64(first / rows * rows), true
}

// Where applies the request's filters to sb.
func Where(sb squirrel.SelectBuilder, req FilterRequest, descriptors DescriptorMap) (squirrel.SelectBuilder, error) {
	pred, err := Specification{Request: req, Descriptors: descriptors}.Predicate()
	if err != nil {
		return sb, err
	}
	if pred != nil {
		sb = sb.Where(pred)
	}
	return sb, nil
}

// Select applies filters, sorting and pagination to sb.
func Select(sb squirrel.SelectBuilder, req FilterRequest, defaultField string, descriptors DescriptorMap) (squirrel.SelectBuilder, error) {
	sb, err := Where(sb, req, descriptors)
	if err != nil {
		return sb, err
	}

	if orders := BuildSort(req, defaultField, descriptors); len(orders) > 0 {
		sb = sb.OrderBy(orders...)
	}

	if limit, offset, ok := Page(req); ok {
		sb = sb.Limit(limit).Offset(offset)
	}

	return sb, nil
}

// Count applies only the filters to sb, which should select COUNT(*).
func Count(sb squirrel.SelectBuilder, req FilterRequest, descriptors DescriptorMap) (squirrel.SelectBuilder, error) {
	return Where(sb, req, descriptors)
}
