package uifilter

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
)

// MatchMode is the comparison a filter entry asks for.
type MatchMode string

const (
	MatchStartsWith  MatchMode = "startsWith"
	MatchContains    MatchMode = "contains"
	MatchNotContains MatchMode = "notContains"
	MatchEndsWith    MatchMode = "endsWith"
	MatchEquals      MatchMode = "equals"
	MatchNotEquals   MatchMode = "notEquals"
	MatchIn          MatchMode = "in"
	MatchLt          MatchMode = "lt"
	MatchLte         MatchMode = "lte"
	MatchGt          MatchMode = "gt"
	MatchGte         MatchMode = "gte"
	MatchBetween     MatchMode = "between"

	// Date widget modes, rewritten by NormalizeMatchMode.
	MatchIs         MatchMode = "is"
	MatchIsNot      MatchMode = "isNot"
	MatchBefore     MatchMode = "before"
	MatchAfter      MatchMode = "after"
	MatchDateIs     MatchMode = "dateIs"
	MatchDateIsNot  MatchMode = "dateIsNot"
	MatchDateBefore MatchMode = "dateBefore"
	MatchDateAfter  MatchMode = "dateAfter"
)

// Operator joins the entries of one field.
type Operator string

const (
	OperatorAnd Operator = "and"
	OperatorOr  Operator = "or"
)

// GlobalKey is the filters key whose entries search every global field.
const GlobalKey = "global"

// LazyLoadEvent is what the data grid emits on a page, sort or filter change.
type LazyLoadEvent struct {
	First         *int                    `json:"first,omitempty"`
	Rows          *int                    `json:"rows,omitempty"`
	Last          *int                    `json:"last,omitempty"`
	SortField     FieldNames              `json:"sortField,omitempty"`
	SortOrder     *int                    `json:"sortOrder,omitempty"`
	MultiSortMeta []SortMeta              `json:"multiSortMeta,omitempty"`
	Filters       map[string]MetadataList `json:"filters,omitempty"`
}

type SortMeta struct {
	Field string `json:"field"`
	Order int    `json:"order"`
}

// FilterMetadata is one filter constraint as the grid reports it.
type FilterMetadata struct {
	Value     Value     `json:"value"`
	MatchMode MatchMode `json:"matchMode,omitempty"`
	Operator  Operator  `json:"operator,omitempty"`
}

// FieldNames decodes either a single field name or a list of them.
type FieldNames []string

func (f *FieldNames) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = nil
	case len(data) > 0 && data[0] == '"':
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return errors.Wrap(err, "decode sort field")
		}
		*f = FieldNames{name}
	default:
		var names []string
		if err := json.Unmarshal(data, &names); err != nil {
			return errors.Wrap(err, "decode sort fields")
		}
		*f = names
	}
	return nil
}

// MetadataList decodes either a single FilterMetadata object or a list of them. Entries that
// do not decode, such as object values, are skipped; anything else decodes to an empty list.
type MetadataList []FilterMetadata

func (m *MetadataList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var entries []json.RawMessage
	switch {
	case len(data) > 0 && data[0] == '{':
		entries = []json.RawMessage{data}
	case len(data) > 0 && data[0] == '[':
		if err := json.Unmarshal(data, &entries); err != nil {
			entries = nil
		}
	}

	list := MetadataList{}
	for _, entry := range entries {
		var md FilterMetadata
		if err := json.Unmarshal(entry, &md); err != nil {
			continue
		}
		list = append(list, md)
	}

	*m = nil
	if len(list) > 0 {
		*m = list
	}
	return nil
}

// FilterRequest is the normalized form of a LazyLoadEvent sent to the server.
type FilterRequest struct {
	First      *int                    `json:"first,omitempty"`
	Rows       *int                    `json:"rows,omitempty"`
	SortFields []SortField             `json:"sortFields,omitempty"`
	Filters    map[string][]FilterData `json:"filters,omitempty"`
}

type SortField struct {
	Field string `json:"field"`
	Order int    `json:"order"`
}

type FilterData struct {
	Value     Value     `json:"value"`
	MatchMode MatchMode `json:"matchMode,omitempty"`
	Operator  Operator  `json:"operator,omitempty"`
}
