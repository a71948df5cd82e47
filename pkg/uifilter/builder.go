// Package uifilter carries data-grid filtering from the table widget to SQL.
//
// Build turns a LazyLoadEvent into the FilterRequest posted to the server. On the server,
// Specification, BuildSort and Page turn that request into squirrel clauses over the columns
// described by a DescriptorMap.
package uifilter

var matchModeAliases = map[MatchMode]MatchMode{
	MatchAfter:      MatchGt,
	MatchDateAfter:  MatchGt,
	MatchBefore:     MatchLt,
	MatchDateBefore: MatchLt,
	MatchIs:         MatchEquals,
	MatchDateIs:     MatchEquals,
	MatchIsNot:      MatchNotEquals,
	MatchDateIsNot:  MatchNotEquals,
}

// NormalizeMatchMode folds the date widget modes onto the plain comparison modes.
// Any other mode is returned unchanged.
func NormalizeMatchMode(mode MatchMode) MatchMode {
	if alias, ok := matchModeAliases[mode]; ok {
		return alias
	}
	return mode
}

// Build converts a grid event to a FilterRequest. It never fails: whatever the event leaves
// out is left out of the request. The result shares no memory with the event.
func Build(event LazyLoadEvent) FilterRequest {
	return FilterRequest{
		First:      copyInt(event.First),
		Rows:       deriveRows(event),
		SortFields: buildSortFields(event),
		Filters:    buildFilters(event.Filters),
	}
}

func deriveRows(event LazyLoadEvent) *int {
	switch {
	case isSet(event.Rows):
		return copyInt(event.Rows)
	case isSet(event.Last) && isSet(event.First):
		rows := *event.Last - *event.First
		return &rows
	case isSet(event.Last):
		return copyInt(event.Last)
	}
	return nil
}

func buildSortFields(event LazyLoadEvent) []SortField {
	if event.MultiSortMeta != nil {
		fields := make([]SortField, 0, len(event.MultiSortMeta))
		for _, msm := range event.MultiSortMeta {
			fields = append(fields, SortField{Field: msm.Field, Order: msm.Order})
		}
		return fields
	}

	if len(event.SortField) > 0 && event.SortField[0] != "" && isSet(event.SortOrder) {
		return []SortField{{Field: event.SortField[0], Order: *event.SortOrder}}
	}

	return nil
}

func buildFilters(filters map[string]MetadataList) map[string][]FilterData {
	if len(filters) == 0 {
		return nil
	}

	out := make(map[string][]FilterData)
	for key, mdList := range filters {
		var data []FilterData
		for _, md := range mdList {
			if md.Value.IsFalsy() {
				continue
			}
			data = append(data, FilterData{
				Value:     md.Value.clone(),
				MatchMode: NormalizeMatchMode(md.MatchMode),
				Operator:  md.Operator,
			})
		}
		if len(data) > 0 {
			out[key] = data
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

// isSet mirrors the grid's truthiness: zero counts as absent.
func isSet(p *int) bool {
	return p != nil && *p != 0
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
