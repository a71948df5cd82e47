package models

import "time"

type Hero struct {
	ID        int64      `json:"id" db:"id" uifilter:"id"`
	Name      string     `json:"name" db:"name" uifilter:"name,global"`
	AlterEgo  string     `json:"alterEgo" db:"alter_ego" uifilter:"alterEgo,global"`
	Power     string     `json:"power" db:"power" uifilter:"power,global"`
	Rating    *int       `json:"rating" db:"rating" uifilter:"rating"`
	PowerDate *time.Time `json:"powerDate,omitempty" db:"power_date" uifilter:"powerDate"`
}

// HeroFilterResult is one page of a filtered hero query and the size of the whole match.
type HeroFilterResult struct {
	Records      []Hero `json:"records"`
	TotalRecords int64  `json:"totalRecords"`
}
