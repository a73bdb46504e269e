package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// Column headers of the aggregated snapshot workbook
const (
	ColSiteContractID  = "Site Contract ID"
	ColLocationName    = "Location Name"
	ColSiteAddress     = "Site Address"
	ColStateTerritory  = "State/Federal Territory"
	ColTotalAcceptable = "Total Acceptable (KG)"
	ColTotalRejected   = "Total Rejected (KG)"
)

// Column headers of the daily fact sheet
const (
	ColFactWeek         = "Name"
	ColFactDate         = "Date"
	ColFactLocationName = "LocationName"
	ColFactSite         = "Site"
	ColFactSiteAddress  = "SiteAddress"
	ColFactWeightKG     = "WeightKG"
	ColFactMonthStart   = "MonthStart"
	ColFactMonthText    = "MonthText"
	ColFactDayOfWeek    = "Day of Week"
)

// DefaultFactSheet is the sheet holding the daily fact table
const DefaultFactSheet = "Fact"

// UnknownState is assigned to fact rows whose site has no snapshot entry
const UnknownState = "Unknown"

// DateLayout is the calendar date format used on the wire and in exports
const DateLayout = "2006-01-02"

// SnapshotColumns lists the snapshot columns in export order
var SnapshotColumns = []string{
	ColSiteContractID,
	ColLocationName,
	ColSiteAddress,
	ColStateTerritory,
	ColTotalAcceptable,
	ColTotalRejected,
}

// FactColumns lists the fact sheet columns in export order
var FactColumns = []string{
	ColFactWeek,
	ColFactDate,
	ColFactLocationName,
	ColFactSite,
	ColFactSiteAddress,
	ColFactWeightKG,
	ColFactMonthStart,
	ColFactMonthText,
	ColFactDayOfWeek,
}

// Weekdays is the canonical day-of-week order used for charts and pivots
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// AggregatedRecord is one site-week row of the aggregated snapshot
type AggregatedRecord struct {
	SiteContractID    string  `json:"site_contract_id"`
	LocationName      string  `json:"location_name"`
	SiteAddress       string  `json:"site_address"`
	StateTerritory    string  `json:"state_territory"`
	TotalAcceptableKG float64 `json:"total_acceptable_kg"`
	TotalRejectedKG   float64 `json:"total_rejected_kg"`
}

// FactRecord is one site-day observation of the fact table.
// StateTerritory is derived from the snapshot at load time.
type FactRecord struct {
	WeekLabel      string   `json:"week_label"`
	Date           NullDate `json:"date"`
	LocationName   string   `json:"location_name"`
	Site           string   `json:"site"`
	SiteAddress    string   `json:"site_address"`
	WeightKG       float64  `json:"weight_kg"`
	MonthStart     NullDate `json:"month_start"`
	MonthText      string   `json:"month_text"`
	DayOfWeek      string   `json:"day_of_week"`
	StateTerritory string   `json:"state_territory"`
}

// NullDate is a calendar date that may be absent
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid NullDate truncated to midnight UTC
func NewDate(t time.Time) NullDate {
	return NullDate{
		Time:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

// String formats the date, or returns "" when absent
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Before reports whether d is strictly before other. Absent dates never compare.
func (d NullDate) Before(other NullDate) bool {
	return d.Valid && other.Valid && d.Time.Before(other.Time)
}

// MarshalJSON renders the date as "YYYY-MM-DD" or null
func (d NullDate) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or null
func (d *NullDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*d = NullDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = NullDate{}
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return err
	}
	*d = NewDate(t)
	return nil
}
