// Package api contains the HTTP API contract of the KLOTH dashboard.
// Version v1 represents the current stable API version.
package api

// Query parameter names shared by both views
const (
	ParamState   = "state"
	ParamSite    = "site"
	ParamAddress = "address"
	ParamTopN    = "top_n"
	ParamRows    = "rows"
	ParamFormat  = "format"
	ParamBOM     = "bom"
)

// Snapshot-only query parameters
const (
	ParamName          = "name"
	ParamAcceptableMin = "acc_min"
	ParamAcceptableMax = "acc_max"
)

// Fact-only query parameters
const (
	ParamWeek      = "week"
	ParamMonth     = "month"
	ParamDay       = "day"
	ParamLocation  = "location"
	ParamFrom      = "from"
	ParamTo        = "to"
	ParamWeightMin = "weight_min"
	ParamWeightMax = "weight_max"
)

// SnapshotQuery selects and shapes the snapshot view.
// Nil range bounds leave that side of the range open.
type SnapshotQuery struct {
	States        []string `json:"state" validate:"omitempty,dive,required"`
	Sites         []string `json:"site" validate:"omitempty,dive,required"`
	Name          string   `json:"name" validate:"max=200"`
	Address       string   `json:"address" validate:"max=200"`
	AcceptableMin *float64 `json:"acc_min"`
	AcceptableMax *float64 `json:"acc_max"`
	TopN          int      `json:"top_n" validate:"omitempty,min=3,max=50"`
	IncludeRows   bool     `json:"rows"`
}

// FactQuery selects and shapes the daily fact view
type FactQuery struct {
	States      []string `json:"state" validate:"omitempty,dive,required"`
	Sites       []string `json:"site" validate:"omitempty,dive,required"`
	Weeks       []string `json:"week" validate:"omitempty,dive,required"`
	Months      []string `json:"month" validate:"omitempty,dive,required"`
	Days        []string `json:"day" validate:"omitempty,dive,required"`
	Location    string   `json:"location" validate:"max=200"`
	Address     string   `json:"address" validate:"max=200"`
	From        string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To          string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
	WeightMin   *float64 `json:"weight_min"`
	WeightMax   *float64 `json:"weight_max"`
	TopN        int      `json:"top_n" validate:"omitempty,min=3,max=50"`
	IncludeRows bool     `json:"rows"`
}

// ExportRequest shapes a download of a filtered view
type ExportRequest struct {
	Format string `json:"format" validate:"omitempty,exportformat"`
	BOM    bool   `json:"bom"`
}
