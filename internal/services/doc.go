// Package services implements the business logic layer of the KLOTH
// dashboard. It sits between the HTTP handlers (and the report CLI) and the
// dataset store.
//
// # Services
//
//	- DashboardService: filters the cached tables, builds the snapshot and
//	  fact dashboards, lists filter options and prepares exports
//	- HealthService: liveness, readiness (source files present) and version
//
// Each dashboard request recomputes filter, aggregation and presentation from
// immutable tables served by dataset.Store, so services hold no mutable state.
//
// # Error Handling
//
// Load failures from the store are returned unchanged so that the HTTP layer
// can map dataset.MissingSourceFileError and dataset.MissingSheetError to 503
// problems. Malformed query values become validation errors (400).
package services
