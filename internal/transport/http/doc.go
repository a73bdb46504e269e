// Package http implements the HTTP handlers of the KLOTH dashboard API.
// Handlers stay thin: they parse and validate query parameters, call a
// service, and render JSON or a file download. Every failure goes through
// errors.ErrorHandler and is answered as RFC 7807 problem details.
//
// # Routes
//
//	GET /api/snapshot               snapshot dashboard
//	GET /api/snapshot/options       snapshot filter choices
//	GET /api/snapshot/export.csv    filtered snapshot as CSV
//	GET /api/snapshot/export        filtered snapshot, ?format=csv|xlsx
//	GET /api/facts                  daily fact dashboard
//	GET /api/facts/options          fact filter choices
//	GET /api/facts/export.csv       filtered facts as CSV
//	GET /api/facts/export           filtered facts, ?format=csv|xlsx
//	GET /api/health[/ready|/live]   health checks
//	GET /api/version                build information
//	GET /metrics                    Prometheus scrape endpoint
//
// Multi-select filters are repeated parameters (?state=Johor&state=Selangor).
package http
