// Package config loads the dashboard configuration.
//
// # Configuration Sources
//
// Values are layered in increasing order of precedence:
//
//  1. Built-in defaults (Default)
//  2. A YAML file: $KLOTH_CONFIG_FILE, ./config.yaml or ./configs/config.yaml
//  3. Environment variables, optionally seeded from a .env file
//
// # Environment Variables
//
// Variables are namespaced with KLOTH and follow the struct nesting:
//
//	KLOTH_SERVER_PORT=8080
//	KLOTH_SOURCES_DATA_DIR=/srv/kloth
//	KLOTH_SOURCES_SNAPSHOT_PATH=aggregated_kloth_data.xlsx
//	KLOTH_SOURCES_FACT_PATH=kloth_daily_facts.xlsx
//	KLOTH_SOURCES_FACT_SHEET=Fact
//	KLOTH_DASHBOARD_TOP_N_DEFAULT=10
//	KLOTH_LOGGING_LEVEL=debug
//
// # Paths
//
// After loading, the data directory is made absolute against the working
// directory and relative source paths are joined onto it, so the rest of the
// application only ever sees absolute file locations.
package config
