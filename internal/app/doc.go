// Package app wires the KLOTH dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, an optional YAML file and the environment
//	2. Initialize logging and OpenTelemetry
//	3. Build the dataset store over the two source workbooks
//	4. Initialize the dashboard and health services
//	5. Set up the middleware chain and HTTP routes
//	6. Load both sources, then start the HTTP server
//
// A source that is missing or unreadable at startup fails Start with an
// error naming its path. Once serving, a source that disappears is reported
// per request as 503 problem details and the next request retries the load.
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. Stop drains in-flight requests within the
// configured shutdown timeout, then flushes the telemetry providers and
// closes the log file.
//
// The package never calls os.Exit; main decides the exit code.
package app
