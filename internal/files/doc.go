// Package files lists the spreadsheet sources present in the data
// directory. The dashboard uses it to tell operators which workbooks exist
// when a configured source is missing, and klothreport uses it to print the
// data directory inventory.
//
//	discovery := files.NewDiscovery(paths.DataDir)
//	workbooks, err := discovery.FindWorkbooks("")
package files
