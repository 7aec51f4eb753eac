// Package storage provides JSON-based persistence for bulletin run reports.
//
// The last complete report is kept in last_run.json and a short summary of
// recent runs in history.json, both under the data directory (default
// ~/.ski-report). The status command reads them back.
package storage
