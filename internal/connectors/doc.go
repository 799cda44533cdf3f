// Package connectors provides document sources that feed the ingestion
// pipeline from outside a single upload. The filesystem connector scans a
// directory and watches it for new or changed files.
package connectors
