// Package logtail reads the end of nestview's own log file for the
// Diagnostics view.
//
// Read keeps a ring buffer of maxLines entries while scanning, so memory is
// bounded by the tail size rather than the file size. Lines up to 1 MiB are
// supported.
//
// Parse recognizes the level of a line in any of the three log formats:
//
//	2025-01-02 15:04:05 INF loaded remote catalog count=42      (text)
//	2025-01-02 15:04:05 INFO nestview: loaded remote catalog    (pretty)
//	{"time":"...","level":"INFO","msg":"loaded remote catalog"} (json)
//
// Filter then drops entries below a minimum level. Lines with no level are
// kept.
package logtail
