// Package cli implements the command-line interface for activity-intake.
//
// The root command carries the shared flags (config file, data directory,
// output format, logging). Subcommands extract activity records from URLs,
// files or text, validate stored records against the corpus, and export
// record timelines as iCalendar files. Exit codes: 0 success, 1 error,
// 2 when a record has validation errors.
package cli
