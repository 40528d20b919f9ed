// Package validate checks an activity.Record for structural and semantic
// defects and classifies each finding as an error, a warning or a
// suggestion.
//
// A Validator holds a read-only corpus snapshot (event IDs and the tag
// vocabulary) across calls. Only errors make a record invalid; network
// problems during the optional link check are reported as suggestions and
// never fail validation.
package validate
