// Package builder assembles reconciled fields into an activity.Record.
//
// The builder applies the normalizations a stored record needs (ID
// generation, category coercion, tag deduplication and truncation, year and
// timezone defaults) and always emits exactly one event. It does not check
// IDs against the corpus; that is the validator's job.
package builder
