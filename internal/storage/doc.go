// Package storage reads the activity corpus and writes extracted records.
//
// The corpus is a data directory with one YAML file per category
// (activities.yml, competitions.yml, conferences.yml), each holding a
// sequence of accepted records. It is loaded once and never modified; the
// validator uses it for ID uniqueness and tag similarity. A missing category
// file is treated as an empty category.
package storage
