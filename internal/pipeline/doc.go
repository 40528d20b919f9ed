// Package pipeline runs one source through extraction, rule and LLM
// parsing, reconciliation, record building and validation.
//
// A run either returns an Outcome holding the record and its validation
// result, or an error: a *source.Error when the input could not be read, or
// an *UnexpectedError when a later stage failed. Batches run independent
// inputs in parallel with a bounded number of workers.
package pipeline
