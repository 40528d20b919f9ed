// Package patterns derives structured fields from raw activity text using
// ordered regular-expression tables.
//
// Extractors are pure functions with no state. Time extraction tries its
// pattern groups in priority order and stops at the first group that yields a
// valid result; place extraction reads a labelled field and strips logistics
// noise; tag extraction maps keywords onto a fixed tag vocabulary.
package patterns
