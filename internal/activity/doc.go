// Package activity provides the record types for open-source community activities.
//
// A Record groups one or more dated Events under a title, description, category
// and tag list. Events carry an ordered timeline of deadlines. The package also
// owns ID generation (readable slugs or short MD5-based IDs), category coercion
// and the ISO-8601 deadline layouts accepted across the module.
package activity
