// Package reconcile merges LLM-provided fields with rule-extracted fields.
//
// Every field has an ordered list of candidates and the first non-empty one
// wins. Semantic fields (title, description, category, tags) prefer the LLM;
// structured fields (date, place, link) come from the rules alone; the
// timeline goes to whichever source found more entries.
package reconcile
