// Package feedback renders pipeline results for people and machines: the
// markdown comment posted on the intake issue, a colored terminal summary,
// JSON and YAML documents, and the JSON envelope consumed by the workflow.
package feedback
