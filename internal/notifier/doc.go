// Package notifier publishes intake reports.
//
// The GitHub notifier posts the markdown feedback comment to the issue an
// activity was submitted on, authenticating with an OAuth2 bearer token.
// The dry-run notifier writes the comment to a writer instead.
package notifier
