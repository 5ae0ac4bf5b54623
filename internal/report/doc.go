// Package report renders synchronization reports and link status for
// humans (colored text with one banner per category) or machines (JSON).
//
// Every outcome belongs to one of three message classes:
//
//   - info: created, unchanged
//   - warning: updated, removed-broken-link
//   - error: conflict, failed
package report
