// Package synchronizer reconciles the assistant's configuration root with a
// bundle of command, rule and skill documents.
//
// For every category, in the fixed order commands, rules, skills, a run
// performs three passes:
//
//  1. cleanup: dangling symlinks in the target category directory are removed
//  2. discover: source items are enumerated from the bundle
//  3. link: each item's target is created, left alone, repointed, or reported
//     as a conflict when a real file occupies it
//
// Real files and directories in the configuration root are never modified.
// Every item is resolved independently; a conflict or per-item failure is
// recorded in the [Report] and the run continues. Only a failure to establish
// the target directories aborts a run.
//
// Runs are idempotent: a second run over an unchanged bundle reports every
// linkable item as unchanged. Concurrent runs against the same configuration
// root are not supported; no locking is performed.
package synchronizer
