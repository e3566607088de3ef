// Package cli provides the interactive shopkeeper command-line client.
//
// It wires configuration, the local session store, API services, and an
// interactive REPL. Typical flow: open the per-origin session database,
// start a background connectivity watcher, and execute user commands. A
// session persisted by an earlier run is picked up without logging in again.
//
// Key features:
//   - Login / Logout / WhoAmI / Status
//   - Audit log listing with filters and paging
//   - Audit statistics
//   - Export of the audit log as PDF or Excel to a directory or S3
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
