// Package jobs persists pipeline job state in SQLite, so finished runs and
// their reports survive the process and the CLI can list past work.
package jobs
