// Package services provides shared infrastructure for the external service
// boundaries: sentinel errors with transient/permanent classification, error
// wrapping with component context, and context annotations used by logging.
//
// Error classification drives retry decisions everywhere in the pipeline:
// orchestrators call IsRetryable instead of inspecting raw errors, so the
// mapping from failure to behavior lives in exactly one place.
package services
