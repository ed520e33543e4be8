// Package logging centralizes slog construction and structured field
// conventions for the pipeline.
//
// Two output formats are supported: a compact console handler for interactive
// use and the stdlib JSON handler for machine consumption. Standardized field
// keys (job_id, stage, chunk, component) are attached via context helpers so
// every component logs the same vocabulary.
package logging
