// Package synthesize turns a merged transcript into a written document
// shaped by a template (summary, minutes, study notes, and so on).
//
// Transcripts that fit the configured context budget are synthesized in a
// single completion; longer ones are condensed segment by segment and then
// merged, with gap markers standing in for segments that failed.
package synthesize
