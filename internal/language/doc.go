// Package language normalizes language hints for transcription requests.
//
// Users may configure a language as an ISO 639-1 code, an ISO 639-2 code,
// or a full word ("english"); speech-to-text endpoints want the 2-letter
// form, and reports want a display name.
package language
