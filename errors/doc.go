// Package errors provides the typed failure taxonomy used across invoxia.
//
// Every expected failure is an *AppError tagged with a Kind. The kind fixes
// the HTTP status, the stable wire code and whether the failure is
// operational (safe to show verbatim to callers). Anything that is not an
// *AppError is classified as Internal at the edge and its message scrubbed.
package errors
