// Package pipeline decides, per cover directive, whether the remote URL is
// current, and carries out the upload or reuse and the span rewrite when it
// is not. All per-run bookkeeping lives in RunState.
package pipeline
