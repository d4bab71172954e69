package viewer

import "github.com/jpsank/breaker/internal/alignment"

// FileChanged is sent by the file watcher when the alignment file changes.
type FileChanged struct {
	Path string
}

// AlignmentReloaded carries a freshly parsed alignment.
type AlignmentReloaded struct {
	Path      string
	Alignment *alignment.Alignment
}

// ReloadFailed reports a reload that could not be parsed. The previous
// alignment stays on screen.
type ReloadFailed struct {
	Path string
	Err  error
}

// SelectionCopied reports the result of copying the selection.
type SelectionCopied struct {
	Count int
	Err   error
}

// statusDismissed clears a transient status message.
type statusDismissed struct {
	seq int
}
