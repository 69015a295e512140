// Package emoji provides symbol constants for CLI output.
// The same small set of symbols marks status across every command.
package emoji

const (
	// Success marks a completed operation.
	Success = "✓"

	// Error marks a failed operation or a file that was skipped.
	Error = "✗"

	// Warning marks a non-fatal problem the user should look at.
	Warning = "!"

	// Info marks neutral notices.
	Info = "i"
)
