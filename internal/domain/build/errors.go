package build

import "fmt"

// Every failure mode of the pipeline is deterministic given fixed inputs,
// so none of these errors is retryable. Callers distinguish causes with
// errors.As instead of parsing text output.

// ToolNotFoundError indicates a required external tool is absent or its
// version probe failed. User-actionable: Remediation carries install guidance.
type ToolNotFoundError struct {
	// Tool is the missing executable name or path.
	Tool string
	// Remediation is a human-readable hint on how to install the tool.
	Remediation string
	// Err is the underlying probe failure.
	Err error
}

func (e *ToolNotFoundError) Error() string {
	if e.Remediation != "" {
		return fmt.Sprintf("required tool %q not found (%s)", e.Tool, e.Remediation)
	}

	return fmt.Sprintf("required tool %q not found", e.Tool)
}

func (e *ToolNotFoundError) Unwrap() error {
	return e.Err
}

// StagingError indicates the payload could not be assembled: a source path is
// missing or a filesystem operation failed. Fatal, no partial artifact.
type StagingError struct {
	// Path is the offending source or destination path.
	Path string
	// Err is the underlying filesystem error.
	Err error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("stage payload: %s: %v", e.Path, e.Err)
}

func (e *StagingError) Unwrap() error {
	return e.Err
}

// PackagerError indicates the external packaging tool exited non-zero.
// Output carries the tool's captured diagnostics.
type PackagerError struct {
	// Tool is the packaging tool that failed.
	Tool string
	// ExitCode is the tool's exit status.
	ExitCode int
	// Output is the combined stdout/stderr captured from the tool.
	Output string
	// Err is the underlying exec error.
	Err error
}

func (e *PackagerError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s exited with code %d: %s", e.Tool, e.ExitCode, e.Output)
	}

	return fmt.Sprintf("%s exited with code %d: %v", e.Tool, e.ExitCode, e.Err)
}

func (e *PackagerError) Unwrap() error {
	return e.Err
}

// IntegrityError indicates the packaging tool reported success but the
// expected artifact is missing or empty. Flagged separately because it means
// the pipeline's model of the tool is wrong, not that the inputs were bad.
type IntegrityError struct {
	// ArtifactPath is where the artifact was expected.
	ArtifactPath string
	// Reason describes what the verification found.
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("artifact %s: %s", e.ArtifactPath, e.Reason)
}
