package build

// Stage identifies a step of the packaging pipeline.
//
// The pipeline only moves forward:
//
//	START → PREFLIGHT → STAGE → INVOKE → VERIFY → {SUCCESS | FAILED}
//
// A failure in any stage transitions directly to FAILED; there are no
// backward edges and no re-entry.
type Stage string

const (
	// StageStart is the initial state before any work happens.
	StageStart Stage = "start"
	// StagePreflight probes the required external tools.
	StagePreflight Stage = "preflight"
	// StageStaging assembles the payload directory.
	StageStaging Stage = "stage"
	// StageInvoke calls the platform packaging tool.
	StageInvoke Stage = "invoke"
	// StageVerify checks the produced artifact.
	StageVerify Stage = "verify"
	// StageSuccess is the terminal state of a verified run.
	StageSuccess Stage = "success"
	// StageFailed is the terminal state of an aborted run.
	StageFailed Stage = "failed"
)

// Next returns the stage that follows s on the success path.
// Terminal stages return themselves.
func (s Stage) Next() Stage {
	switch s {
	case StageStart:
		return StagePreflight
	case StagePreflight:
		return StageStaging
	case StageStaging:
		return StageInvoke
	case StageInvoke:
		return StageVerify
	case StageVerify:
		return StageSuccess
	default:
		return s
	}
}

// Terminal reports whether the stage ends the pipeline.
func (s Stage) Terminal() bool {
	return s == StageSuccess || s == StageFailed
}
