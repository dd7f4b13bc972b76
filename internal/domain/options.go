package domain

// Mode selects how a run treats out-of-sync directives.
type Mode int

const (
	// ModeApply uploads, rewrites documents and persists the manifest
	ModeApply Mode = iota
	// ModeCheck reports pending directives without mutating anything
	ModeCheck
)

func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeCheck:
		return "check"
	default:
		return "unknown"
	}
}

// CommonOptions contains shared run options.
type CommonOptions struct {
	Verbose  bool
	DryRun   bool
	Check    bool
	Progress bool
}

// Mode returns the run mode implied by the options.
func (o CommonOptions) Mode() Mode {
	if o.Check {
		return ModeCheck
	}
	return ModeApply
}
