package release

import "errors"

// Kind classifies a release failure.
type Kind int

const (
	// KindInput: bad version string or pre-release flag mismatch. Nothing was touched.
	KindInput Kind = iota + 1
	// KindPrecondition: repository state forbids the release. Nothing was touched.
	KindPrecondition
	// KindPipeline: a build or test step failed after the manifest was written.
	KindPipeline
	// KindPublish: commit, tag, push or branch operations failed.
	KindPublish
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindPrecondition:
		return "precondition"
	case KindPipeline:
		return "pipeline"
	case KindPublish:
		return "publish"
	default:
		return "unknown"
	}
}

var (
	ErrPreReleaseUnconfirmed = errors.New("pre-release version requires --prerelease")
	ErrNotPreRelease         = errors.New("--prerelease given for a final version")
	ErrWrongBranch           = errors.New("wrong branch")
	ErrTagExists             = errors.New("version tag already exists")
	ErrNoVersionTag          = errors.New("no version tag found")
	ErrNotGreater            = errors.New("version is not greater than the current version")
	ErrDirtyTree             = errors.New("working directory is not clean")
	ErrConstraint            = errors.New("version outside the allowed range")
	ErrCancelled             = errors.New("release cancelled by user")
)

// Error is a failed release step.
type Error struct {
	Kind Kind
	Step string
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return 0
}

func fail(kind Kind, step string, err error) error {
	return &Error{Kind: kind, Step: step, Err: err}
}
