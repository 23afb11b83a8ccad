package version

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMalformed is wrapped by every ParseError caused by a bad numeric token
	// or a missing component.
	ErrMalformed = errors.New("malformed version")
	// ErrUnknownLabel is wrapped when the pre-release label is not alpha, beta or rc.
	ErrUnknownLabel = errors.New("unknown pre-release label")
)

// ParseError describes why a version string could not be parsed.
type ParseError struct {
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing version %q: %s", e.Input, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Version is an immutable semantic version with an optional project
// pre-release (alpha, beta or rc plus a number) and optional build metadata.
// The zero value is 0.0.0.
type Version struct {
	major, minor, patch int

	pre    PreRelease
	hasPre bool

	build    string
	hasBuild bool
}

// New returns the final release major.minor.patch.
func New(major, minor, patch int) Version {
	if major < 0 || minor < 0 || patch < 0 {
		panic(fmt.Sprintf("version: negative component in %d.%d.%d", major, minor, patch))
	}
	return Version{major: major, minor: minor, patch: patch}
}

// Parse reads a version of the form major.minor.patch[-label[.number]][+metadata].
//
// The build metadata is everything after the first "+" and is kept verbatim.
// The pre-release label must be one of alpha, beta or rc (case-sensitive); a
// missing number defaults to 0.
func Parse(text string) (Version, error) {
	var v Version

	head, build, hasBuild := strings.Cut(text, "+")
	core, pre, hasPre := strings.Cut(head, "-")

	nums := strings.Split(core, ".")
	if len(nums) != 3 {
		return Version{}, &ParseError{
			Input:  text,
			Reason: fmt.Sprintf("expected major.minor.patch, got %d component(s)", len(nums)),
			Err:    ErrMalformed,
		}
	}
	parts := [3]*int{&v.major, &v.minor, &v.patch}
	for i, tok := range nums {
		n, err := parseNumber(tok)
		if err != nil {
			return Version{}, &ParseError{Input: text, Reason: err.Error(), Err: ErrMalformed}
		}
		*parts[i] = n
	}

	if hasPre {
		labelTok, numTok, hasNum := strings.Cut(pre, ".")
		label, err := ParseLabel(labelTok)
		if err != nil {
			return Version{}, &ParseError{Input: text, Reason: err.Error(), Err: ErrUnknownLabel}
		}
		n := 0
		if hasNum {
			if n, err = parseNumber(numTok); err != nil {
				return Version{}, &ParseError{Input: text, Reason: "pre-release " + err.Error(), Err: ErrMalformed}
			}
		}
		v.pre = PreRelease{Label: label, Number: n}
		v.hasPre = true
	}

	if hasBuild {
		v.build = build
		v.hasBuild = true
	}

	return v, nil
}

// MustParse is like Parse but panics on error. Use it for literals only.
func MustParse(text string) Version {
	v, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return v
}

// MaxComponent is the largest numeric component Parse accepts. It leaves room
// for the increments done by Bump and the next-alpha helpers.
const MaxComponent = math.MaxInt / 2

// parseNumber accepts only ASCII digits without a leading zero, which keeps
// String an exact inverse of Parse.
func parseNumber(tok string) (int, error) {
	if tok == "" {
		return 0, errors.New("empty numeric component")
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("component %q is not numeric", tok)
		}
	}
	if len(tok) > 1 && tok[0] == '0' {
		return 0, fmt.Errorf("component %q has a leading zero", tok)
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n > MaxComponent {
		return 0, fmt.Errorf("component %q is out of range", tok)
	}
	return n, nil
}

// Major returns the major component.
func (v Version) Major() int { return v.major }

// Minor returns the minor component.
func (v Version) Minor() int { return v.minor }

// Patch returns the patch component.
func (v Version) Patch() int { return v.patch }

// PreRelease returns the pre-release component and whether one is set.
func (v Version) PreRelease() (PreRelease, bool) {
	return v.pre, v.hasPre
}

// IsPreRelease reports whether v carries a pre-release component.
func (v Version) IsPreRelease() bool {
	return v.hasPre
}

// Build returns the build metadata and whether it is set.
func (v Version) Build() (string, bool) {
	return v.build, v.hasBuild
}

// WithPreRelease returns a copy of v with the given pre-release component.
func (v Version) WithPreRelease(label Label, number int) Version {
	if number < 0 {
		panic(fmt.Sprintf("version: negative pre-release number %d", number))
	}
	v.pre = PreRelease{Label: label, Number: number}
	v.hasPre = true
	return v
}

// WithBuild returns a copy of v with the given build metadata.
func (v Version) WithBuild(meta string) Version {
	v.build = meta
	v.hasBuild = true
	return v
}

// Core returns major.minor.patch with pre-release and metadata dropped.
func (v Version) Core() Version {
	return New(v.major, v.minor, v.patch)
}

// NextPatchAlpha returns major.minor.(patch+1)-alpha.0, the working version a
// maintenance branch moves to after a release.
func (v Version) NextPatchAlpha() Version {
	return New(v.major, v.minor, v.patch+1).WithPreRelease(Alpha, 0)
}

// NextMinorAlpha returns major.(minor+1).0-alpha.0, the working version trunk
// moves to after a release.
func (v Version) NextMinorAlpha() Version {
	return New(v.major, v.minor+1, 0).WithPreRelease(Alpha, 0)
}

// String renders v as major.minor.patch[-label.number][+metadata].
func (v Version) String() string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(v.major))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(v.minor))
	b.WriteByte('.')
	b.WriteString(strconv.Itoa(v.patch))
	if v.hasPre {
		b.WriteByte('-')
		b.WriteString(v.pre.String())
	}
	if v.hasBuild {
		b.WriteByte('+')
		b.WriteString(v.build)
	}
	return b.String()
}
