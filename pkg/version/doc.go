// Package version implements the project's semantic version model.
//
// A version is major.minor.patch with an optional pre-release drawn from a
// closed, ordered set of labels (alpha < beta < rc) and a sequence number,
// plus optional build metadata:
//
//	1.4.0
//	1.4.1-alpha.0
//	2.0.0-rc.3+build.77
//
// Versions are values; every transformation returns a new Version.
// Comparison orders a final release after all of its pre-releases and
// ignores build metadata:
//
//	1.2.3-alpha.0 < 1.2.3-alpha.1 < 1.2.3-beta.0 < 1.2.3-rc.0 < 1.2.3
//
// The release workflow uses NextPatchAlpha and NextMinorAlpha to compute the
// working versions that maintenance branches and trunk move to after a release.
package version
