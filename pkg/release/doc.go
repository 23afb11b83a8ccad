// Package release drives a single release: it validates the requested
// version against the branch policy, existing tags and the manifest, runs the
// build pipeline, commits, tags and pushes, and finally primes the follow-up
// branches with their next working versions.
//
// The follow-up bumps are decided by a small rule table (see Plan):
//
//	pre-release              nothing
//	X.Y.0 on trunk           create stable/X.Y.x at X.Y.1-alpha.0, trunk at X.(Y+1).0-alpha.0
//	X.Y.Z on stable/X.Y.x    stable/X.Y.x at X.Y.(Z+1)-alpha.0
//
// Failures are reported as *Error values carrying a Kind, so callers can
// tell input mistakes from repository preconditions, pipeline failures and
// publishing failures.
package release
