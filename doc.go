// Package main implements the relman CLI.
//
// relman cuts releases of a Cargo project that keeps its canonical version in
// the [package] table of Cargo.toml and follows a two-branch model: new
// minor and major versions are released from main, patch versions from a
// stable/X.Y.x maintenance branch.
//
// A release checks the branch, the existing tags and the manifest version,
// runs the configured build and test steps, commits "chore: release version
// X", creates an annotated tag X and pushes. It then primes the follow-up
// branches with their next alpha version: releasing X.Y.0 from main creates
// stable/X.Y.x at X.Y.1-alpha.0 and moves main to X.(Y+1).0-alpha.0, and
// releasing X.Y.Z from stable/X.Y.x moves it to X.Y.(Z+1)-alpha.0.
//
// Command Usage:
//
//	relman [global options] <command> [options] [argument]
//
// Commands:
//
//	release <version|keyword>  release an explicit version or a bump keyword
//	                           (major, minor, patch, premajor, preminor,
//	                           prepatch, prerelease). Pre-release versions
//	                           need --prerelease. --dry-run stops after the
//	                           checks, --yes skips the confirmation prompt.
//	set-version <version>      write a version to the manifest and refresh
//	                           the lock file without committing. from-git
//	                           takes the most recent version tag.
//	current                    print the manifest version.
//	next <keyword>             print what a bump keyword (or from-git)
//	                           resolves to.
//
// Global options:
//
//	--workdir:  project root (default: current directory).
//	--config:   config file (default: <workdir>/.relman.yaml).
//	--verbose:  debug output. --brief: warnings and errors only.
//	--log-file: also write a rotating debug log.
//
// Every global option can also be set with a RELMAN_* environment variable.
//
// Examples:
//
//	# Release 1.3.0 from main
//	relman release 1.3.0
//
//	# Release the next beta without prompting
//	relman release --prerelease --yes 1.3.0-beta.1
//
//	# See what a patch release from stable/1.2.x would do
//	relman release --dry-run patch
//
// The .relman.yaml file describes the manifest, lock refresh command, remote,
// branch names, artifact directories, pipeline steps and extra environment
// variables. Without one, relman assumes a Tauri app with a pnpm frontend in
// webapp/.
package main
