package version_test

import (
	"fmt"

	"github.com/bcomnes/relman/pkg/version"
)

// ExampleParse shows the parsed components of a pre-release with metadata.
func ExampleParse() {
	v, err := version.Parse("1.4.0-rc.2+build.9")
	if err != nil {
		fmt.Println("parse failed:", err)
		return
	}
	pre, _ := v.PreRelease()
	build, _ := v.Build()
	fmt.Println(v.Major(), v.Minor(), v.Patch(), pre.Label, pre.Number, build)
	// Output: 1 4 0 rc 2 build.9
}

// ExampleCompare orders a final release after its release candidate.
func ExampleCompare() {
	rc := version.MustParse("1.4.0-rc.2")
	final := version.MustParse("1.4.0")
	fmt.Println(version.Compare(rc, final))
	fmt.Println(version.Compare(final, rc))
	// Output:
	// LESS
	// GREATER
}

// ExampleVersion_NextPatchAlpha shows the working versions primed after a release.
func ExampleVersion_NextPatchAlpha() {
	released := version.MustParse("1.4.0")
	fmt.Println(released.NextPatchAlpha())
	fmt.Println(released.NextMinorAlpha())
	// Output:
	// 1.4.1-alpha.0
	// 1.5.0-alpha.0
}
