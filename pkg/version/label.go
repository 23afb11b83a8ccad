package version

import (
	"fmt"
	"strconv"
)

// Label is a pre-release label. Labels are ordered Alpha < Beta < RC.
type Label int

const (
	Alpha Label = iota + 1
	Beta
	RC
)

// finalRank sorts a final release after every labelled pre-release.
const finalRank = 4

var labelNames = map[Label]string{
	Alpha: "alpha",
	Beta:  "beta",
	RC:    "rc",
}

// Labels lists the known labels in ascending order.
func Labels() []Label {
	return []Label{Alpha, Beta, RC}
}

// ParseLabel matches s case-sensitively against the known labels.
func ParseLabel(s string) (Label, error) {
	for _, l := range Labels() {
		if labelNames[l] == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown pre-release label %q", s)
}

func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return "Label(" + strconv.Itoa(int(l)) + ")"
}

// Rank is the ordering weight of the label: 1 for alpha, 2 for beta, 3 for rc.
func (l Label) Rank() int {
	return int(l)
}

// PreRelease is a labelled pre-release such as beta.2.
type PreRelease struct {
	Label  Label
	Number int
}

func (p PreRelease) String() string {
	return p.Label.String() + "." + strconv.Itoa(p.Number)
}
