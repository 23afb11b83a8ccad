package version

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

func (o Ordering) String() string {
	switch o {
	case Less:
		return "LESS"
	case Equal:
		return "EQUAL"
	case Greater:
		return "GREATER"
	default:
		return "UNKNOWN"
	}
}

// Compare orders a and b by major, minor and patch, then by pre-release rank
// and number. A final release sorts after all of its pre-releases. Build
// metadata is ignored.
func Compare(a, b Version) Ordering {
	if o := compareInt(a.major, b.major); o != Equal {
		return o
	}
	if o := compareInt(a.minor, b.minor); o != Equal {
		return o
	}
	if o := compareInt(a.patch, b.patch); o != Equal {
		return o
	}

	aRank, aNum := a.preKey()
	bRank, bNum := b.preKey()
	if o := compareInt(aRank, bRank); o != Equal {
		return o
	}
	return compareInt(aNum, bNum)
}

func (v Version) preKey() (rank, number int) {
	if !v.hasPre {
		return finalRank, 0
	}
	return v.pre.Label.Rank(), v.pre.Number
}

func compareInt(a, b int) Ordering {
	switch {
	case a < b:
		return Less
	case a > b:
		return Greater
	default:
		return Equal
	}
}

// Compare is shorthand for Compare(v, o).
func (v Version) Compare(o Version) Ordering {
	return Compare(v, o)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return Compare(v, o) == Less }

// Greater reports whether v sorts after o.
func (v Version) Greater(o Version) bool { return Compare(v, o) == Greater }

// Equal reports whether v and o have the same precedence. Build metadata is
// not considered.
func (v Version) Equal(o Version) bool { return Compare(v, o) == Equal }
