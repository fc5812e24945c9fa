package model

// Offsets inside a slot count UTF-16 code units, the unit editors and
// browsers report cursor positions in. Text runs are stored as Go strings.

func runeUnits(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}

// TextLen returns the length of s in UTF-16 code units.
func TextLen(s string) int {
	n := 0
	for _, r := range s {
		n += runeUnits(r)
	}
	return n
}

// TextBoundary returns the first UTF-16 offset at or after units that does
// not fall inside a surrogate pair, capped at TextLen(s).
func TextBoundary(s string, units int) int {
	pos := 0
	for _, r := range s {
		if pos >= units {
			return pos
		}
		pos += runeUnits(r)
	}
	return pos
}

// TextSlice returns the part of s between UTF-16 offsets start and end.
// An offset that falls inside a surrogate pair moves forward to the end of
// that character.
func TextSlice(s string, start, end int) string {
	if start >= end {
		return ""
	}
	from, to := -1, len(s)
	pos := 0
	for i, r := range s {
		if from < 0 && pos >= start {
			from = i
		}
		if pos >= end {
			to = i
			break
		}
		pos += runeUnits(r)
	}
	if from < 0 {
		return ""
	}
	return s[from:to]
}
