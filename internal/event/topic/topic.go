// Package topic defines hierarchical event topics and wildcard patterns.
package topic

import "strings"

// Topic is a dot separated event name such as "document.history.back".
// Patterns may use "*" for exactly one segment and "**" for any number of
// segments, including none.
type Topic string

// Pattern syntax.
const (
	Separator      = "."
	WildcardSingle = "*"
	WildcardMulti  = "**"
)

// String returns the topic as a string.
func (t Topic) String() string { return string(t) }

// Segments splits the topic at each separator.
func (t Topic) Segments() []string {
	if t == "" {
		return nil
	}
	return strings.Split(string(t), Separator)
}

// Parent drops the last segment. The parent of a single segment topic is "".
func (t Topic) Parent() Topic {
	i := strings.LastIndex(string(t), Separator)
	if i < 0 {
		return ""
	}
	return t[:i]
}

// Child appends a segment.
func (t Topic) Child(segment string) Topic {
	if t == "" {
		return Topic(segment)
	}
	return t + Separator + Topic(segment)
}

// IsValid reports whether the topic is non-empty and has no empty segments.
func (t Topic) IsValid() bool {
	if t == "" {
		return false
	}
	for _, seg := range t.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// IsPattern reports whether the topic contains a wildcard segment.
func (t Topic) IsPattern() bool {
	for _, seg := range t.Segments() {
		if seg == WildcardSingle || seg == WildcardMulti {
			return true
		}
	}
	return false
}

// Matches reports whether t matches pattern.
func (t Topic) Matches(pattern Topic) bool {
	if pattern == t {
		return true
	}
	return match(t.Segments(), pattern.Segments())
}

func match(segs, pattern []string) bool {
	for len(pattern) > 0 {
		head := pattern[0]
		if head == WildcardMulti {
			rest := pattern[1:]
			for skip := 0; skip <= len(segs); skip++ {
				if match(segs[skip:], rest) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 || (head != WildcardSingle && head != segs[0]) {
			return false
		}
		segs, pattern = segs[1:], pattern[1:]
	}
	return len(segs) == 0
}

// Join builds a topic from segments.
func Join(segments ...string) Topic {
	return Topic(strings.Join(segments, Separator))
}
