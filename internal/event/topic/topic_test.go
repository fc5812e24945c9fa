package topic

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"document.operation", "document.operation", true},
		{"document.operation", "document.*", true},
		{"document.history.back", "document.*", false},
		{"document.history.back", "document.**", true},
		{"document", "document.**", true},
		{"document.history.back", "**.back", true},
		{"document.history.back", "*.history.*", true},
		{"document.history.back", "**", true},
		{"collab.remote", "document.**", false},
		{"document.operation", "document.operation.applied", false},
		{"document.history.back", "document.**.back", true},
		{"document.back", "document.**.back", true},
	}
	for _, tt := range tests {
		if got := tt.topic.Matches(tt.pattern); got != tt.want {
			t.Errorf("%q.Matches(%q) = %v, want %v", tt.topic, tt.pattern, got, tt.want)
		}
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		topic Topic
		want  bool
	}{
		{"document", true},
		{"document.history.back", true},
		{"", false},
		{".document", false},
		{"document.", false},
		{"document..back", false},
	}
	for _, tt := range tests {
		if got := tt.topic.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestHierarchy(t *testing.T) {
	tp := Join("document", "history", "back")
	if tp != "document.history.back" {
		t.Errorf("Join() = %q", tp)
	}
	if got := tp.Parent(); got != "document.history" {
		t.Errorf("Parent() = %q, want document.history", got)
	}
	if got := Topic("document").Parent(); got != "" {
		t.Errorf("Parent() = %q, want empty", got)
	}
	if got := Topic("").Child("document").Child("loaded"); got != "document.loaded" {
		t.Errorf("Child() = %q, want document.loaded", got)
	}
	if !Topic("document.*").IsPattern() || Topic("document.loaded").IsPattern() {
		t.Error("IsPattern() mismatch")
	}
}
