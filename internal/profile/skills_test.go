package profile

import (
	"reflect"
	"testing"
)

func TestFoldRepeatedToken(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"LeadershipLeadership", "Leadership"},
		{"Sales", "Sales"},
		{"GoGo", "Go"},
		{"Leadership Leadership", "Leadership Leadership"}, // not an exact half-split
		{"aba", "aba"}, // odd length never folds
		{"", ""},
	}
	for _, tt := range tests {
		if got := FoldRepeatedToken(tt.in); got != tt.want {
			t.Errorf("FoldRepeatedToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupSkills(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "folds rendering artifacts",
			in:   []string{"LeadershipLeadership", "Sales"},
			want: []string{"Leadership", "Sales"},
		},
		{
			name: "case-insensitive dedup keeps first casing",
			in:   []string{"SQL", "sql", "Go", "GO", "go"},
			want: []string{"SQL", "Go"},
		},
		{
			name: "fold can create a duplicate",
			in:   []string{"Leadership", "LeadershipLeadership"},
			want: []string{"Leadership"},
		},
		{
			name: "blanks dropped, order kept",
			in:   []string{"  ", "B2B Sales", "", "Negotiation", "b2b sales"},
			want: []string{"B2B Sales", "Negotiation"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DedupSkills(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DedupSkills(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
