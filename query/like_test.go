package query

import (
	"testing"
)

func TestMatchLike(t *testing.T) {
	tests := []struct {
		s, pattern string
		want       bool
	}{
		{"abc", "a%", true},
		{"abc", "%c", true},
		{"abc", "a_c", true},
		{"ac", "a_c", false},
		{"abc", "%", true},
		{"", "%", true},
		{"", "", true},
		{"a", "", false},
		{"", "_", false},
		{"abc", "a%%c", true},
		{"abc", "%%%", true},
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "ABC", false},
		{"abcbc", "a%bc", true},
		{"abcb", "a%bc", false},
		{"mississippi", "m%iss%pi", true},
		{"mississippi", "m%iss%ppx", false},
		{"héllo", "h_llo", true},
		{"日本語", "_本%", true},
		{"100%", "100%", true},
		{"a", "a%_", false},
		{"ab", "a%_", true},
	}

	for _, tt := range tests {
		t.Run(tt.s+"~"+tt.pattern, func(t *testing.T) {
			if got := MatchLike(tt.s, tt.pattern); got != tt.want {
				t.Errorf("MatchLike(%q, %q) = %v, want %v", tt.s, tt.pattern, got, tt.want)
			}
			if got := matchLikeRecursive([]rune(tt.s), []rune(tt.pattern)); got != tt.want {
				t.Errorf("matchLikeRecursive(%q, %q) = %v, want %v", tt.s, tt.pattern, got, tt.want)
			}
		})
	}
}

// TestMatchLike_AgreesWithRecursive enumerates every string up to length 4
// over {a, b} against every pattern up to length 4 over {a, b, %, _}.
func TestMatchLike_AgreesWithRecursive(t *testing.T) {
	strs := enumerate([]rune("ab"), 4)
	patterns := enumerate([]rune("ab%_"), 4)

	for _, p := range patterns {
		for _, s := range strs {
			want := matchLikeRecursive([]rune(s), []rune(p))
			if got := MatchLike(s, p); got != want {
				t.Errorf("MatchLike(%q, %q) = %v, recursive = %v", s, p, got, want)
			}
		}
	}
}

func enumerate(alphabet []rune, maxLen int) []string {
	out := []string{""}
	level := []string{""}
	for n := 1; n <= maxLen; n++ {
		var next []string
		for _, prefix := range level {
			for _, r := range alphabet {
				next = append(next, prefix+string(r))
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

func BenchmarkMatchLike(b *testing.B) {
	s := "the quick brown fox jumps over the lazy dog"
	for i := 0; i < b.N; i++ {
		MatchLike(s, "%o%o%o%z_ dog")
	}
}
