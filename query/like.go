package query

// MatchLike reports whether s matches a like pattern. % matches any run of
// characters, _ matches exactly one, everything else matches itself.
//
// Runs in O(len(s) * len(pattern)) worst case using a single backtrack
// point at the last %.
func MatchLike(s, pattern string) bool {
	str := []rune(s)
	pat := []rune(pattern)

	si, pi := 0, 0
	star, mark := -1, 0

	for si < len(str) {
		switch {
		case pi < len(pat) && pat[pi] == '%':
			star = pi
			mark = si
			pi++
		case pi < len(pat) && (pat[pi] == '_' || pat[pi] == str[si]):
			si++
			pi++
		case star >= 0:
			// let the last % absorb one more character
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}

	for pi < len(pat) && pat[pi] == '%' {
		pi++
	}
	return pi == len(pat)
}

// matchLikeRecursive is the definitional matcher. MatchLike must agree
// with it on every input.
func matchLikeRecursive(s, pattern []rune) bool {
	if len(pattern) == 0 {
		return len(s) == 0
	}

	switch pattern[0] {
	case '%':
		if len(pattern) == 1 {
			return true
		}
		if pattern[1] == '%' {
			return matchLikeRecursive(s, pattern[1:])
		}
		for i := 0; i < len(s); i++ {
			if matchLikeRecursive(s[i:], pattern[1:]) {
				return true
			}
		}
		return false
	case '_':
		return len(s) > 0 && matchLikeRecursive(s[1:], pattern[1:])
	default:
		return len(s) > 0 && s[0] == pattern[0] && matchLikeRecursive(s[1:], pattern[1:])
	}
}
