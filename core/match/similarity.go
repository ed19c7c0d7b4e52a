package match

const (
	// maxPrefixLength caps the number of leading characters contributing
	// to the prefix bonus.
	maxPrefixLength = 4

	// prefixScale is the bonus per matching leading character, so the
	// full bonus is 0.4 of the remaining distance to 1.0.
	prefixScale = 0.1
)

// Similarity computes a bounded [0,1] similarity between two entity names.
// Both inputs are normalized first; equal canonical forms score exactly 1.0
// and an empty canonical form on either side scores 0.0. Otherwise a
// Jaro-style alignment is computed and boosted by a common-prefix bonus.
// Any two strings produce a defined score.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	return jaroWithPrefixBonus([]rune(na), []rune(nb))
}

// jaroWithPrefixBonus computes the Jaro similarity of two non-empty rune
// slices plus a prefix bonus of prefixScale per matching leading character
// (capped at maxPrefixLength) scaled by the remaining distance to 1.0.
func jaroWithPrefixBonus(a, b []rune) float64 {
	window := len(a)
	if len(b) > window {
		window = len(b)
	}
	window = window/2 - 1
	if window < 1 {
		window = 1
	}

	// Slide the match window over b, consuming each character at most once
	matchedA := make([]bool, len(a))
	matchedB := make([]bool, len(b))
	matches := 0
	for i := range a {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > len(b) {
			hi = len(b)
		}
		for j := lo; j < hi; j++ {
			if !matchedB[j] && a[i] == b[j] {
				matchedA[i] = true
				matchedB[j] = true
				matches++
				break
			}
		}
	}

	if matches == 0 {
		return 0.0
	}

	// Count transpositions among matched characters in order
	transpositions := 0
	j := 0
	for i := range a {
		if !matchedA[i] {
			continue
		}
		for !matchedB[j] {
			j++
		}
		if a[i] != b[j] {
			transpositions++
		}
		j++
	}

	m := float64(matches)
	base := (m/float64(len(a)) + m/float64(len(b)) + (m-float64(transpositions)/2)/m) / 3

	prefix := 0
	for i := 0; i < len(a) && i < len(b) && i < maxPrefixLength; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}

	return base + float64(prefix)*prefixScale*(1.0-base)
}
