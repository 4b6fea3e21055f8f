package language

import "unicode"

// ScriptThreshold is the minimum share of letters in one Indic script for
// an utterance to count as that language.
const ScriptThreshold = 0.3

var scripts = []struct {
	code  string
	table *unicode.RangeTable
}{
	{"ml", unicode.Malayalam},
	{"hi", unicode.Devanagari},
	{"ta", unicode.Tamil},
}

// DetectScript guesses the language of an utterance from its script.
// It returns "" when the text has no letters or no script dominates.
func DetectScript(text string) (string, float64) {
	counts := make([]int, len(scripts))
	var letters, latin int
	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
			continue
		}
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}
	if letters == 0 {
		return "", 0
	}

	best := -1
	for i := range counts {
		if counts[i] > 0 && (best < 0 || counts[i] > counts[best]) {
			best = i
		}
	}
	if best >= 0 {
		ratio := float64(counts[best]) / float64(letters)
		if ratio >= ScriptThreshold {
			return scripts[best].code, ratio
		}
	}
	ratio := float64(latin) / float64(letters)
	if ratio >= 0.5 {
		return "en", ratio
	}
	return "", 0
}
