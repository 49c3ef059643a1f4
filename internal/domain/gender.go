package domain

import "strings"

// Gender is the canonical gender label for characters and personas. Values
// outside the fixed set are carried verbatim as GenderCustom.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderNA     Gender = "Not Applicable"
	GenderCustom Gender = "Custom"
)

// ParseGender normalizes free-form gender input to a canonical Gender. For
// custom values the trimmed original input is returned alongside the
// GenderCustom marker. "female" must be checked before "male" since the
// former contains the latter.
func ParseGender(input string) (gender Gender, custom string) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	switch {
	case strings.Contains(normalized, "female"):
		return GenderFemale, ""
	case strings.Contains(normalized, "male"):
		return GenderMale, ""
	case strings.Contains(normalized, "n/a"),
		strings.Contains(normalized, "not applicable"),
		strings.Contains(normalized, "not-applicable"),
		normalized == "na":
		return GenderNA, ""
	}
	return GenderCustom, strings.TrimSpace(input)
}

// NormalizeGender maps free-form input to its stored form: the canonical
// label for recognized values, the trimmed input itself for custom ones.
// Empty input stays empty, so clearing a gender field remains a clear.
func NormalizeGender(input string) string {
	g, custom := ParseGender(input)
	if g == GenderCustom {
		return custom
	}
	return string(g)
}
