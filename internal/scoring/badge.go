package scoring

// Badge is a qualitative label derived from a numeric score.
type Badge string

const (
	BadgeExcellent        Badge = "🌟 Excellent"
	BadgeGood             Badge = "👍 Good"
	BadgeNeedsImprovement Badge = "🖰 Needs Improvement"
	BadgePracticeMore     Badge = "🚨 Practice More"

	// BadgeRegional marks feedback produced by the regional-language
	// translation flow, which carries no pronunciation score.
	BadgeRegional Badge = "🌐 Regional"
)

// badgeThresholds are checked in order; the first threshold the score reaches
// selects the badge. BadgeExcellent is unreachable while MaxScore < 9.
var badgeThresholds = []struct {
	min   float64
	badge Badge
}{
	{9, BadgeExcellent},
	{7, BadgeGood},
	{5, BadgeNeedsImprovement},
}

// BadgeFor returns the badge for score.
func BadgeFor(score float64) Badge {
	for _, t := range badgeThresholds {
		if score >= t.min {
			return t.badge
		}
	}
	return BadgePracticeMore
}

// Suggestion tiers for the plain pronunciation score used in audio reports.
const (
	SuggestionExcellent = "🟢 Excellent pronunciation! Just maintain consistency."
	SuggestionGood      = "🟡 Good effort. Focus on clarity, especially vowel sounds."
	SuggestionNeedsWork = "🔴 Needs work. Practice difficult words and mimic native speakers."
)

// SuggestionFor returns the coaching tip for a plain score.
func SuggestionFor(score int) string {
	switch {
	case score >= 8:
		return SuggestionExcellent
	case score >= 5:
		return SuggestionGood
	default:
		return SuggestionNeedsWork
	}
}
