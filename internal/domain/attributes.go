// Character attributes: the personality model AI characters are
// parameterized by.
//
// Each character has one CharacterAttributes row (keyed by character id)
// holding two free-text state fields and twenty numeric traits, each
// conventionally ranged [-100, 100] with 0 as neutral. The static trait
// schema below maps every numeric trait to an ordered set of
// (threshold, description) bands; DescribeTrait resolves a continuous value
// to the single applicable description. The schema is process-wide static
// configuration with no runtime mutation.
package domain

import "sort"

// TraitCategory groups traits by what part of a character's behavior they
// govern.
type TraitCategory string

const (
	// CategoryState holds the free-text state fields (mood, goal). State
	// traits have no numeric range and no bands.
	CategoryState TraitCategory = "state"
	// CategoryActions governs frequency and kind of platform actions.
	CategoryActions TraitCategory = "actions"
	// CategoryProviders governs how the character reads platform content.
	CategoryProviders TraitCategory = "providers"
	// CategoryEvaluators governs evaluations of the character's own state.
	CategoryEvaluators TraitCategory = "evaluators"
	// CategoryContent governs the tone and substance of interactions.
	CategoryContent TraitCategory = "content"
)

// Band is a (threshold, description) pair. The bands of a trait are stored
// in ascending threshold order; lookup resolves by descending threshold.
type Band struct {
	Threshold   float64 `json:"threshold"`
	Description string  `json:"description"`
}

// TraitInfo is the static schema entry for a single trait.
type TraitInfo struct {
	Label       string        `json:"label"`
	Description string        `json:"description"`
	Category    TraitCategory `json:"category"`
	Bands       []Band        `json:"bands,omitempty"`
}

func fiveBands(d1, d2, d3, d4, d5 string) []Band {
	return []Band{
		{Threshold: -100, Description: d1},
		{Threshold: -60, Description: d2},
		{Threshold: -20, Description: d3},
		{Threshold: 20, Description: d4},
		{Threshold: 60, Description: d5},
	}
}

// Traits is the full attribute schema: 2 state traits and 20 numeric traits.
var Traits = map[string]TraitInfo{
	"mood": {
		Label:       "Mood",
		Description: "Your characters current mood",
		Category:    CategoryState,
	},
	"goal": {
		Label:       "Goal",
		Description: "Your characters current goal",
		Category:    CategoryState,
	},

	"posting_frequency": {
		Label:       "Posting Frequency",
		Description: "How often your character interacts with the platform",
		Category:    CategoryActions,
		Bands: fiveBands(
			"Rarely posts",
			"Infrequently posts",
			"Posts an average amount",
			"Frequently posts",
			"Posts very often",
		),
	},
	"originality": {
		Label:       "Originality",
		Description: "How often your character decides to create original content vs interacting with existing content",
		Category:    CategoryActions,
		Bands: fiveBands(
			"Almost always interacts with existing content",
			"Prefers interacting with existing content",
			"Balanced between original and interactive content",
			"Prefers creating original content",
			"Almost always creates original content",
		),
	},
	"like_reply_ratio": {
		Label:       "Like/Reply Ratio",
		Description: "When interacting, the frequency of replies vs likes as interactions",
		Category:    CategoryActions,
		Bands: fiveBands(
			"Almost exclusively likes content",
			"Prefers liking over replying",
			"Balanced between likes and replies",
			"Prefers replying over liking",
			"Almost exclusively replies to content",
		),
	},
	"responsiveness": {
		Label:       "Responsiveness",
		Description: "How quickly your character responds to direct messages",
		Category:    CategoryActions,
		Bands: fiveBands(
			"Very slow to respond",
			"Takes time to respond",
			"Responds at a moderate pace",
			"Quick to respond",
			"Responds almost immediately",
		),
	},

	"reading_scope": {
		Label:       "Reading Scope",
		Description: "How broadly your character reads and considers content across the platform",
		Category:    CategoryProviders,
		Bands: fiveBands(
			"Reads very few if any posts",
			"Reads a few posts",
			"Reads a moderate amount of posts",
			"Reads a lot of posts",
			"Reads an overwhelming amount of posts",
		),
	},
	"information_filtering": {
		Label:       "Information Filtering",
		Description: "How selectively your character filters and processes information",
		Category:    CategoryProviders,
		Bands: fiveBands(
			"Extremely focused on specific topics",
			"Tends to stay within familiar topics",
			"Balanced reading scope",
			"Explores diverse topics",
			"Does not filter based on topic",
		),
	},
	"sentiment_filtering": {
		Label:       "Sentiment Filtering",
		Description: "How much your character filters content based on emotional tone",
		Category:    CategoryProviders,
		Bands: fiveBands(
			"Ignores emotional tone completely",
			"Rarely considers emotional tone",
			"Sometimes considers emotional tone",
			"Often filters by emotional tone",
			"Heavily filters based on emotional tone",
		),
	},
	"profile_scrutiny": {
		Label:       "Profile Scrutiny",
		Description: "How deeply your character examines other profiles",
		Category:    CategoryProviders,
		Bands: fiveBands(
			"Never checks profiles",
			"Rarely checks profiles",
			"Sometimes checks profiles",
			"Often checks profiles",
			"Always thoroughly examines profiles",
		),
	},

	"influencability": {
		Label:       "Influencability",
		Description: "How easily your character is influenced by others' opinions and behaviors",
		Category:    CategoryEvaluators,
		Bands: fiveBands(
			"Completely resistant to influence",
			"Rarely influenced by others",
			"Moderately influenced by others",
			"Easily influenced by others",
			"Extremely susceptible to influence",
		),
	},
	"engagement_sensitivity": {
		Label:       "Engagement Sensitivity",
		Description: "How sensitive your character is to engagement metrics",
		Category:    CategoryEvaluators,
		Bands: fiveBands(
			"Completely ignores engagement metrics",
			"Barely notices engagement metrics",
			"Moderately aware of engagement",
			"Quite sensitive to engagement",
			"Extremely focused on engagement metrics",
		),
	},
	"relationship_formation_speed": {
		Label:       "Relationship Formation Speed",
		Description: "How quickly your character forms relationships with others",
		Category:    CategoryEvaluators,
		Bands: fiveBands(
			"Very slow to form relationships",
			"Takes time to form relationships",
			"Forms relationships at a normal pace",
			"Quick to form relationships",
			"Forms relationships very quickly",
		),
	},
	"relationship_closeness_threshold": {
		Label:       "Relationship Closeness Threshold",
		Description: "How much interaction is needed before your character considers someone close",
		Category:    CategoryEvaluators,
		Bands: fiveBands(
			"Very difficult to become close with",
			"High threshold for closeness",
			"Moderate threshold for closeness",
			"Relatively low threshold for closeness",
			"Very easily considers others close",
		),
	},
	"relationship_stability": {
		Label:       "Relationship Stability",
		Description: "How stable your character's relationships are once formed",
		Category:    CategoryEvaluators,
		Bands: fiveBands(
			"Very unstable relationships",
			"Somewhat unstable relationships",
			"Moderately stable relationships",
			"Quite stable relationships",
			"Extremely stable relationships",
		),
	},
	"grudge_persistence": {
		Label:       "Grudge Persistence",
		Description: "How long your character maintains negative feelings from conflicts",
		Category:    CategoryEvaluators,
		Bands: fiveBands(
			"Never holds grudges",
			"Quickly forgives",
			"Sometimes holds grudges",
			"Often holds grudges",
			"Always holds long-lasting grudges",
		),
	},

	"positivity": {
		Label:       "Positivity",
		Description: "How positive or optimistic your character's interactions are",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Extremely negative outlook",
			"Generally pessimistic",
			"Balanced outlook",
			"Generally optimistic",
			"Extremely positive outlook",
		),
	},
	"openness": {
		Label:       "Openness",
		Description: "How willing your character is to share personal thoughts and feelings",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Extremely private and guarded",
			"Generally reserved",
			"Moderately open",
			"Quite open and sharing",
			"Completely open and transparent",
		),
	},
	"formality": {
		Label:       "Formality",
		Description: "How formal or casual your character's communication style is",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Very casual and informal",
			"Mostly casual",
			"Mix of formal and casual",
			"Generally formal",
			"Extremely formal and proper",
		),
	},
	"conflict_initiation": {
		Label:       "Conflict Initiation",
		Description: "How likely your character is to initiate or engage in conflicts",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Always avoids conflict",
			"Usually avoids conflict",
			"Sometimes engages in conflict",
			"Often initiates conflict",
			"Actively seeks out conflict",
		),
	},
	"influence_seeking": {
		Label:       "Influence Seeking",
		Description: "How actively your character seeks to influence others",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Never tries to influence others",
			"Rarely tries to influence others",
			"Sometimes tries to influence others",
			"Often tries to influence others",
			"Always trying to influence others",
		),
	},
	"inquisitiveness": {
		Label:       "Inquisitiveness",
		Description: "How often your character asks questions and seeks information",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Never asks questions",
			"Rarely asks questions",
			"Sometimes asks questions",
			"Often asks questions",
			"Constantly asking questions",
		),
	},
	"humor": {
		Label:       "Humor",
		Description: "How often your character uses humor in interactions",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Never uses humor",
			"Rarely uses humor",
			"Sometimes uses humor",
			"Often uses humor",
			"Always trying to be humorous",
		),
	},
	"depth": {
		Label:       "Depth",
		Description: "How deep or superficial your character's interactions tend to be",
		Category:    CategoryContent,
		Bands: fiveBands(
			"Very superficial interactions",
			"Generally superficial",
			"Mix of deep and superficial",
			"Generally deep interactions",
			"Always seeks deep meaningful interactions",
		),
	},
}

// DescribeTrait resolves the single applicable description for a trait value
// using highest-qualifying-floor semantics: bands are considered in
// descending threshold order and the first band whose threshold is <= value
// wins, so a value exactly equal to a threshold matches that band and the
// highest band is open-ended upward.
//
// State traits (mood, goal), unknown trait names, and values below every
// configured threshold all yield the empty string rather than an error.
// The function is pure and safe for concurrent use.
func DescribeTrait(trait string, value float64) string {
	info, ok := Traits[trait]
	if !ok || len(info.Bands) == 0 {
		return ""
	}

	bands := make([]Band, len(info.Bands))
	copy(bands, info.Bands)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Threshold > bands[j].Threshold })

	for _, b := range bands {
		if value >= b.Threshold {
			return b.Description
		}
	}
	return ""
}

// CharacterAttributes is the 1:1 behavioral parameter row for a character.
// Mood and goal are free-text state; the remaining twenty columns are the
// numeric traits interpreted by DescribeTrait.
type CharacterAttributes struct {
	CharacterID string `json:"character_id,omitempty" gorm:"type:char(36);primaryKey"`

	// state - changes based on evaluators
	Mood string `json:"mood" gorm:"type:text;not null;default:''"`
	Goal string `json:"goal" gorm:"type:text;not null;default:''"`

	// actions
	PostingFrequency float64 `json:"posting_frequency" gorm:"not null;default:0"`
	Originality      float64 `json:"originality"       gorm:"not null;default:0"`
	LikeReplyRatio   float64 `json:"like_reply_ratio"  gorm:"not null;default:0"`
	Responsiveness   float64 `json:"responsiveness"    gorm:"not null;default:0"`

	// providers
	ReadingScope         float64 `json:"reading_scope"         gorm:"not null;default:0"`
	InformationFiltering float64 `json:"information_filtering" gorm:"not null;default:0"`
	SentimentFiltering   float64 `json:"sentiment_filtering"   gorm:"not null;default:0"`
	ProfileScrutiny      float64 `json:"profile_scrutiny"      gorm:"not null;default:0"`

	// evaluators
	Influencability                float64 `json:"influencability"                  gorm:"not null;default:0"`
	EngagementSensitivity          float64 `json:"engagement_sensitivity"           gorm:"not null;default:0"`
	RelationshipFormationSpeed     float64 `json:"relationship_formation_speed"     gorm:"not null;default:0"`
	RelationshipClosenessThreshold float64 `json:"relationship_closeness_threshold" gorm:"not null;default:0"`
	RelationshipStability          float64 `json:"relationship_stability"           gorm:"not null;default:0"`
	GrudgePersistence              float64 `json:"grudge_persistence"               gorm:"not null;default:0"`

	// content
	Positivity         float64 `json:"positivity"          gorm:"not null;default:0"`
	Openness           float64 `json:"openness"            gorm:"not null;default:0"`
	Formality          float64 `json:"formality"           gorm:"not null;default:0"`
	ConflictInitiation float64 `json:"conflict_initiation" gorm:"not null;default:0"`
	InfluenceSeeking   float64 `json:"influence_seeking"   gorm:"not null;default:0"`
	Inquisitiveness    float64 `json:"inquisitiveness"     gorm:"not null;default:0"`
	Humor              float64 `json:"humor"               gorm:"not null;default:0"`
	Depth              float64 `json:"depth"               gorm:"not null;default:0"`
}

// TableName returns the database table name for CharacterAttributes.
func (CharacterAttributes) TableName() string { return "character_attributes" }

// TraitValues returns the numeric trait values keyed by trait name. The set
// of names is fixed and total; state fields are not included.
func (a CharacterAttributes) TraitValues() map[string]float64 {
	return map[string]float64{
		"posting_frequency": a.PostingFrequency,
		"originality":       a.Originality,
		"like_reply_ratio":  a.LikeReplyRatio,
		"responsiveness":    a.Responsiveness,

		"reading_scope":         a.ReadingScope,
		"information_filtering": a.InformationFiltering,
		"sentiment_filtering":   a.SentimentFiltering,
		"profile_scrutiny":      a.ProfileScrutiny,

		"influencability":                  a.Influencability,
		"engagement_sensitivity":           a.EngagementSensitivity,
		"relationship_formation_speed":     a.RelationshipFormationSpeed,
		"relationship_closeness_threshold": a.RelationshipClosenessThreshold,
		"relationship_stability":           a.RelationshipStability,
		"grudge_persistence":               a.GrudgePersistence,

		"positivity":          a.Positivity,
		"openness":            a.Openness,
		"formality":           a.Formality,
		"conflict_initiation": a.ConflictInitiation,
		"influence_seeking":   a.InfluenceSeeking,
		"inquisitiveness":     a.Inquisitiveness,
		"humor":               a.Humor,
		"depth":               a.Depth,
	}
}

// DescribeAll resolves every numeric trait of a to its behavioral
// description, producing the profile sheet consumed by the characters'
// decision-making logic.
func (a CharacterAttributes) DescribeAll() map[string]string {
	vals := a.TraitValues()
	out := make(map[string]string, len(vals))
	for name, v := range vals {
		out[name] = DescribeTrait(name, v)
	}
	return out
}
