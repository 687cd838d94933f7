package themes

import "calshop/internal/domain"

// Option is one selectable value on a customization axis.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Axis groups the options for one customization axis.
type Axis struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
	Default     string   `json:"default"`
}

var axes = map[string]Axis{
	"gender": {
		Label:       "Calendar Gender",
		Description: "Choose the gender presentation for your calendar",
		Options: []Option{
			{Value: "male", Label: "Male Hunk", Description: "Masculine, muscular male body"},
			{Value: "female", Label: "Female Bombshell", Description: "Feminine, fit female body"},
			{Value: "nonbinary", Label: "Non-Binary", Description: "Androgynous, athletic body"},
		},
		Default: "male",
	},
	"body_type": {
		Label:       "Body Type",
		Description: "Select the fitness level",
		Options: []Option{
			{Value: "extremely_muscular", Label: "Extremely Muscular", Description: "Bodybuilder physique with huge muscles"},
			{Value: "athletic", Label: "Athletic & Toned", Description: "Fit and defined, not overly bulky"},
			{Value: "fit", Label: "Fit & Healthy", Description: "In-shape with visible muscle tone"},
			{Value: "average", Label: "Average Build", Description: "Normal, everyday body type"},
		},
		Default: "athletic",
	},
	"style": {
		Label:       "Clothing Style",
		Description: "How revealing should the photos be?",
		Options: []Option{
			{Value: "sexy", Label: "Sexy & Revealing", Description: "Shirtless, minimal clothing, showing off the body"},
			{Value: "modest", Label: "Modest & Clothed", Description: "Fully clothed, appropriate attire"},
			{Value: "comedic", Label: "Comedic & Silly", Description: "Funny costumes and ridiculous outfits"},
			{Value: "dramatic", Label: "Dramatic & Cinematic", Description: "Movie-quality action poses and lighting"},
		},
		Default: "sexy",
	},
	"tone": {
		Label:       "Overall Tone",
		Description: "What vibe do you want?",
		Options: []Option{
			{Value: "serious", Label: "Serious & Intense", Description: "Brooding, mysterious, model-like"},
			{Value: "funny", Label: "Funny & Lighthearted", Description: "Comedic situations, gag gift vibes"},
			{Value: "over_the_top", Label: "Over-the-Top", Description: "Absurdly exaggerated, ridiculously sexy"},
			{Value: "playful", Label: "Playful & Cheeky", Description: "Flirty and fun, not too serious"},
		},
		Default: "funny",
	},
}

// Options returns the customization catalog for the preference UI.
func Options() map[string]Axis {
	out := make(map[string]Axis, len(axes))
	for k, v := range axes {
		out[k] = v
	}
	return out
}

// DefaultPreferences returns every axis set to its default value.
func DefaultPreferences() domain.Preferences {
	return domain.Preferences{
		Gender:   axes["gender"].Default,
		BodyType: axes["body_type"].Default,
		Style:    axes["style"].Default,
		Tone:     axes["tone"].Default,
	}
}

// ValidatePreferences fills missing or unknown axis values with defaults and
// keeps recognized ones.
func ValidatePreferences(prefs domain.Preferences) domain.Preferences {
	out := DefaultPreferences()
	if validOption("gender", prefs.Gender) {
		out.Gender = prefs.Gender
	}
	if validOption("body_type", prefs.BodyType) {
		out.BodyType = prefs.BodyType
	}
	if validOption("style", prefs.Style) {
		out.Style = prefs.Style
	}
	if validOption("tone", prefs.Tone) {
		out.Tone = prefs.Tone
	}
	return out
}

func validOption(axis, value string) bool {
	for _, opt := range axes[axis].Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}
