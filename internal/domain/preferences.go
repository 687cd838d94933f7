package domain

// Preferences are the user-selected customization axes applied uniformly
// across all twelve prompts. Values are validated against the theme
// catalog's option tables before being stored.
type Preferences struct {
	Gender   string `json:"gender"`
	BodyType string `json:"body_type"`
	Style    string `json:"style"`
	Tone     string `json:"tone"`
}
