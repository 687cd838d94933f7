package themes

import (
	"fmt"

	"calshop/internal/domain"
)

// Tier identifies the prompt rewriting strategy. TierBase keeps the catalog
// prompt untouched; TierSoftened rewords body vocabulary into fitness
// language; TierConservative strips body focus entirely and is strictly more
// cautious than TierSoftened.
const (
	TierBase         = 0
	TierSoftened     = 1
	TierConservative = 2
)

// PromptRequest selects how the final prompt is built. The two variants make
// the preferences-absent case explicit instead of branching on a nil check.
type PromptRequest interface {
	promptRequest()
}

// BaseRequest asks for the month's catalog prompt with the unsanitized
// instruction block and no substitution passes.
type BaseRequest struct{}

// CustomizedRequest applies the preference substitution passes followed by
// tier sanitization.
type CustomizedRequest struct {
	Preferences domain.Preferences
	Tier        int
}

func (BaseRequest) promptRequest()       {}
func (CustomizedRequest) promptRequest() {}

const baseInstructions = `IMPORTANT: Use the reference images to capture the person's facial features accurately.
Maintain their face, skin tone, eye color, and distinctive features while placing them on this hunky body.
The face should look natural and photorealistic, seamlessly blended with the muscular body.

Scene Description: %s

Style: Professional photography, high detail, 4K quality, perfect lighting, magazine cover quality.`

const likenessInstructions = `IMPORTANT: Use the reference images to capture the person's facial features accurately.
Maintain their face, skin tone, eye color, and distinctive features while placing them in this scenario.
The face should look natural and photorealistic, seamlessly blended with the scene.

Scene Description: %s

Style: Professional photography, high detail, 4K quality, perfect lighting, magazine cover quality.`

const conservativeInstructions = `IMPORTANT: Use the reference images to capture the person's facial features accurately.
Create a natural portrait of this person in the described scenario.
Maintain their facial features, skin tone, and natural appearance.

Scene Description: %s

Style: Professional portrait photography, natural lighting, editorial quality.`

// BuildPrompt produces the final generation prompt for a month. It is a pure
// function: identical arguments always yield an identical string.
func BuildPrompt(month int, req PromptRequest) (string, error) {
	theme, ok := Get(month)
	if !ok {
		return "", fmt.Errorf("%w: month %d outside 1-12", domain.ErrInput, month)
	}

	switch r := req.(type) {
	case BaseRequest:
		return fmt.Sprintf(baseInstructions, theme.Prompt), nil
	case CustomizedRequest:
		prompt := theme.Prompt
		prompt = applyRules(prompt, genderRules[r.Preferences.Gender])
		prompt = applyRules(prompt, bodyTypeRules(r.Preferences.BodyType))
		prompt = applyStyle(prompt, r.Preferences.Style)
		if suffix, ok := toneSuffixes[r.Preferences.Tone]; ok {
			prompt += suffix
		}
		switch {
		case r.Tier >= TierConservative:
			prompt = applyRules(prompt, tier2Rules) + tier2Suffix
			return fmt.Sprintf(conservativeInstructions, prompt), nil
		case r.Tier == TierSoftened:
			prompt = applyRules(prompt, tier1Rules)
		}
		return fmt.Sprintf(likenessInstructions, prompt), nil
	default:
		return "", fmt.Errorf("%w: unknown prompt request %T", domain.ErrInput, req)
	}
}

func applyStyle(prompt, style string) string {
	if style == "modest" {
		return applyRules(prompt, modestStyleRules)
	}
	if suffix, ok := styleSuffixes[style]; ok {
		return prompt + suffix
	}
	return prompt
}
