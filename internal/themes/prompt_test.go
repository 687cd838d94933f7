package themes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calshop/internal/domain"
)

func TestCatalogHasTwelveThemes(t *testing.T) {
	all := All()
	require.Len(t, all, 12)
	for m := 1; m <= 12; m++ {
		theme, ok := Get(m)
		require.True(t, ok, "month %d missing from catalog", m)
		assert.NotEmpty(t, theme.Title)
		assert.NotEmpty(t, theme.Prompt)
	}
	_, ok := Get(13)
	assert.False(t, ok)
}

func TestBuildPromptIsDeterministic(t *testing.T) {
	req := CustomizedRequest{Preferences: DefaultPreferences(), Tier: TierSoftened}
	first, err := BuildPrompt(7, req)
	require.NoError(t, err)
	second, err := BuildPrompt(7, req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildPromptBase(t *testing.T) {
	prompt, err := BuildPrompt(1, BaseRequest{})
	require.NoError(t, err)

	theme, _ := Get(1)
	assert.Contains(t, prompt, theme.Prompt)
	assert.Contains(t, prompt, "IMPORTANT: Use the reference images")
	// The base block keeps the unsanitized body wording; customized tiers
	// use the scenario wording instead.
	assert.Contains(t, prompt, "placing them on this hunky body")
	assert.Contains(t, prompt, "blended with the muscular body")

	softened, err := BuildPrompt(1, CustomizedRequest{Preferences: DefaultPreferences(), Tier: TierSoftened})
	require.NoError(t, err)
	assert.NotContains(t, softened, "hunky body")
	assert.Contains(t, softened, "placing them in this scenario")
}

func TestBuildPromptRejectsBadMonth(t *testing.T) {
	_, err := BuildPrompt(0, BaseRequest{})
	assert.ErrorIs(t, err, domain.ErrInput)
	_, err = BuildPrompt(13, CustomizedRequest{Preferences: DefaultPreferences()})
	assert.ErrorIs(t, err, domain.ErrInput)
}

func TestBuildPromptSoftenedRemovesBodyVocabulary(t *testing.T) {
	prompt, err := BuildPrompt(1, CustomizedRequest{
		Preferences: DefaultPreferences(),
		Tier:        TierSoftened,
	})
	require.NoError(t, err)

	assert.NotContains(t, prompt, "shirtless")
	assert.NotContains(t, prompt, "incredibly muscular")
	// The funny default tone is appended after the substitution passes.
	assert.Contains(t, prompt, "gag gift vibes")
}

func TestBuildPromptConservativeIsStricterThanSoftened(t *testing.T) {
	softened, err := BuildPrompt(1, CustomizedRequest{Preferences: DefaultPreferences(), Tier: TierSoftened})
	require.NoError(t, err)
	conservative, err := BuildPrompt(1, CustomizedRequest{Preferences: DefaultPreferences(), Tier: TierConservative})
	require.NoError(t, err)

	assert.NotEqual(t, softened, conservative)
	assert.Contains(t, conservative, "Professional portrait photography style.")
	assert.Contains(t, conservative, "Create a natural portrait")
	assert.NotContains(t, conservative, "shirtless")
	assert.NotContains(t, conservative, "abs")
}

func TestBuildPromptFemalePresentation(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.Gender = "female"
	prompt, err := BuildPrompt(1, CustomizedRequest{Preferences: prefs, Tier: TierSoftened})
	require.NoError(t, err)

	assert.Contains(t, prompt, "female firefighter")
	assert.NotContains(t, prompt, "shirtless")
}

func TestBuildPromptModestStyle(t *testing.T) {
	prefs := DefaultPreferences()
	prefs.Style = "modest"
	prompt, err := BuildPrompt(4, CustomizedRequest{Preferences: prefs, Tier: TierSoftened})
	require.NoError(t, err)
	assert.NotContains(t, prompt, "shirtless")
}

func TestValidatePreferencesFillsDefaults(t *testing.T) {
	got := ValidatePreferences(domain.Preferences{Gender: "alien", BodyType: "fit"})
	assert.Equal(t, "male", got.Gender)
	assert.Equal(t, "fit", got.BodyType)
	assert.Equal(t, "sexy", got.Style)
	assert.Equal(t, "funny", got.Tone)
}

func TestOptionsExposeAllAxes(t *testing.T) {
	opts := Options()
	for _, axis := range []string{"gender", "body_type", "style", "tone"} {
		require.Contains(t, opts, axis)
		assert.NotEmpty(t, opts[axis].Options)
		assert.NotEmpty(t, opts[axis].Default)
	}
}
