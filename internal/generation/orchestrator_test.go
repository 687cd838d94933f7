package generation

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calshop/internal/adapter/repo"
	"calshop/internal/domain"
	"calshop/internal/themes"
)

// stubGenerator records every prompt and fails those matching failOn.
type stubGenerator struct {
	prompts []string
	failOn  func(prompt string) bool
	output  []byte
}

func (g *stubGenerator) Generate(_ context.Context, prompt string, refs [][]byte) ([]byte, error) {
	g.prompts = append(g.prompts, prompt)
	if g.failOn != nil && g.failOn(prompt) {
		return nil, assert.AnError
	}
	return g.output, nil
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < 8; i++ {
		img.Set(i, i, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fixture struct {
	store *repo.MemoryStore
	gen   *stubGenerator
	orch  *Orchestrator
	token string
}

func newFixture(t *testing.T, withPrefs bool, refs int) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repo.NewMemoryStore()

	p, err := store.CreateProject(ctx)
	require.NoError(t, err)
	for i := 0; i < refs; i++ {
		_, err := store.AddReferenceImage(ctx, p.Token, "ref.jpg", pngBytes(t), []byte{1})
		require.NoError(t, err)
	}
	if withPrefs {
		require.NoError(t, store.SetPreferences(ctx, p.Token, themes.DefaultPreferences()))
	}

	prompts := make(map[int]string, domain.MonthCount)
	for m := 1; m <= domain.MonthCount; m++ {
		theme, _ := themes.Get(m)
		prompts[m] = theme.Prompt
	}
	require.NoError(t, store.InitializeMonths(ctx, p.Token, prompts))
	require.NoError(t, store.UpdateProjectStatus(ctx, p.Token, domain.ProjectStatusUploading))
	require.NoError(t, store.UpdateProjectStatus(ctx, p.Token, domain.ProjectStatusPrompts))

	gen := &stubGenerator{output: pngBytes(t)}
	orch := New(store, gen, zerolog.Nop(), Options{})
	return &fixture{store: store, gen: gen, orch: orch, token: p.Token}
}

func TestGenerateMonthFirstAttemptSucceeds(t *testing.T) {
	f := newFixture(t, true, 3)

	unit, err := f.orch.GenerateMonth(context.Background(), f.token, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.MonthStatusCompleted, unit.Status)
	assert.Equal(t, themes.TierSoftened, unit.Tier)
	assert.NotNil(t, unit.GeneratedAt)
	require.Len(t, f.gen.prompts, 1)

	// Stored bytes are normalized JPEG regardless of what the provider sent.
	_, err = jpeg.Decode(bytes.NewReader(unit.ImageData))
	assert.NoError(t, err)
}

func TestGenerateMonthWithoutPreferencesUsesBasePrompt(t *testing.T) {
	f := newFixture(t, false, 3)

	unit, err := f.orch.GenerateMonth(context.Background(), f.token, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.MonthStatusCompleted, unit.Status)
	assert.Equal(t, themes.TierBase, unit.Tier)
	require.Len(t, f.gen.prompts, 1)
	theme, _ := themes.Get(1)
	assert.Contains(t, f.gen.prompts[0], theme.Prompt)
}

func TestGenerateMonthFallsBackToConservativeTier(t *testing.T) {
	f := newFixture(t, true, 3)
	calls := 0
	f.gen.failOn = func(string) bool {
		calls++
		return calls == 1
	}

	unit, err := f.orch.GenerateMonth(context.Background(), f.token, 2)
	require.NoError(t, err)

	assert.Equal(t, domain.MonthStatusCompleted, unit.Status)
	assert.Equal(t, themes.TierConservative, unit.Tier)
	require.Len(t, f.gen.prompts, 2)
	assert.Contains(t, f.gen.prompts[1], "Professional portrait photography style.")
}

func TestGenerateMonthRecordsBothTierFailures(t *testing.T) {
	f := newFixture(t, true, 3)
	f.gen.failOn = func(string) bool { return true }

	unit, err := f.orch.GenerateMonth(context.Background(), f.token, 4)
	require.NoError(t, err)

	assert.Equal(t, domain.MonthStatusFailed, unit.Status)
	assert.Contains(t, unit.ErrorMessage, "tier 1")
	assert.Contains(t, unit.ErrorMessage, "tier 2")
	assert.Len(t, f.gen.prompts, 2)
}

func TestGenerateMonthWithoutReferencesNeverCallsProvider(t *testing.T) {
	f := newFixture(t, true, 0)

	unit, err := f.orch.GenerateMonth(context.Background(), f.token, 1)
	require.NoError(t, err)

	assert.Equal(t, domain.MonthStatusFailed, unit.Status)
	assert.Contains(t, unit.ErrorMessage, "no reference images")
	assert.Empty(t, f.gen.prompts)
}

func TestGenerateMonthCompletedShortCircuits(t *testing.T) {
	f := newFixture(t, true, 3)

	first, err := f.orch.GenerateMonth(context.Background(), f.token, 6)
	require.NoError(t, err)
	require.Equal(t, domain.MonthStatusCompleted, first.Status)

	again, err := f.orch.GenerateMonth(context.Background(), f.token, 6)
	require.NoError(t, err)
	assert.Equal(t, first.GeneratedAt, again.GeneratedAt)
	assert.Len(t, f.gen.prompts, 1, "completed month must not hit the provider again")
}

func TestGenerateMonthRejectsBadInput(t *testing.T) {
	f := newFixture(t, true, 3)

	_, err := f.orch.GenerateMonth(context.Background(), f.token, 0)
	assert.ErrorIs(t, err, domain.ErrInput)
	_, err = f.orch.GenerateMonth(context.Background(), "unknown", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateAllReachesPreviewWhenEveryMonthCompletes(t *testing.T) {
	f := newFixture(t, true, 3)

	result, err := f.orch.GenerateAll(context.Background(), f.token)
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Completed: 12, Failed: 0, Total: 12}, result)
	p, err := f.store.GetProject(context.Background(), f.token)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPreview, p.Status)
}

func TestGenerateAllIsolatesSingleMonthFailure(t *testing.T) {
	f := newFixture(t, true, 3)
	// May's gardener scenario fails on both tiers; every other month works.
	f.gen.failOn = func(prompt string) bool {
		return strings.Contains(strings.ToLower(prompt), "gardener")
	}

	result, err := f.orch.GenerateAll(context.Background(), f.token)
	require.NoError(t, err)

	assert.Equal(t, 11, result.Completed)
	assert.Equal(t, 1, result.Failed)

	p, err := f.store.GetProject(context.Background(), f.token)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPartial, p.Status)

	may, err := f.store.GetMonth(context.Background(), f.token, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.MonthStatusFailed, may.Status)
}

func TestGenerateAllRetriesOnlyUnfinishedMonths(t *testing.T) {
	f := newFixture(t, true, 3)
	f.gen.failOn = func(prompt string) bool {
		return strings.Contains(strings.ToLower(prompt), "gardener")
	}

	_, err := f.orch.GenerateAll(context.Background(), f.token)
	require.NoError(t, err)
	callsAfterFirst := len(f.gen.prompts)

	// Second pass: only May is retried, and this time it works.
	f.gen.failOn = nil
	result, err := f.orch.GenerateAll(context.Background(), f.token)
	require.NoError(t, err)

	assert.Equal(t, 12, result.Completed)
	assert.Equal(t, callsAfterFirst+1, len(f.gen.prompts))

	p, err := f.store.GetProject(context.Background(), f.token)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPreview, p.Status)
}

func TestRetryCompletingTheSetSettlesInPreview(t *testing.T) {
	f := newFixture(t, true, 3)
	ctx := context.Background()

	// Both tiers of May's prompt fail, so the batch pass ends partial.
	f.gen.failOn = func(prompt string) bool { return strings.Contains(prompt, "gardener") }
	result, err := f.orch.GenerateAll(ctx, f.token)
	require.NoError(t, err)
	assert.Equal(t, 11, result.Completed)

	project, err := f.store.GetProject(ctx, f.token)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStatusPartial, project.Status)

	// A single-month retry that completes the twelfth month settles the
	// project without another batch pass, opening checkout.
	f.gen.failOn = nil
	unit, err := f.orch.GenerateMonth(ctx, f.token, 5)
	require.NoError(t, err)
	assert.Equal(t, domain.MonthStatusCompleted, unit.Status)

	project, err = f.store.GetProject(ctx, f.token)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusPreview, project.Status)
	assert.NoError(t, f.store.UpdateProjectStatus(ctx, f.token, domain.ProjectStatusCheckout))
}

func TestGenerateAllSkipsPacingForCompletedMonths(t *testing.T) {
	f := newFixture(t, true, 3)

	_, err := f.orch.GenerateAll(context.Background(), f.token)
	require.NoError(t, err)
	callsAfterFirstPass := len(f.gen.prompts)

	// A resume pass over a fully completed project makes no provider calls
	// and must not idle between the short-circuited months.
	slow := New(f.store, f.gen, zerolog.Nop(), Options{UnitDelay: time.Hour})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	result, err := slow.GenerateAll(ctx, f.token)
	require.NoError(t, err)
	assert.Equal(t, domain.MonthCount, result.Completed)
	assert.Len(t, f.gen.prompts, callsAfterFirstPass)
	assert.Less(t, time.Since(start), time.Second)
}
