// Package generation drives month units through their generation state
// machine: prompt tiering, the provider call, JPEG normalization and status
// bookkeeping. One unit's failure never touches its siblings.
package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"calshop/internal/domain"
	"calshop/internal/imaging"
	"calshop/internal/infra"
	"calshop/internal/providers/image"
	"calshop/internal/themes"
)

const (
	defaultCallTimeout = 120 * time.Second
	defaultUnitDelay   = 2 * time.Second
)

// Orchestrator coordinates the store, the theme catalog and the generation
// provider. It is safe for concurrent use across different months; racing
// updates to the same month resolve last-write-wins in the store.
type Orchestrator struct {
	store       domain.Store
	generator   image.Generator
	logger      infra.Logger
	callTimeout time.Duration
	unitDelay   time.Duration
}

// Options tune the orchestrator's external-call bounds.
type Options struct {
	// CallTimeout bounds each provider call; a timeout counts as a tier
	// failure and feeds the normal fallback path.
	CallTimeout time.Duration
	// UnitDelay is the fixed sleep between consecutive provider calls in a
	// batch pass, respecting the provider's rate limits. Zero disables
	// pacing; a negative value selects the default.
	UnitDelay time.Duration
}

// New constructs an orchestrator. A non-positive CallTimeout and a negative
// UnitDelay fall back to the defaults.
func New(store domain.Store, generator image.Generator, logger infra.Logger, opts Options) *Orchestrator {
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = defaultCallTimeout
	}
	if opts.UnitDelay < 0 {
		opts.UnitDelay = defaultUnitDelay
	}
	return &Orchestrator{
		store:       store,
		generator:   generator,
		logger:      logger,
		callTimeout: opts.CallTimeout,
		unitDelay:   opts.UnitDelay,
	}
}

// BatchResult summarizes one full pass over a project's months.
type BatchResult struct {
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}

// GenerateMonth drives a single month unit to a terminal state and returns
// it. Generation failures become unit state, not errors; the returned error
// is reserved for unknown units and store failures.
func (o *Orchestrator) GenerateMonth(ctx context.Context, token string, month int) (*domain.MonthUnit, error) {
	unit, _, err := o.generateUnit(ctx, token, month)
	return unit, err
}

// generateUnit additionally reports whether a provider call was made, so
// batch passes only pace months that actually hit the provider.
func (o *Orchestrator) generateUnit(ctx context.Context, token string, month int) (*domain.MonthUnit, bool, error) {
	if !domain.ValidMonth(month) {
		return nil, false, fmt.Errorf("%w: month %d outside 1-12", domain.ErrInput, month)
	}
	unit, err := o.store.GetMonth(ctx, token, month)
	if err != nil {
		return nil, false, err
	}

	// Completed units are never regenerated; the provider call costs money.
	if unit.Status == domain.MonthStatusCompleted {
		return unit, false, nil
	}

	if err := o.store.UpdateMonthStatus(ctx, token, month, domain.MonthUpdate{Status: domain.MonthStatusProcessing}); err != nil {
		return nil, false, err
	}

	refs, err := o.store.ListReferenceImages(ctx, token)
	if err != nil {
		return nil, false, err
	}
	if len(refs) == 0 {
		unit, err := o.fail(ctx, token, month, "no reference images uploaded")
		return unit, false, err
	}
	refData := make([][]byte, len(refs))
	for i, r := range refs {
		refData[i] = r.Data
	}

	prefs, err := o.store.GetPreferences(ctx, token)
	if err != nil {
		return nil, false, err
	}

	firstPrompt, firstTier, err := promptForAttempt(month, prefs, false)
	if err != nil {
		return nil, false, err
	}
	data, firstErr := o.attempt(ctx, firstPrompt, refData)
	tier := firstTier
	if firstErr != nil {
		o.logger.Warn().Err(firstErr).Str("project", token).Int("month", month).
			Int("tier", firstTier).Msg("generation attempt failed, trying conservative prompt")

		fallbackPrompt, fallbackTier, err := promptForAttempt(month, prefs, true)
		if err != nil {
			return nil, true, err
		}
		var fallbackErr error
		data, fallbackErr = o.attempt(ctx, fallbackPrompt, refData)
		if fallbackErr != nil {
			msg := fmt.Sprintf("tier %d: %v; tier %d: %v", firstTier, firstErr, fallbackTier, fallbackErr)
			unit, err := o.fail(ctx, token, month, msg)
			return unit, true, err
		}
		tier = fallbackTier
	}

	// The provider returns PNG; re-encoding to JPEG roughly halves what we
	// store and ship to the print provider.
	normalized, err := imaging.Normalize(data)
	if err != nil {
		unit, err := o.fail(ctx, token, month, fmt.Sprintf("normalize generated image: %v", err))
		return unit, true, err
	}

	if err := o.store.UpdateMonthStatus(ctx, token, month, domain.MonthUpdate{
		Status:    domain.MonthStatusCompleted,
		ImageData: normalized,
		Tier:      tier,
	}); err != nil {
		return nil, true, err
	}
	o.logger.Info().Str("project", token).Int("month", month).Int("tier", tier).
		Int("bytes", len(normalized)).Msg("month generated")

	if err := o.settleIfComplete(ctx, token); err != nil {
		return nil, true, err
	}
	unit, err = o.store.GetMonth(ctx, token, month)
	return unit, true, err
}

// settleIfComplete moves the project to preview once all twelve months are
// completed, so a per-month retry that finishes the set opens checkout
// without another batch pass.
func (o *Orchestrator) settleIfComplete(ctx context.Context, token string) error {
	count, err := o.store.CompletionCount(ctx, token)
	if err != nil {
		return err
	}
	if count < domain.MonthCount {
		return nil
	}
	p, err := o.store.GetProject(ctx, token)
	if err != nil {
		return err
	}
	if p.Status == domain.ProjectStatusPreview || !domain.CanTransition(p.Status, domain.ProjectStatusPreview) {
		return nil
	}
	if err := o.store.UpdateProjectStatus(ctx, token, domain.ProjectStatusPreview); err != nil {
		return err
	}
	o.logger.Info().Str("project", token).Msg("all months completed, project settled in preview")
	return nil
}

// GenerateAll runs months 1-12 in order, isolating per-unit failures, and
// settles the project in preview (all twelve done) or partial.
func (o *Orchestrator) GenerateAll(ctx context.Context, token string) (BatchResult, error) {
	if err := o.store.UpdateProjectStatus(ctx, token, domain.ProjectStatusProcessing); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Total: domain.MonthCount}
	for month := 1; month <= domain.MonthCount; month++ {
		unit, attempted, err := o.generateUnit(ctx, token, month)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return result, err
			}
			// A missing or unreadable unit is recorded and the pass moves on;
			// sibling months must not be aborted.
			o.logger.Error().Err(err).Str("project", token).Int("month", month).Msg("batch: unit error")
			result.Failed++
			continue
		}
		if unit.Status == domain.MonthStatusCompleted {
			result.Completed++
		} else {
			result.Failed++
		}

		// Short-circuited months made no provider call, so a resume pass
		// over a mostly-complete project does not idle on them.
		if attempted && month < domain.MonthCount && o.unitDelay > 0 {
			if err := sleep(ctx, o.unitDelay); err != nil {
				return result, err
			}
		}
	}

	status := domain.ProjectStatusPartial
	if result.Completed == domain.MonthCount {
		status = domain.ProjectStatusPreview
	}
	if err := o.store.UpdateProjectStatus(ctx, token, status); err != nil {
		return result, err
	}
	o.logger.Info().Str("project", token).Int("completed", result.Completed).
		Int("failed", result.Failed).Str("status", string(status)).Msg("batch pass finished")
	return result, nil
}

func (o *Orchestrator) attempt(ctx context.Context, prompt string, refs [][]byte) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()
	return o.generator.Generate(callCtx, prompt, refs)
}

func (o *Orchestrator) fail(ctx context.Context, token string, month int, message string) (*domain.MonthUnit, error) {
	if err := o.store.UpdateMonthStatus(ctx, token, month, domain.MonthUpdate{
		Status:       domain.MonthStatusFailed,
		ErrorMessage: message,
	}); err != nil {
		return nil, err
	}
	o.logger.Warn().Str("project", token).Int("month", month).Str("reason", message).Msg("month failed")
	return o.store.GetMonth(ctx, token, month)
}

// promptForAttempt selects the prompt tier: projects without preferences use
// the base catalog prompt first, customized projects start at the softened
// tier; the fallback is always the conservative tier.
func promptForAttempt(month int, prefs *domain.Preferences, fallback bool) (string, int, error) {
	if fallback {
		effective := themes.DefaultPreferences()
		if prefs != nil {
			effective = *prefs
		}
		prompt, err := themes.BuildPrompt(month, themes.CustomizedRequest{Preferences: effective, Tier: themes.TierConservative})
		return prompt, themes.TierConservative, err
	}
	if prefs == nil {
		prompt, err := themes.BuildPrompt(month, themes.BaseRequest{})
		return prompt, themes.TierBase, err
	}
	prompt, err := themes.BuildPrompt(month, themes.CustomizedRequest{Preferences: *prefs, Tier: themes.TierSoftened})
	return prompt, themes.TierSoftened, err
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
