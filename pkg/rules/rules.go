package rules

import "time"

// RuleContext carries the inputs available to a rule expression.
type RuleContext struct {
	// Draft is the working form data under validation, exposed to
	// expressions as the `draft` binding. Map drafts are passed through;
	// struct drafts should be flattened by the caller first.
	Draft any
	// Now pins the evaluation timestamp. Defaults to time.Now.
	Now *time.Time
	// Args carries free-form expression arguments.
	Args map[string]any
	// Metadata carries caller metadata (session id, user id, ...).
	Metadata map[string]any
	// Field and Step label the rule being evaluated for error reporting.
	Field string
	Step  string
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) label() string {
	if ctx.Step == "" {
		return ctx.Field
	}
	if ctx.Field == "" {
		return ctx.Step
	}
	return ctx.Step + "." + ctx.Field
}

func (ctx RuleContext) draftBinding() map[string]any {
	if ctx.Draft == nil {
		return map[string]any{}
	}
	if m, ok := ctx.Draft.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// Evaluator executes expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

type compileOptionFunc func(*compileConfig)

func (f compileOptionFunc) applyCompileOption(cfg *compileConfig) {
	if f != nil {
		f(cfg)
	}
}
