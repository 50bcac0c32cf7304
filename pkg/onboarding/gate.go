package onboarding

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-storefront/pkg/rules"
)

// FieldRule is one declarative validation rule. Expr must evaluate to a bool
// against the `draft` binding; a false result records Message under Field.
type FieldRule struct {
	Field   string
	Expr    string
	Message string
}

// Result is the outcome of running a gate over a draft. Payload is the
// normalized wire payload and is nil whenever any field error exists; callers
// must not enable forward navigation while Payload is nil.
type Result struct {
	Errors  map[string]string
	Payload map[string]any
}

// Valid reports whether the draft passed every field rule.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Gate validates one step's draft field by field. Rules are compiled once at
// construction and evaluated in order; the first failing rule per field wins.
type Gate struct {
	step   int
	rules  []compiledFieldRule
	logger rules.RuleLogger
}

type compiledFieldRule struct {
	rule    FieldRule
	program rules.CompiledRule
}

type gateConfig struct {
	evaluator rules.Evaluator
	logger    rules.RuleLogger
}

// GateOption configures gate construction.
type GateOption func(*gateConfig)

// GateWithEvaluator selects the rule engine. Defaults to the expr engine with
// the storefront helper registry.
func GateWithEvaluator(evaluator rules.Evaluator) GateOption {
	return func(cfg *gateConfig) {
		if evaluator != nil {
			cfg.evaluator = evaluator
		}
	}
}

// GateWithLogger records rule evaluations.
func GateWithLogger(logger rules.RuleLogger) GateOption {
	return func(cfg *gateConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// NewGate compiles fieldRules for the given step.
func NewGate(step int, fieldRules []FieldRule, opts ...GateOption) (*Gate, error) {
	cfg := gateConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.evaluator == nil {
		cfg.evaluator = rules.NewExprEvaluator(
			rules.ExprWithFunctionRegistry(rules.DefaultRegistry()),
			rules.ExprWithProgramCache(rules.NewMemoryProgramCache()),
		)
	}

	gate := &Gate{step: step, logger: cfg.logger}
	for _, rule := range fieldRules {
		if rule.Field == "" || rule.Expr == "" {
			return nil, fmt.Errorf("onboarding: step %d rule needs field and expression", step)
		}
		program, err := cfg.evaluator.Compile(rule.Expr)
		if err != nil {
			return nil, fmt.Errorf("onboarding: step %d rule for %q: %w", step, rule.Field, err)
		}
		gate.rules = append(gate.rules, compiledFieldRule{rule: rule, program: program})
	}
	return gate, nil
}

// Check validates draft and builds the normalized payload. The returned error
// reports engine failures only; validation failures live in Result.Errors.
func (g *Gate) Check(draft any) (Result, error) {
	payload, err := toPayload(draft)
	if err != nil {
		return Result{}, fmt.Errorf("onboarding: step %d draft: %w", g.step, err)
	}

	result := Result{Errors: map[string]string{}}
	for _, entry := range g.rules {
		if _, failed := result.Errors[entry.rule.Field]; failed {
			continue
		}
		ctx := rules.RuleContext{
			Draft: payload,
			Field: entry.rule.Field,
			Step:  fmt.Sprintf("step-%d", g.step),
		}
		start := time.Now()
		value, err := entry.program.Evaluate(ctx)
		g.log(entry.rule, time.Since(start), err)
		if err != nil {
			return Result{}, err
		}
		passed, ok := value.(bool)
		if !ok {
			return Result{}, fmt.Errorf("onboarding: step %d rule for %q returned %T, want bool", g.step, entry.rule.Field, value)
		}
		if !passed {
			result.Errors[entry.rule.Field] = entry.rule.Message
		}
	}

	if len(result.Errors) > 0 {
		result.Payload = nil
		return result, nil
	}
	result.Payload = normalizePayload(payload)
	return result, nil
}

func (g *Gate) log(rule FieldRule, duration time.Duration, err error) {
	if g.logger == nil {
		return
	}
	g.logger.LogEvaluation(rules.EvaluationLogEvent{
		Engine:   "gate",
		Expr:     rule.Expr,
		Label:    fmt.Sprintf("step-%d.%s", g.step, rule.Field),
		Duration: duration,
		Err:      err,
	})
}

// toPayload flattens a typed draft into the generic wire shape via a JSON
// round-trip so rule expressions see the same field names the contract uses.
func toPayload(draft any) (map[string]any, error) {
	if draft == nil {
		return map[string]any{}, nil
	}
	if m, ok := draft.(map[string]any); ok {
		return m, nil
	}
	buffer, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(buffer, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}

// normalizePayload trims string values recursively and drops empty optionals
// so only meaningful fields travel to the step-update contract.
func normalizePayload(payload map[string]any) map[string]any {
	normalized, _ := normalizeValue(payload).(map[string]any)
	if normalized == nil {
		normalized = map[string]any{}
	}
	return normalized
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			next := normalizeValue(item)
			if isEmptyValue(next) {
				continue
			}
			out[key] = next
		}
		return out
	case []any:
		out := make([]any, 0, len(v))
		for _, item := range v {
			out = append(out, normalizeValue(item))
		}
		return out
	default:
		return value
	}
}

func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
