package onboarding

import "fmt"

// Wizard step ids. The welcome step has no form and therefore no gate.
const (
	StepWelcome      = 1
	StepStoreProfile = 2
	StepPayment      = 3
	StepShipping     = 4
	StepProduct      = 5

	TotalSteps = 5
)

// StoreProfileRules validate the store profile draft.
var StoreProfileRules = []FieldRule{
	{Field: "storeName", Expr: `trimlen(draft.storeName) > 0`, Message: "Store name is required"},
	{Field: "storeName", Expr: `trimlen(draft.storeName) >= 2`, Message: "Store name must be at least 2 characters"},
	{Field: "storeName", Expr: `trimlen(draft.storeName) <= 50`, Message: "Store name must be less than 50 characters"},
	{Field: "description", Expr: `trimlen(draft.description) > 0`, Message: "Store description is required"},
	{Field: "description", Expr: `trimlen(draft.description) >= 20`, Message: "Description must be at least 20 characters"},
	{Field: "description", Expr: `trimlen(draft.description) <= 500`, Message: "Description must be less than 500 characters"},
}

// PaymentRules validate the payment setup draft.
var PaymentRules = []FieldRule{
	{Field: "paymentProvider", Expr: `trimlen(draft.paymentProvider) > 0`, Message: "Payment provider selection is required"},
	{Field: "paymentProvider", Expr: `(draft.paymentProvider ?? "") in ["stripe", "paypal", "both"]`, Message: "Payment provider must be stripe, paypal or both"},
}

// ShippingRules validate the shipping options draft. A single invalid option
// invalidates the whole step.
var ShippingRules = []FieldRule{
	{Field: "shippingOptions", Expr: `len(draft.shippingOptions ?? []) > 0`, Message: "At least one shipping option is required"},
	{
		Field:   "shippingOptions",
		Expr:    `all(draft.shippingOptions ?? [], {trimlen(.name) > 0 && trimlen(.estimatedDays) > 0 && (.price ?? 0) >= 0})`,
		Message: "Every shipping option needs a name, a delivery estimate and a non-negative price",
	},
}

// ProductRules validate the first-product draft.
var ProductRules = []FieldRule{
	{Field: "productTitle", Expr: `trimlen(draft.productTitle) > 0`, Message: "Product title is required"},
	{Field: "productTitle", Expr: `trimlen(draft.productTitle) >= 3`, Message: "Title must be at least 3 characters"},
	{Field: "description", Expr: `trimlen(draft.description) > 0`, Message: "Product description is required"},
	{Field: "description", Expr: `trimlen(draft.description) >= 20`, Message: "Description must be at least 20 characters"},
	{Field: "price", Expr: `(draft.price ?? 0) > 0`, Message: "Price must be greater than 0"},
	{Field: "category", Expr: `trimlen(draft.category) > 0`, Message: "Please select a category"},
}

// DefaultGates compiles the standard gate per form step. All gates share the
// supplied options, so a single GateWithEvaluator swaps the engine for the
// whole wizard.
func DefaultGates(opts ...GateOption) (map[int]*Gate, error) {
	specs := map[int][]FieldRule{
		StepStoreProfile: StoreProfileRules,
		StepPayment:      PaymentRules,
		StepShipping:     ShippingRules,
		StepProduct:      ProductRules,
	}
	gates := make(map[int]*Gate, len(specs))
	for step, fieldRules := range specs {
		gate, err := NewGate(step, fieldRules, opts...)
		if err != nil {
			return nil, fmt.Errorf("onboarding: default gates: %w", err)
		}
		gates[step] = gate
	}
	return gates, nil
}
