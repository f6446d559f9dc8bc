package model

// ValidatorFunc is an opaque, caller supplied validator. It is carried through
// documentation untouched and rendered as "custom".
type ValidatorFunc func(value any) error

// ValidationRule is the canonical form of a declared validation rule. Args is
// nil when the rule was declared as a bare flag.
type ValidationRule struct {
	Name string        `json:"name"`
	Args any           `json:"args,omitempty"`
	Func ValidatorFunc `json:"-"`
}

// IsCustom reports whether the rule wraps an opaque validator function.
func (r ValidationRule) IsCustom() bool {
	return r.Func != nil
}

// NormalizeRule converts a raw rule value into its canonical form. Values
// already in canonical form, {args: v} mappings and validator functions keep
// their shape; anything else is wrapped as Args. Applying it to its own output
// returns an equal rule.
func NormalizeRule(name string, raw any) ValidationRule {
	switch v := raw.(type) {
	case ValidationRule:
		if v.Name == "" {
			v.Name = name
		}
		return v
	case *ValidationRule:
		if v == nil {
			return ValidationRule{Name: name}
		}
		return NormalizeRule(name, *v)
	case ValidatorFunc:
		return ValidationRule{Name: name, Func: v}
	case func(any) error:
		return ValidationRule{Name: name, Func: v}
	case map[string]any:
		if args, ok := v["args"]; ok {
			return ValidationRule{Name: name, Args: unwrapFlag(args)}
		}
		return ValidationRule{Name: name, Args: v}
	default:
		return ValidationRule{Name: name, Args: unwrapFlag(raw)}
	}
}

func unwrapFlag(v any) any {
	if b, ok := v.(bool); ok && b {
		return nil
	}
	return v
}
