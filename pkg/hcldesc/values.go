package hcldesc

import (
	"math/big"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/zclconf/go-cty/cty"
)

// exprValue converts an expression into plain Go values. Object literals keep
// their written key order.
func exprValue(expr hclsyntax.Expression) (any, error) {
	switch e := expr.(type) {
	case *hclsyntax.ObjectConsExpr:
		om := orderedmap.New[string, any]()
		for _, item := range e.Items {
			key, err := keyString(item.KeyExpr)
			if err != nil {
				return nil, err
			}
			v, err := exprValue(item.ValueExpr)
			if err != nil {
				return nil, err
			}
			om.Set(key, v)
		}
		return om, nil
	case *hclsyntax.TupleConsExpr:
		out := make([]any, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, err := exprValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	default:
		v, err := value(expr)
		if err != nil {
			return nil, err
		}
		return ctyToGo(v), nil
	}
}

func keyString(expr hclsyntax.Expression) (string, error) {
	v, err := value(expr)
	if err != nil {
		return "", err
	}
	if v.IsNull() || v.Type() != cty.String {
		return "", rangeError(expr.Range(), "object keys must be strings")
	}
	return v.AsString(), nil
}

// ctyToGo maps cty values onto the types encoding/json produces. Whole
// numbers become int so they render without a decimal point.
func ctyToGo(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString()
	case t == cty.Bool:
		return v.True()
	case t == cty.Number:
		return number(v.AsBigFloat())
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			out = append(out, ctyToGo(elem))
		}
		return out
	case t.IsMapType() || t.IsObjectType():
		om := orderedmap.New[string, any]()
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			om.Set(key.AsString(), ctyToGo(elem))
		}
		return om
	default:
		return nil
	}
}

func number(bf *big.Float) any {
	if bf.IsInt() {
		if i, acc := bf.Int64(); acc == big.Exact {
			return int(i)
		}
	}
	f, _ := bf.Float64()
	return f
}

func stringAttr(attr *hclsyntax.Attribute) (string, error) {
	v, err := value(attr.Expr)
	if err != nil {
		return "", err
	}
	if v.IsNull() {
		return "", nil
	}
	s, ok := ctyToGo(v).(string)
	if !ok {
		return "", rangeError(attr.SrcRange, "%s must be a string", attr.Name)
	}
	return s, nil
}

func boolAttr(attr *hclsyntax.Attribute) (bool, error) {
	v, err := value(attr.Expr)
	if err != nil {
		return false, err
	}
	b, ok := ctyToGo(v).(bool)
	if !ok {
		return false, rangeError(attr.SrcRange, "%s must be a bool", attr.Name)
	}
	return b, nil
}

func intAttr(attr *hclsyntax.Attribute) (int, error) {
	v, err := value(attr.Expr)
	if err != nil {
		return 0, err
	}
	i, ok := ctyToGo(v).(int)
	if !ok {
		return 0, rangeError(attr.SrcRange, "%s must be a whole number", attr.Name)
	}
	return i, nil
}

func stringsAttr(attr *hclsyntax.Attribute) ([]string, error) {
	v, err := value(attr.Expr)
	if err != nil {
		return nil, err
	}
	items, ok := ctyToGo(v).([]any)
	if !ok {
		return nil, rangeError(attr.SrcRange, "%s must be a list of strings", attr.Name)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, rangeError(attr.SrcRange, "%s must be a list of strings", attr.Name)
		}
		out = append(out, s)
	}
	return out, nil
}
