package model

// FieldNode is a closed variant over the shapes a field tree can take:
// FieldDescriptor (leaf), Object (ordered properties) and ArrayOf (a repeated
// object described by a single representative element). Resolve it with a
// type switch.
type FieldNode interface {
	fieldNode()
}

func (FieldDescriptor) fieldNode() {}
func (Object) fieldNode()          {}
func (ArrayOf) fieldNode()         {}

// Property is a named entry in an Object. A nil Node marks an undefined
// property which every consumer skips.
type Property struct {
	Name string
	Node FieldNode
}

// Object is an insertion-ordered set of properties.
type Object []Property

// ArrayOf is a list of objects shaped like Element.
type ArrayOf struct {
	Element FieldNode
}

// Prop builds a Property.
func Prop(name string, node FieldNode) Property {
	return Property{Name: name, Node: node}
}

// Get returns the node stored under name.
func (o Object) Get(name string) (FieldNode, bool) {
	for _, p := range o {
		if p.Name == name {
			return p.Node, true
		}
	}
	return nil, false
}

// Names returns the property names in order.
func (o Object) Names() []string {
	out := make([]string, 0, len(o))
	for _, p := range o {
		out = append(out, p.Name)
	}
	return out
}

// IsEmpty reports whether a node contributes nothing to the output. Arrays are
// never empty since they always describe a list.
func IsEmpty(node FieldNode) bool {
	switch n := node.(type) {
	case nil:
		return true
	case Object:
		return len(n) == 0
	default:
		return false
	}
}

// Walk visits every leaf in pre-order with its dotted path.
func Walk(node FieldNode, fn func(path string, field FieldDescriptor)) {
	walk("", node, fn)
}

func walk(prefix string, node FieldNode, fn func(string, FieldDescriptor)) {
	switch n := node.(type) {
	case FieldDescriptor:
		fn(prefix, n)
	case ArrayOf:
		walk(prefix, n.Element, fn)
	case Object:
		for _, p := range n {
			walk(JoinPath(prefix, p.Name), p.Node, fn)
		}
	}
}

// MapLeaves returns a copy of node with every leaf replaced by fn's result.
func MapLeaves(node FieldNode, fn func(FieldDescriptor) FieldDescriptor) FieldNode {
	switch n := node.(type) {
	case FieldDescriptor:
		return fn(n)
	case ArrayOf:
		return ArrayOf{Element: MapLeaves(n.Element, fn)}
	case Object:
		out := make(Object, 0, len(n))
		for _, p := range n {
			out = append(out, Property{Name: p.Name, Node: MapLeaves(p.Node, fn)})
		}
		return out
	default:
		return node
	}
}

// JoinPath joins a parent path and a child property name with a dot.
func JoinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}
