package namespace

import "github.com/odvcencio/xqscope/pkg/syntax"

// Classifier decides which namespace kind applies to a name node, from the
// construct the name appears in.
type Classifier interface {
	Classify(name *syntax.Node) Kind
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(name *syntax.Node) Kind

func (f ClassifierFunc) Classify(name *syntax.Node) Kind {
	return f(name)
}

// DefaultClassifier classifies names by the kind of their parent node.
var DefaultClassifier Classifier = ClassifierFunc(classifyByParent)

func classifyByParent(name *syntax.Node) Kind {
	parent := name.Parent()
	switch parent.Kind() {
	case syntax.KindFunctionDecl:
		return DefaultFunctionDecl
	case syntax.KindFunctionCall, syntax.KindNamedFunctionRef, syntax.KindArrowFunction:
		return DefaultFunctionRef
	case syntax.KindTypeName:
		return Type
	case syntax.KindElementTest, syntax.KindDirElemConstructor:
		return Element
	case syntax.KindNameTest:
		if parent.AttrOr(syntax.AttrAxis, "") == "attribute" {
			return None
		}
		return Element
	case syntax.KindAnnotation, syntax.KindOptionDecl:
		return BuiltinFixed
	default:
		// variable names, attribute names and pragmas live in no namespace
		return None
	}
}

// FixedNamespace returns the namespace an unprefixed BuiltinFixed name
// belongs to.
func FixedNamespace(name *syntax.Node) string {
	if name.Parent().Kind() == syntax.KindOptionDecl {
		return OptionsNamespace
	}
	return AnnotationsNamespace
}
