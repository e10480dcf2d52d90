package syntax

// Kind is the closed set of construct kinds a syntax tree node can carry.
// Every switch over Kind in the resolution packages is expected to stay
// exhaustive for the binding and namespace-declaring constructs.
type Kind uint16

const (
	KindInvalid Kind = iota

	// Modules and prolog declarations.
	KindModule
	KindVersionDecl
	KindMainModule
	KindLibraryModule
	KindModuleDecl
	KindProlog
	KindNamespaceDecl
	KindDefaultNamespaceDecl
	KindModuleImport
	KindSchemaImport
	KindVarDecl
	KindFunctionDecl
	KindOptionDecl
	KindAnnotation
	KindQueryBody

	// Names.
	KindQName
	KindNCName
	KindURIQualifiedName
	KindVarName

	// Types.
	KindTypeDecl
	KindTypeName
	KindElementTest
	KindAttributeTest

	// Functions.
	KindParamList
	KindParam
	KindFunctionBody
	KindInlineFunctionExpr
	KindFunctionCall
	KindArgumentList
	KindArrowExpr
	KindArrowFunction
	KindNamedFunctionRef

	// FLWOR.
	KindFLWORExpr
	KindForClause
	KindForBinding
	KindPositionalVar
	KindForMemberClause
	KindForMemberBinding
	KindLetClause
	KindLetBinding
	KindWindowClause
	KindWindowStartCondition
	KindWindowEndCondition
	KindWindowVar
	KindWhereClause
	KindOrderByClause
	KindGroupByClause
	KindGroupingSpec
	KindCountClause
	KindReturnClause

	// Other binding constructs.
	KindQuantifiedExpr
	KindQuantifiedBinding
	KindTypeswitchExpr
	KindCaseClause
	KindDefaultCaseClause
	KindTryCatchExpr
	KindCatchClause

	// Scripting blocks.
	KindBlock
	KindBlockDecls
	KindBlockVarDecl
	KindBlockVarDeclEntry
	KindBlockBody

	// Expressions and constructors.
	KindExpr
	KindVarRef
	KindLiteral
	KindEnclosedExpr
	KindPathExpr
	KindNameTest
	KindDirElemConstructor
	KindDirNamespaceAttribute
	KindDirAttribute
	KindPragma

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:               "Invalid",
	KindModule:                "Module",
	KindVersionDecl:           "VersionDecl",
	KindMainModule:            "MainModule",
	KindLibraryModule:         "LibraryModule",
	KindModuleDecl:            "ModuleDecl",
	KindProlog:                "Prolog",
	KindNamespaceDecl:         "NamespaceDecl",
	KindDefaultNamespaceDecl:  "DefaultNamespaceDecl",
	KindModuleImport:          "ModuleImport",
	KindSchemaImport:          "SchemaImport",
	KindVarDecl:               "VarDecl",
	KindFunctionDecl:          "FunctionDecl",
	KindOptionDecl:            "OptionDecl",
	KindAnnotation:            "Annotation",
	KindQueryBody:             "QueryBody",
	KindQName:                 "QName",
	KindNCName:                "NCName",
	KindURIQualifiedName:      "URIQualifiedName",
	KindVarName:               "VarName",
	KindTypeDecl:              "TypeDecl",
	KindTypeName:              "TypeName",
	KindElementTest:           "ElementTest",
	KindAttributeTest:         "AttributeTest",
	KindParamList:             "ParamList",
	KindParam:                 "Param",
	KindFunctionBody:          "FunctionBody",
	KindInlineFunctionExpr:    "InlineFunctionExpr",
	KindFunctionCall:          "FunctionCall",
	KindArgumentList:          "ArgumentList",
	KindArrowExpr:             "ArrowExpr",
	KindArrowFunction:         "ArrowFunction",
	KindNamedFunctionRef:      "NamedFunctionRef",
	KindFLWORExpr:             "FLWORExpr",
	KindForClause:             "ForClause",
	KindForBinding:            "ForBinding",
	KindPositionalVar:         "PositionalVar",
	KindForMemberClause:       "ForMemberClause",
	KindForMemberBinding:      "ForMemberBinding",
	KindLetClause:             "LetClause",
	KindLetBinding:            "LetBinding",
	KindWindowClause:          "WindowClause",
	KindWindowStartCondition:  "WindowStartCondition",
	KindWindowEndCondition:    "WindowEndCondition",
	KindWindowVar:             "WindowVar",
	KindWhereClause:           "WhereClause",
	KindOrderByClause:         "OrderByClause",
	KindGroupByClause:         "GroupByClause",
	KindGroupingSpec:          "GroupingSpec",
	KindCountClause:           "CountClause",
	KindReturnClause:          "ReturnClause",
	KindQuantifiedExpr:        "QuantifiedExpr",
	KindQuantifiedBinding:     "QuantifiedBinding",
	KindTypeswitchExpr:        "TypeswitchExpr",
	KindCaseClause:            "CaseClause",
	KindDefaultCaseClause:     "DefaultCaseClause",
	KindTryCatchExpr:          "TryCatchExpr",
	KindCatchClause:           "CatchClause",
	KindBlock:                 "Block",
	KindBlockDecls:            "BlockDecls",
	KindBlockVarDecl:          "BlockVarDecl",
	KindBlockVarDeclEntry:     "BlockVarDeclEntry",
	KindBlockBody:             "BlockBody",
	KindExpr:                  "Expr",
	KindVarRef:                "VarRef",
	KindLiteral:               "Literal",
	KindEnclosedExpr:          "EnclosedExpr",
	KindPathExpr:              "PathExpr",
	KindNameTest:              "NameTest",
	KindDirElemConstructor:    "DirElemConstructor",
	KindDirNamespaceAttribute: "DirNamespaceAttribute",
	KindDirAttribute:          "DirAttribute",
	KindPragma:                "Pragma",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := KindInvalid + 1; k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// String returns the name used for the kind in tree dumps.
func (k Kind) String() string {
	if k >= kindCount {
		return "Invalid"
	}
	return kindNames[k]
}

// ParseKind maps a tree dump name back to its Kind.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// IsName reports whether k is one of the qualified-name forms.
func (k Kind) IsName() bool {
	switch k {
	case KindQName, KindNCName, KindURIQualifiedName:
		return true
	default:
		return false
	}
}

// IsModule reports whether k is a main or library module.
func (k Kind) IsModule() bool {
	return k == KindMainModule || k == KindLibraryModule
}

// IsStructural reports whether a child of kind k is part of a construct's
// declaration shape (its name, type or parameter list) rather than one of
// the expressions it evaluates.
func (k Kind) IsStructural() bool {
	switch k {
	case KindVarName, KindPositionalVar, KindTypeDecl, KindTypeName, KindElementTest,
		KindAttributeTest, KindParamList, KindAnnotation, KindWindowVar,
		KindWindowStartCondition, KindWindowEndCondition, KindQName, KindNCName,
		KindURIQualifiedName:
		return true
	default:
		return false
	}
}
