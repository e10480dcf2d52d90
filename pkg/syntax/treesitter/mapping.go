package treesitter

import (
	"strings"

	"github.com/odvcencio/gotreesitter"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

// AttrFunc derives syntax attributes from a grammar node.
type AttrFunc func(node *gotreesitter.Node, lang *gotreesitter.Language, src []byte) []syntax.Attr

// Rule says how one grammar node type is converted. A Name rule turns the
// node's text into a QName, NCName or URIQualifiedName node and ignores Kind.
type Rule struct {
	Kind  syntax.Kind
	Name  bool
	Attrs AttrFunc
}

// Mapping maps grammar node types to conversion rules.
type Mapping map[string]Rule

// LexicalName parses a name as written in source ("$p:x", "x",
// "Q{uri}x") into a name kind and its attributes.
func LexicalName(text string) (syntax.Kind, []syntax.Attr) {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
	if rest, ok := strings.CutPrefix(text, "Q{"); ok {
		uri, local, ok := strings.Cut(rest, "}")
		if !ok {
			return syntax.KindInvalid, nil
		}
		return syntax.KindURIQualifiedName, []syntax.Attr{
			{Key: syntax.AttrURI, Value: uri},
			{Key: syntax.AttrLocal, Value: local},
		}
	}
	if prefix, local, ok := strings.Cut(text, ":"); ok {
		return syntax.KindQName, []syntax.Attr{
			{Key: syntax.AttrPrefix, Value: prefix},
			{Key: syntax.AttrLocal, Value: local},
		}
	}
	return syntax.KindNCName, []syntax.Attr{{Key: syntax.AttrLocal, Value: text}}
}

// NodeText stores the node's own text under key.
func NodeText(key string) AttrFunc {
	return func(node *gotreesitter.Node, _ *gotreesitter.Language, src []byte) []syntax.Attr {
		return []syntax.Attr{{Key: key, Value: strings.TrimSpace(node.Text(src))}}
	}
}

// ChildText stores the unquoted text of the first direct child of each
// listed node type under the paired key.
func ChildText(fields map[string]string) AttrFunc {
	return func(node *gotreesitter.Node, lang *gotreesitter.Language, src []byte) []syntax.Attr {
		var attrs []syntax.Attr
		seen := make(map[string]bool, len(fields))
		for i := 0; i < node.ChildCount(); i++ {
			child := node.Child(i)
			key, ok := fields[child.Type(lang)]
			if !ok || seen[key] {
				continue
			}
			seen[key] = true
			attrs = append(attrs, syntax.Attr{Key: key, Value: unquote(child.Text(src))})
		}
		return attrs
	}
}

// Keyword stores under key the first direct child token whose type is one
// of keywords. A keyword given as "token=value" stores value instead.
func Keyword(key string, keywords ...string) AttrFunc {
	values := make(map[string]string, len(keywords))
	for _, kw := range keywords {
		token, value, ok := strings.Cut(kw, "=")
		if !ok {
			value = token
		}
		values[token] = value
	}
	return func(node *gotreesitter.Node, lang *gotreesitter.Language, _ []byte) []syntax.Attr {
		for i := 0; i < node.ChildCount(); i++ {
			if value, ok := values[node.Child(i).Type(lang)]; ok {
				return []syntax.Attr{{Key: key, Value: value}}
			}
		}
		return nil
	}
}

// Locations joins the unquoted text of every child of nodeType that follows
// the "at" keyword into the location-hint attribute.
func Locations(nodeType string) AttrFunc {
	return textAfter("at", nodeType, syntax.AttrLocations)
}

func textAfter(keyword, nodeType, key string) AttrFunc {
	return func(node *gotreesitter.Node, lang *gotreesitter.Language, src []byte) []syntax.Attr {
		var texts []string
		after := false
		for i := 0; i < node.ChildCount(); i++ {
			child := node.Child(i)
			switch child.Type(lang) {
			case keyword:
				after = true
			case nodeType:
				if after {
					texts = append(texts, unquote(child.Text(src)))
				}
			}
		}
		if len(texts) == 0 {
			return nil
		}
		return []syntax.Attr{{Key: key, Value: strings.Join(texts, " ")}}
	}
}

// Combine concatenates the attributes of several AttrFuncs.
func Combine(fns ...AttrFunc) AttrFunc {
	return func(node *gotreesitter.Node, lang *gotreesitter.Language, src []byte) []syntax.Attr {
		var attrs []syntax.Attr
		for _, fn := range fns {
			attrs = append(attrs, fn(node, lang, src)...)
		}
		return attrs
	}
}

func unquote(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		if q := text[0]; (q == '"' || q == '\'') && text[len(text)-1] == q {
			return text[1 : len(text)-1]
		}
	}
	return text
}

var (
	prefixURI  = ChildText(map[string]string{"ncname": syntax.AttrPrefix, "uri_literal": syntax.AttrURI})
	importDecl = Combine(prefixURI, Locations("uri_literal"))
)

// XQuery maps the node types of the tree-sitter XQuery grammar.
var XQuery = Mapping{
	"module":         {Kind: syntax.KindModule},
	"version_decl":   {Kind: syntax.KindVersionDecl, Attrs: ChildText(map[string]string{"string_literal": syntax.AttrVersion})},
	"main_module":    {Kind: syntax.KindMainModule},
	"library_module": {Kind: syntax.KindLibraryModule},
	"module_decl":    {Kind: syntax.KindModuleDecl, Attrs: prefixURI},
	"prolog":         {Kind: syntax.KindProlog},
	"namespace_decl": {Kind: syntax.KindNamespaceDecl, Attrs: prefixURI},
	"default_namespace_decl": {Kind: syntax.KindDefaultNamespaceDecl, Attrs: Combine(
		Keyword(syntax.AttrTarget, "element", "function", "type"),
		ChildText(map[string]string{"uri_literal": syntax.AttrURI}),
	)},
	"module_import": {Kind: syntax.KindModuleImport, Attrs: importDecl},
	"schema_import": {Kind: syntax.KindSchemaImport, Attrs: Combine(importDecl, Keyword(syntax.AttrDefault, "default=element"))},
	"var_decl":      {Kind: syntax.KindVarDecl},
	"function_decl": {Kind: syntax.KindFunctionDecl},
	"option_decl":   {Kind: syntax.KindOptionDecl},
	"annotation":    {Kind: syntax.KindAnnotation},
	"query_body":    {Kind: syntax.KindQueryBody},

	"eqname":   {Name: true},
	"qname":    {Name: true},
	"var_name": {Kind: syntax.KindVarName},

	"type_declaration":     {Kind: syntax.KindTypeDecl},
	"atomic_or_union_type": {Kind: syntax.KindTypeName},
	"element_test":         {Kind: syntax.KindElementTest},
	"attribute_test":       {Kind: syntax.KindAttributeTest},

	"param_list":               {Kind: syntax.KindParamList},
	"param":                    {Kind: syntax.KindParam},
	"function_body":            {Kind: syntax.KindFunctionBody},
	"inline_function_expr":     {Kind: syntax.KindInlineFunctionExpr},
	"function_call":            {Kind: syntax.KindFunctionCall},
	"argument_list":            {Kind: syntax.KindArgumentList},
	"arrow_expr":               {Kind: syntax.KindArrowExpr},
	"arrow_function_specifier": {Kind: syntax.KindArrowFunction},
	"named_function_ref":       {Kind: syntax.KindNamedFunctionRef, Attrs: ChildText(map[string]string{"integer_literal": syntax.AttrArity})},

	"flwor_expr":             {Kind: syntax.KindFLWORExpr},
	"for_clause":             {Kind: syntax.KindForClause},
	"for_binding":            {Kind: syntax.KindForBinding},
	"positional_var":         {Kind: syntax.KindPositionalVar},
	"for_member_clause":      {Kind: syntax.KindForMemberClause},
	"for_member_binding":     {Kind: syntax.KindForMemberBinding},
	"let_clause":             {Kind: syntax.KindLetClause},
	"let_binding":            {Kind: syntax.KindLetBinding},
	"window_clause":          {Kind: syntax.KindWindowClause, Attrs: Keyword(syntax.AttrWindow, "tumbling", "sliding")},
	"window_start_condition": {Kind: syntax.KindWindowStartCondition},
	"window_end_condition":   {Kind: syntax.KindWindowEndCondition},
	"current_item":           {Kind: syntax.KindWindowVar, Attrs: fixed(syntax.AttrRole, "current")},
	"previous_item":          {Kind: syntax.KindWindowVar, Attrs: fixed(syntax.AttrRole, "previous")},
	"next_item":              {Kind: syntax.KindWindowVar, Attrs: fixed(syntax.AttrRole, "next")},
	"where_clause":           {Kind: syntax.KindWhereClause},
	"order_by_clause":        {Kind: syntax.KindOrderByClause},
	"group_by_clause":        {Kind: syntax.KindGroupByClause},
	"grouping_spec":          {Kind: syntax.KindGroupingSpec},
	"count_clause":           {Kind: syntax.KindCountClause},
	"return_clause":          {Kind: syntax.KindReturnClause},

	"quantified_expr":    {Kind: syntax.KindQuantifiedExpr, Attrs: Keyword(syntax.AttrQuantifier, "some", "every")},
	"quantified_binding": {Kind: syntax.KindQuantifiedBinding},
	"typeswitch_expr":    {Kind: syntax.KindTypeswitchExpr},
	"case_clause":        {Kind: syntax.KindCaseClause},
	"default_clause":     {Kind: syntax.KindDefaultCaseClause},
	"try_catch_expr":     {Kind: syntax.KindTryCatchExpr},
	"catch_clause":       {Kind: syntax.KindCatchClause},

	"block":                {Kind: syntax.KindBlock},
	"block_decls":          {Kind: syntax.KindBlockDecls},
	"block_var_decl":       {Kind: syntax.KindBlockVarDecl},
	"block_var_decl_entry": {Kind: syntax.KindBlockVarDeclEntry},
	"block_body":           {Kind: syntax.KindBlockBody},

	"var_ref":                 {Kind: syntax.KindVarRef},
	"string_literal":          {Kind: syntax.KindLiteral, Attrs: NodeText(syntax.AttrValue)},
	"integer_literal":         {Kind: syntax.KindLiteral, Attrs: NodeText(syntax.AttrValue)},
	"decimal_literal":         {Kind: syntax.KindLiteral, Attrs: NodeText(syntax.AttrValue)},
	"double_literal":          {Kind: syntax.KindLiteral, Attrs: NodeText(syntax.AttrValue)},
	"enclosed_expr":           {Kind: syntax.KindEnclosedExpr},
	"path_expr":               {Kind: syntax.KindPathExpr},
	"name_test":               {Kind: syntax.KindNameTest},
	"abbrev_attribute_step":   {Kind: syntax.KindNameTest, Attrs: fixed(syntax.AttrAxis, "attribute")},
	"dir_elem_constructor":    {Kind: syntax.KindDirElemConstructor},
	"dir_attribute":           {Kind: syntax.KindDirAttribute},
	"dir_namespace_attribute": {Kind: syntax.KindDirNamespaceAttribute, Attrs: ChildText(map[string]string{"ncname": syntax.AttrPrefix, "dir_attribute_value": syntax.AttrURI})},
	"pragma":                  {Kind: syntax.KindPragma},
}

func fixed(key, value string) AttrFunc {
	return func(*gotreesitter.Node, *gotreesitter.Language, []byte) []syntax.Attr {
		return []syntax.Attr{{Key: key, Value: value}}
	}
}
