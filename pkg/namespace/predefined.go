package namespace

// Well-known namespace URIs of the XQuery static context.
const (
	XMLNamespace         = "http://www.w3.org/XML/1998/namespace"
	SchemaNamespace      = "http://www.w3.org/2001/XMLSchema"
	SchemaInstance       = "http://www.w3.org/2001/XMLSchema-instance"
	FunctionsNamespace   = "http://www.w3.org/2005/xpath-functions"
	LocalNamespace       = "http://www.w3.org/2005/xquery-local-functions"
	MathNamespace        = "http://www.w3.org/2005/xpath-functions/math"
	MapNamespace         = "http://www.w3.org/2005/xpath-functions/map"
	ArrayNamespace       = "http://www.w3.org/2005/xpath-functions/array"
	ErrorsNamespace      = "http://www.w3.org/2005/xqt-errors"
	AnnotationsNamespace = "http://www.w3.org/2012/xquery"
	OptionsNamespace     = "http://www.w3.org/2011/xquery-options"
)

var predefined = []Binding{
	{URI: XMLNamespace, Prefix: "xml"},
	{URI: SchemaNamespace, Prefix: "xs"},
	{URI: SchemaInstance, Prefix: "xsi"},
	{URI: FunctionsNamespace, Prefix: "fn"},
	{URI: LocalNamespace, Prefix: "local"},
	{URI: MathNamespace, Prefix: "math"},
	{URI: MapNamespace, Prefix: "map"},
	{URI: ArrayNamespace, Prefix: "array"},
	{URI: ErrorsNamespace, Prefix: "err"},
	{URI: FunctionsNamespace, Kind: DefaultFunctionRef},
}

// Predefined returns the bindings every module starts with.
func Predefined() []Binding {
	return append([]Binding(nil), predefined...)
}
