package model

type ParamLocation string

type SchemaKind string

type CompositionKind string

const (
	ParamInPath     ParamLocation = "path"
	ParamInQuery    ParamLocation = "query"
	ParamInHeader   ParamLocation = "header"
	ParamInCookie   ParamLocation = "cookie"
	ParamInFormData ParamLocation = "formData"
	ParamInBody     ParamLocation = "body"

	KindObject      SchemaKind = "object"
	KindArray       SchemaKind = "array"
	KindPrimitive   SchemaKind = "primitive"
	KindComposition SchemaKind = "composition"
	KindRef         SchemaKind = "ref"
	KindAny         SchemaKind = "any"

	AllOf CompositionKind = "allOf"
	OneOf CompositionKind = "oneOf"
	AnyOf CompositionKind = "anyOf"
)

type Param struct {
	Name        string
	In          ParamLocation
	Required    bool
	Deprecated  bool
	Description string
	Schema      Locator
}

type MediaType struct {
	ContentType string
	Schema      Locator
}

type RequestBody struct {
	Description string
	Required    bool
	Content     []MediaType
	// Ref is set when the body was a $ref that could not be followed.
	Ref string
}

type Response struct {
	Code        string
	Description string
	Content     []MediaType
	Ref         string
}

type Endpoint struct {
	Locator     Locator
	Method      string
	Path        string
	Summary     string
	Description string
	OperationID string
	Deprecated  bool
	Tags        []string

	PathParams   []Param
	QueryParams  []Param
	HeaderParams []Param
	CookieParams []Param
	FormParams   []Param
	// UnresolvedParams holds parameter $refs whose target is missing.
	UnresolvedParams []string

	Body      *RequestBody
	Responses []Response
}

// Response returns the response declared for code.
func (e *Endpoint) Response(code string) (Response, bool) {
	for _, r := range e.Responses {
		if r.Code == code {
			return r, true
		}
	}
	return Response{}, false
}

// Params returns every parameter in display order.
func (e *Endpoint) Params() []Param {
	var out []Param
	out = append(out, e.PathParams...)
	out = append(out, e.QueryParams...)
	out = append(out, e.HeaderParams...)
	out = append(out, e.CookieParams...)
	out = append(out, e.FormParams...)
	return out
}

type Property struct {
	Name     string
	Schema   Locator
	Required bool
}

type Composition struct {
	Kind    CompositionKind
	Members []Locator
}

type Constraints struct {
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum string
	ExclusiveMaximum string
	MultipleOf       *float64
	MinLength        *int
	MaxLength        *int
	Pattern          string
	MinItems         *int
	MaxItems         *int
	UniqueItems      bool
	Enum             []string
	Default          string
}

type Schema struct {
	Locator Locator
	// Name is set for component schemas only.
	Name        string
	Kind        SchemaKind
	Types       []string
	Title       string
	Description string
	Format      string

	Properties           []Property
	Items                Locator
	AdditionalProperties Locator
	Compositions         []Composition
	Not                  Locator

	Constraints Constraints
	Example     string

	Nullable   bool
	Deprecated bool
	ReadOnly   bool
	WriteOnly  bool

	// Ref and RefTarget are set on reference placeholders.
	Ref       string
	RefTarget Locator

	// Cyclic is set by the resolver when the schema lies on a reference cycle.
	Cyclic bool
}

// Children returns the locators directly below s, including its $ref target.
func (s *Schema) Children() []Locator {
	var out []Locator
	for _, p := range s.Properties {
		out = append(out, p.Schema)
	}
	if !s.Items.IsZero() {
		out = append(out, s.Items)
	}
	if !s.AdditionalProperties.IsZero() {
		out = append(out, s.AdditionalProperties)
	}
	for _, c := range s.Compositions {
		out = append(out, c.Members...)
	}
	if !s.Not.IsZero() {
		out = append(out, s.Not)
	}
	if !s.RefTarget.IsZero() {
		out = append(out, s.RefTarget)
	}
	return out
}

// Edge is a $ref from a placeholder schema to its target.
type Edge struct {
	From     Locator
	To       Locator
	Raw      string
	Dangling bool
}

type Info struct {
	Title       string
	Version     string
	Description string
}

type Tag struct {
	Name        string
	Description string
}
