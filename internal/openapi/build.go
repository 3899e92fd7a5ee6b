package openapi

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"

	"github.com/frankie567/openapi-tools/internal/model"
)

// maxRefHops bounds chains of parameter/body/response $refs.
const maxRefHops = 32

type builder struct {
	root    *Map
	g       *model.Graph
	swagger bool

	consumes []string
	produces []string

	params    map[model.Locator]model.Param
	bodies    map[model.Locator]*model.RequestBody
	responses map[model.Locator]model.Response
	following map[model.Locator]bool
}

// Build converts a decoded document tree into a graph. The result has no
// dangling or cyclic annotations yet; see Resolve. On error no graph is
// returned.
func Build(tree any) (*model.Graph, error) {
	root, ok := tree.(*Map)
	if !ok {
		return nil, invalidShape("", "document root must be a mapping")
	}
	b := &builder{
		root:      root,
		g:         model.NewGraph(),
		params:    map[model.Locator]model.Param{},
		bodies:    map[model.Locator]*model.RequestBody{},
		responses: map[model.Locator]model.Response{},
		following: map[model.Locator]bool{},
	}
	if err := b.build(); err != nil {
		return nil, err
	}
	return b.g, nil
}

func (b *builder) build() error {
	if v := str(b.root, "openapi"); v != "" {
		b.g.SpecVersion = v
	} else if v := str(b.root, "swagger"); v != "" {
		b.g.SpecVersion = v
		b.swagger = true
	} else {
		return missingField("", "openapi")
	}

	if err := b.buildInfo(); err != nil {
		return err
	}
	b.consumes = stringList(b.root, "consumes")
	b.produces = stringList(b.root, "produces")

	if err := b.buildComponents(); err != nil {
		return err
	}
	return b.buildPaths()
}

func (b *builder) buildInfo() error {
	info, err := optMap(b.root, "info", "info")
	if err != nil {
		return err
	}
	b.g.Info = model.Info{
		Title:       str(info, "title"),
		Version:     str(info, "version"),
		Description: str(info, "description"),
	}

	servers, err := optList(b.root, "servers", "servers")
	if err != nil {
		return err
	}
	for _, s := range servers {
		if m, ok := s.(*Map); ok {
			if u := str(m, "url"); u != "" {
				b.g.Servers = append(b.g.Servers, u)
			}
		}
	}
	if host := str(b.root, "host"); host != "" {
		scheme := "https"
		if schemes := stringList(b.root, "schemes"); len(schemes) > 0 {
			scheme = schemes[0]
		}
		b.g.Servers = append(b.g.Servers, scheme+"://"+host+str(b.root, "basePath"))
	}

	tags, err := optList(b.root, "tags", "tags")
	if err != nil {
		return err
	}
	for _, t := range tags {
		if m, ok := t.(*Map); ok && str(m, "name") != "" {
			b.g.Tags = append(b.g.Tags, model.Tag{Name: str(m, "name"), Description: str(m, "description")})
		}
	}
	return nil
}

func (b *builder) buildComponents() error {
	components, err := optMap(b.root, "components", "components")
	if err != nil {
		return err
	}
	base := model.Root().Child("components")

	schemas, err := optMap(components, "schemas", "components.schemas")
	if err != nil {
		return err
	}
	for _, name := range schemas.keys() {
		if _, err := b.schemaAt(model.SchemaComponentLocator(name), schemas.Values[name], name); err != nil {
			return err
		}
	}

	if b.swagger {
		defs, err := optMap(b.root, "definitions", "definitions")
		if err != nil {
			return err
		}
		for _, name := range defs.keys() {
			if _, err := b.schemaAt(model.DefinitionLocator(name), defs.Values[name], name); err != nil {
				return err
			}
		}
	}

	// Shared parameters, bodies and responses are built once at their own
	// position so every operation referencing them shares one locator.
	for _, sec := range []struct {
		parent *Map
		key    string
		loc    model.Locator
	}{
		{components, "parameters", base.Child("parameters")},
		{components, "requestBodies", base.Child("requestBodies")},
		{components, "responses", base.Child("responses")},
		{b.root, "parameters", model.Root().Child("parameters")},
		{b.root, "responses", model.Root().Child("responses")},
	} {
		m, err := optMap(sec.parent, sec.key, sec.loc.String())
		if err != nil {
			return err
		}
		for _, name := range m.keys() {
			loc := sec.loc.Child(name)
			var err error
			switch sec.key {
			case "parameters":
				_, _, err = b.paramAt(loc, m.Values[name])
			case "requestBodies":
				_, err = b.bodyAt(loc, m.Values[name])
			case "responses":
				_, err = b.responseAt(loc, name, m.Values[name], nil)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *builder) buildPaths() error {
	paths, err := optMap(b.root, "paths", "paths")
	if err != nil {
		return err
	}
	for _, path := range paths.keys() {
		itemLoc := model.Root().Child("paths", path)
		item, ok := paths.Values[path].(*Map)
		if !ok {
			return invalidShape(itemLoc.String(), "path item must be a mapping")
		}

		shared, sharedRefs, err := b.paramList(item, itemLoc)
		if err != nil {
			return err
		}
		for _, method := range model.Methods {
			raw, present := item.Get(method)
			if !present {
				continue
			}
			op, ok := raw.(*Map)
			if !ok {
				return invalidShape(itemLoc.Child(method).String(), "operation must be a mapping")
			}
			ep, err := b.endpoint(path, method, op, shared, sharedRefs)
			if err != nil {
				return err
			}
			if !b.g.AddEndpoint(ep) {
				return invalidShape(ep.Locator.String(), "duplicate locator")
			}
		}
	}
	return nil
}

func (b *builder) endpoint(path, method string, op *Map, shared []model.Param, sharedRefs []string) (*model.Endpoint, error) {
	loc := model.EndpointLocator(path, method)
	ep := &model.Endpoint{
		Locator:     loc,
		Method:      method,
		Path:        path,
		Summary:     strings.TrimSpace(str(op, "summary")),
		Description: strings.TrimSpace(str(op, "description")),
		OperationID: strings.TrimSpace(str(op, "operationId")),
		Deprecated:  boolean(op, "deprecated"),
		Tags:        stringList(op, "tags"),
	}

	own, ownRefs, err := b.paramList(op, loc)
	if err != nil {
		return nil, err
	}
	overridden := map[string]bool{}
	for _, p := range own {
		overridden[string(p.In)+":"+p.Name] = true
	}
	var params []model.Param
	for _, p := range shared {
		if !overridden[string(p.In)+":"+p.Name] {
			params = append(params, p)
		}
	}
	params = append(params, own...)
	ep.UnresolvedParams = append(append([]string(nil), sharedRefs...), ownRefs...)

	consumes := stringList(op, "consumes")
	if len(consumes) == 0 {
		consumes = b.consumes
	}
	for _, p := range params {
		switch p.In {
		case model.ParamInPath:
			ep.PathParams = append(ep.PathParams, p)
		case model.ParamInQuery:
			ep.QueryParams = append(ep.QueryParams, p)
		case model.ParamInHeader:
			ep.HeaderParams = append(ep.HeaderParams, p)
		case model.ParamInCookie:
			ep.CookieParams = append(ep.CookieParams, p)
		case model.ParamInFormData:
			ep.FormParams = append(ep.FormParams, p)
		case model.ParamInBody:
			ep.Body = &model.RequestBody{
				Description: p.Description,
				Required:    p.Required,
				Content:     mediaTypes(consumes, p.Schema),
			}
		}
	}

	if raw, ok := op.Get("requestBody"); ok && raw != nil {
		body, err := b.bodyAt(loc.Child("requestBody"), raw)
		if err != nil {
			return nil, err
		}
		ep.Body = body
	}

	responses, err := optMap(op, "responses", loc.Child("responses").String())
	if err != nil {
		return nil, err
	}
	produces := stringList(op, "produces")
	if len(produces) == 0 {
		produces = b.produces
	}
	for _, code := range responses.keys() {
		r, err := b.responseAt(loc.Child("responses", code), code, responses.Values[code], produces)
		if err != nil {
			return nil, err
		}
		ep.Responses = append(ep.Responses, r)
	}
	return ep, nil
}

// paramList builds the parameters declared under parent. Parameter $refs
// that cannot be followed are returned separately.
func (b *builder) paramList(parent *Map, parentLoc model.Locator) ([]model.Param, []string, error) {
	list, err := optList(parent, "parameters", parentLoc.Child("parameters").String())
	if err != nil {
		return nil, nil, err
	}
	var params []model.Param
	var unresolved []string
	for i, raw := range list {
		p, ref, err := b.paramAt(parentLoc.Child("parameters", strconv.Itoa(i)), raw)
		if err != nil {
			return nil, nil, err
		}
		if ref != "" {
			unresolved = append(unresolved, ref)
			continue
		}
		params = append(params, p)
	}
	return params, unresolved, nil
}

func (b *builder) paramAt(loc model.Locator, raw any) (model.Param, string, error) {
	if p, ok := b.params[loc]; ok {
		return p, "", nil
	}
	m, ok := raw.(*Map)
	if !ok {
		return model.Param{}, "", invalidShape(loc.String(), "parameter must be a mapping")
	}
	if ref := str(m, "$ref"); ref != "" {
		target, node, ok := b.follow(ref)
		if !ok {
			return model.Param{}, ref, nil
		}
		defer b.unfollow(target)
		p, unresolved, err := b.paramAt(target, node)
		if err != nil || unresolved != "" {
			return model.Param{}, unresolved, err
		}
		return p, "", nil
	}

	p := model.Param{
		Name:        str(m, "name"),
		In:          model.ParamLocation(str(m, "in")),
		Required:    boolean(m, "required"),
		Deprecated:  boolean(m, "deprecated"),
		Description: strings.TrimSpace(str(m, "description")),
	}
	if p.Name == "" {
		return model.Param{}, "", missingField(loc.String(), "name")
	}
	if p.In == "" {
		return model.Param{}, "", missingField(loc.String(), "in")
	}
	switch p.In {
	case model.ParamInPath, model.ParamInQuery, model.ParamInHeader, model.ParamInCookie,
		model.ParamInFormData, model.ParamInBody:
	default:
		return model.Param{}, "", invalidShape(loc.String(), "unknown parameter location %q", p.In)
	}

	var err error
	switch {
	case has(m, "schema"):
		p.Schema, err = b.schemaAt(loc.Child("schema"), m.Values["schema"], "")
	case has(m, "content"):
		p.Schema, err = b.firstContentSchema(loc, m)
	case has(m, "type"):
		// Swagger 2 non-body parameters carry their type inline.
		p.Schema, err = b.schemaAt(loc, m, "")
	}
	if err != nil {
		return model.Param{}, "", err
	}
	b.params[loc] = p
	return p, "", nil
}

func (b *builder) firstContentSchema(loc model.Locator, m *Map) (model.Locator, error) {
	content, err := optMap(m, "content", loc.Child("content").String())
	if err != nil {
		return "", err
	}
	for _, mt := range content.keys() {
		media, ok := content.Values[mt].(*Map)
		if !ok {
			return "", invalidShape(loc.Child("content", mt).String(), "media type must be a mapping")
		}
		if s, ok := media.Get("schema"); ok {
			return b.schemaAt(loc.Child("content", mt, "schema"), s, "")
		}
	}
	return "", nil
}

func (b *builder) bodyAt(loc model.Locator, raw any) (*model.RequestBody, error) {
	if body, ok := b.bodies[loc]; ok {
		return body, nil
	}
	m, ok := raw.(*Map)
	if !ok {
		return nil, invalidShape(loc.String(), "request body must be a mapping")
	}
	if ref := str(m, "$ref"); ref != "" {
		target, node, ok := b.follow(ref)
		if !ok {
			return &model.RequestBody{Ref: ref}, nil
		}
		defer b.unfollow(target)
		return b.bodyAt(target, node)
	}
	content, err := b.content(loc, m)
	if err != nil {
		return nil, err
	}
	body := &model.RequestBody{
		Description: strings.TrimSpace(str(m, "description")),
		Required:    boolean(m, "required"),
		Content:     content,
	}
	b.bodies[loc] = body
	return body, nil
}

func (b *builder) responseAt(loc model.Locator, code string, raw any, produces []string) (model.Response, error) {
	if r, ok := b.responses[loc]; ok {
		r.Code = code
		return r, nil
	}
	m, ok := raw.(*Map)
	if !ok {
		return model.Response{}, invalidShape(loc.String(), "response must be a mapping")
	}
	if ref := str(m, "$ref"); ref != "" {
		target, node, ok := b.follow(ref)
		if !ok {
			return model.Response{Code: code, Ref: ref}, nil
		}
		defer b.unfollow(target)
		r, err := b.responseAt(target, code, node, produces)
		r.Code = code
		return r, err
	}
	r := model.Response{Code: code, Description: strings.TrimSpace(str(m, "description"))}
	if s, ok := m.Get("schema"); ok && s != nil {
		if len(produces) == 0 {
			produces = b.produces
		}
		schema, err := b.schemaAt(loc.Child("schema"), s, "")
		if err != nil {
			return model.Response{}, err
		}
		r.Content = mediaTypes(produces, schema)
	} else {
		content, err := b.content(loc, m)
		if err != nil {
			return model.Response{}, err
		}
		r.Content = content
	}
	b.responses[loc] = r
	return r, nil
}

func (b *builder) content(loc model.Locator, m *Map) ([]model.MediaType, error) {
	content, err := optMap(m, "content", loc.Child("content").String())
	if err != nil {
		return nil, err
	}
	var out []model.MediaType
	for _, mt := range content.keys() {
		media, ok := content.Values[mt].(*Map)
		if !ok && content.Values[mt] != nil {
			return nil, invalidShape(loc.Child("content", mt).String(), "media type must be a mapping")
		}
		entry := model.MediaType{ContentType: mt}
		if s, ok := media.Get("schema"); ok && s != nil {
			if entry.Schema, err = b.schemaAt(loc.Child("content", mt, "schema"), s, ""); err != nil {
				return nil, err
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// schemaAt registers the schema at loc and everything nested below it.
func (b *builder) schemaAt(loc model.Locator, raw any, name string) (model.Locator, error) {
	s := &model.Schema{Locator: loc, Name: name, Kind: model.KindAny}
	m, isMap := raw.(*Map)
	if !isMap {
		if _, isBool := raw.(bool); !isBool && raw != nil {
			return "", invalidShape(loc.String(), "schema must be a mapping")
		}
	}
	if !b.g.AddSchema(s) {
		return "", invalidShape(loc.String(), "duplicate locator")
	}
	if !isMap {
		return loc, nil
	}

	s.Title = str(m, "title")
	s.Description = strings.TrimSpace(str(m, "description"))
	if ref := str(m, "$ref"); ref != "" {
		s.Kind = model.KindRef
		s.Ref = ref
		s.RefTarget = refLocator(ref)
		b.g.Edges = append(b.g.Edges, model.Edge{From: loc, To: s.RefTarget, Raw: ref})
		return loc, nil
	}

	switch t := m.Values["type"].(type) {
	case string:
		s.Types = []string{t}
	case []any:
		for _, v := range t {
			if ts, ok := v.(string); ok {
				s.Types = append(s.Types, ts)
			}
		}
	}
	var types []string
	for _, t := range s.Types {
		if t == "null" {
			s.Nullable = true
			continue
		}
		types = append(types, t)
	}
	if len(types) > 0 || len(s.Types) == 0 {
		s.Types = types
	}
	s.Format = str(m, "format")
	s.Nullable = s.Nullable || boolean(m, "nullable") || boolean(m, "x-nullable")
	s.Deprecated = boolean(m, "deprecated")
	s.ReadOnly = boolean(m, "readOnly")
	s.WriteOnly = boolean(m, "writeOnly")
	s.Constraints = constraints(m)
	s.Example = example(m)

	props, err := optMap(m, "properties", loc.Child("properties").String())
	if err != nil {
		return "", err
	}
	required := map[string]bool{}
	if list, ok := m.Values["required"].([]any); ok {
		for _, r := range list {
			if rs, ok := r.(string); ok {
				required[rs] = true
			}
		}
	}
	for _, pname := range props.keys() {
		child, err := b.schemaAt(loc.Child("properties", pname), props.Values[pname], "")
		if err != nil {
			return "", err
		}
		s.Properties = append(s.Properties, model.Property{Name: pname, Schema: child, Required: required[pname]})
	}

	for _, kw := range []string{"items", "additionalProperties", "not"} {
		v, ok := m.Get(kw)
		if !ok || v == nil {
			continue
		}
		if _, isBool := v.(bool); isBool && kw == "additionalProperties" {
			continue
		}
		child, err := b.schemaAt(loc.Child(kw), v, "")
		if err != nil {
			return "", err
		}
		switch kw {
		case "items":
			s.Items = child
		case "additionalProperties":
			s.AdditionalProperties = child
		case "not":
			s.Not = child
		}
	}

	for _, kind := range []model.CompositionKind{model.AllOf, model.OneOf, model.AnyOf} {
		members, err := optList(m, string(kind), loc.Child(string(kind)).String())
		if err != nil {
			return "", err
		}
		if len(members) == 0 {
			continue
		}
		c := model.Composition{Kind: kind}
		for i, mv := range members {
			child, err := b.schemaAt(loc.Child(string(kind), strconv.Itoa(i)), mv, "")
			if err != nil {
				return "", err
			}
			c.Members = append(c.Members, child)
		}
		s.Compositions = append(s.Compositions, c)
	}

	s.Kind = schemaKind(s)
	return loc, nil
}

func schemaKind(s *model.Schema) model.SchemaKind {
	isType := func(want string) bool {
		for _, t := range s.Types {
			if t == want {
				return true
			}
		}
		return false
	}
	switch {
	case isType("object") || len(s.Properties) > 0 || !s.AdditionalProperties.IsZero():
		return model.KindObject
	case isType("array") || !s.Items.IsZero():
		return model.KindArray
	case len(s.Types) > 0:
		return model.KindPrimitive
	case len(s.Compositions) > 0:
		return model.KindComposition
	case len(s.Constraints.Enum) > 0 || s.Format != "":
		return model.KindPrimitive
	}
	return model.KindAny
}

func constraints(m *Map) model.Constraints {
	c := model.Constraints{
		Minimum:     number(m, "minimum"),
		Maximum:     number(m, "maximum"),
		MultipleOf:  number(m, "multipleOf"),
		MinLength:   integer(m, "minLength"),
		MaxLength:   integer(m, "maxLength"),
		MinItems:    integer(m, "minItems"),
		MaxItems:    integer(m, "maxItems"),
		Pattern:     str(m, "pattern"),
		UniqueItems: boolean(m, "uniqueItems"),
	}
	for _, bound := range []struct {
		key string
		dst *string
	}{{"exclusiveMinimum", &c.ExclusiveMinimum}, {"exclusiveMaximum", &c.ExclusiveMaximum}} {
		switch v := m.Values[bound.key].(type) {
		case bool:
			if v {
				*bound.dst = "true"
			}
		case nil:
		default:
			*bound.dst = scalarText(v)
		}
	}
	if enum, ok := m.Values["enum"].([]any); ok {
		for _, v := range enum {
			c.Enum = append(c.Enum, scalarText(v))
		}
	}
	if v, ok := m.Get("default"); ok {
		c.Default = scalarText(v)
	}
	return c
}

func example(m *Map) string {
	v, ok := m.Get("example")
	if !ok {
		list, isList := m.Values["examples"].([]any)
		if !isList || len(list) == 0 {
			return ""
		}
		v = list[0]
	}
	b, err := json.Marshal(plain(v))
	if err != nil {
		return scalarText(v)
	}
	return string(b)
}

// follow resolves a local $ref for parameters, bodies and responses. It
// refuses refs already being followed so chains cannot loop.
func (b *builder) follow(ref string) (model.Locator, any, bool) {
	if len(b.following) >= maxRefHops {
		return "", nil, false
	}
	tokens, ok := pointerTokens(ref)
	if !ok || len(tokens) == 0 {
		return "", nil, false
	}
	var cur any = b.root
	for _, tok := range tokens {
		switch node := cur.(type) {
		case *Map:
			next, ok := node.Get(tok)
			if !ok {
				return "", nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(node) {
				return "", nil, false
			}
			cur = node[i]
		default:
			return "", nil, false
		}
	}
	target := model.Root().Child(tokens...)
	if b.following[target] {
		return "", nil, false
	}
	b.following[target] = true
	return target, cur, true
}

func (b *builder) unfollow(target model.Locator) { delete(b.following, target) }

// refLocator maps a $ref onto the locator of the position it points at.
// Refs that cannot name a local position get a locator under "external",
// which never addresses an entity and is therefore reported as dangling.
func refLocator(ref string) model.Locator {
	tokens, ok := pointerTokens(ref)
	if !ok || len(tokens) == 0 {
		return model.Root().Child("external", ref)
	}
	return model.Root().Child(tokens...)
}

func pointerTokens(ref string) ([]string, bool) {
	if !strings.HasPrefix(ref, "#") {
		return nil, false
	}
	p, err := jsonpointer.New(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, false
	}
	return p.DecodedTokens(), true
}

func mediaTypes(types []string, schema model.Locator) []model.MediaType {
	if len(types) == 0 {
		types = []string{"application/json"}
	}
	out := make([]model.MediaType, 0, len(types))
	for _, t := range types {
		out = append(out, model.MediaType{ContentType: t, Schema: schema})
	}
	return out
}

func (m *Map) keys() []string {
	if m == nil {
		return nil
	}
	return m.Keys
}

func has(m *Map, k string) bool {
	v, ok := m.Get(k)
	return ok && v != nil
}

func optMap(parent *Map, key, path string) (*Map, error) {
	v, ok := parent.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(*Map)
	if !ok {
		return nil, invalidShape(path, "expected a mapping, got %s", typeName(v))
	}
	return m, nil
}

func optList(parent *Map, key, path string) ([]any, error) {
	v, ok := parent.Get(key)
	if !ok || v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, invalidShape(path, "expected a sequence, got %s", typeName(v))
	}
	return l, nil
}

func str(m *Map, key string) string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return ""
	}
	switch v.(type) {
	case *Map, []any:
		return ""
	}
	return scalarText(v)
}

func boolean(m *Map, key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func stringList(m *Map, key string) []string {
	v, _ := m.Get(key)
	list, _ := v.([]any)
	var out []string
	for _, e := range list {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func number(m *Map, key string) *float64 {
	v, _ := m.Get(key)
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}
	return &f
}

func integer(m *Map, key string) *int {
	f := number(m, key)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case *Map, []any:
		b, err := json.Marshal(plain(t))
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}

func typeName(v any) string {
	switch v.(type) {
	case *Map:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
