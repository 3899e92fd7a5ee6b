package model

import "strings"

// Locator addresses one endpoint or schema inside a document generation.
//
// A locator is the dotted structural path of the entity from the document
// root. Segments are escaped so that keys containing dots (for example
// "/v1.0/pets") cannot collide with deeper paths: "~" becomes "~0" and "."
// becomes "~1". The zero Locator is the root of a view and addresses nothing.
type Locator string

var segmentEscaper = strings.NewReplacer("~", "~0", ".", "~1")
var segmentUnescaper = strings.NewReplacer("~1", ".", "~0", "~")

// Methods lists the operation keys of a path item in the order they are
// walked.
var Methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

func Root() Locator { return "" }

func (l Locator) IsZero() bool { return l == "" }

func (l Locator) String() string { return string(l) }

// Child returns the locator of a position below l.
func (l Locator) Child(segs ...string) Locator {
	var b strings.Builder
	b.WriteString(string(l))
	for _, s := range segs {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(segmentEscaper.Replace(s))
	}
	return Locator(b.String())
}

// Segments returns the unescaped structural path.
func (l Locator) Segments() []string {
	if l == "" {
		return nil
	}
	parts := strings.Split(string(l), ".")
	for i, p := range parts {
		parts[i] = segmentUnescaper.Replace(p)
	}
	return parts
}

// Last returns the final unescaped segment.
func (l Locator) Last() string {
	segs := l.Segments()
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}

// IsEndpoint reports whether l has the shape paths.<template>.<method>.
func (l Locator) IsEndpoint() bool {
	segs := l.Segments()
	return len(segs) == 3 && segs[0] == "paths" && IsMethod(segs[2])
}

// IsComponentSchema reports whether l names a top-level schema component.
func (l Locator) IsComponentSchema() bool {
	segs := l.Segments()
	switch {
	case len(segs) == 3 && segs[0] == "components" && segs[1] == "schemas":
		return true
	case len(segs) == 2 && segs[0] == "definitions":
		return true
	}
	return false
}

func EndpointLocator(path, method string) Locator {
	return Root().Child("paths", path, strings.ToLower(method))
}

func SchemaComponentLocator(name string) Locator {
	return Root().Child("components", "schemas", name)
}

func DefinitionLocator(name string) Locator {
	return Root().Child("definitions", name)
}

func IsMethod(s string) bool {
	for _, m := range Methods {
		if m == s {
			return true
		}
	}
	return false
}
