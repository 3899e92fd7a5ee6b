package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/frankie567/openapi-tools/internal/model"
	"github.com/frankie567/openapi-tools/internal/nav"
)

// WriteListing prints endpoints grouped by tag and schemas by name without
// color. Schemas on a reference cycle are marked "(cyclic)" and entities
// holding a reference that does not resolve are marked "(dangling: ...)".
func WriteListing(w io.Writer, e *nav.Engine) error {
	g := e.Graph()
	dangling := danglingByOwner(g)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n", strings.TrimSpace(g.Info.Title+" "+g.Info.Version))

	fmt.Fprintln(tw, "\nEndpoints")
	for _, grp := range e.EndpointsByTag() {
		fmt.Fprintf(tw, "  %s\n", grp.Name)
		for _, ep := range grp.Endpoints {
			marks := append([]string(nil), dangling[ep.Locator]...)
			marks = append(marks, ep.UnresolvedParams...)
			fmt.Fprintf(tw, "    %s\t%s\t%s%s\n",
				strings.ToUpper(ep.Method), ep.Path, firstNonEmpty(ep.Summary, ep.OperationID), danglingMark(marks))
		}
	}

	fmt.Fprintln(tw, "\nSchemas")
	for _, s := range e.SchemasByName() {
		text := "  " + s.Name
		if s.Cyclic {
			text += " (cyclic)"
		}
		if s.Deprecated {
			text += " (deprecated)"
		}
		fmt.Fprintf(tw, "%s%s\n", text, danglingMark(dangling[s.Locator]))
	}
	return tw.Flush()
}

// danglingByOwner maps each endpoint and component schema to the raw refs
// below it that do not resolve.
func danglingByOwner(g *model.Graph) map[model.Locator][]string {
	var owners []model.Locator
	for _, ep := range g.Endpoints {
		owners = append(owners, ep.Locator)
	}
	owners = append(owners, g.Components...)

	out := map[model.Locator][]string{}
	for _, edge := range g.DanglingEdges() {
		for _, o := range owners {
			if edge.From == o || strings.HasPrefix(string(edge.From), string(o)+".") {
				out[o] = append(out[o], edge.Raw)
				break
			}
		}
	}
	return out
}

func danglingMark(refs []string) string {
	if len(refs) == 0 {
		return ""
	}
	return " (dangling: " + strings.Join(refs, ", ") + ")"
}
