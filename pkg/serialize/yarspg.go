package serialize

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/mmlkg/mizgra/pkg/errors"
	"github.com/mmlkg/mizgra/pkg/graph"
)

// yarsID matches ids that YARS-PG can carry unquoted.
var yarsID = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

var yarsEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// YARSPG writes the YARS-PG textual property graph notation:
//
//	# begin file
//	# START OF tarski
//	(tarski {"Article"}["name": "tarski", "order": "1"])
//	(tarskiNx1)-({"MEMBER"})->(tarski)
//	# end file
type YARSPG struct{}

// Format implements [Serializer].
func (YARSPG) Format() Format { return FormatYARSPG }

// Serialize implements [Serializer].
func (YARSPG) Serialize(w io.Writer, g *graph.Graph) error {
	if err := validateYARSPG(g); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	bw.WriteString("# begin file\n")
	for _, n := range g.Nodes() {
		if n.Kind == graph.KindArticle {
			bw.WriteString("# " + articleComment + n.ID + "\n")
		}
		bw.WriteString("(" + n.ID + ` {"`)
		yarsEscaper.WriteString(bw, n.Label)
		bw.WriteString(`"}`)
		writeProps(bw, n.Attrs)
		bw.WriteString(")\n")
	}
	for _, e := range g.Edges() {
		bw.WriteString("(" + e.Source + `)-({"`)
		yarsEscaper.WriteString(bw, e.Label)
		bw.WriteString(`"}`)
		writeProps(bw, e.Attrs)
		bw.WriteString(")->(" + e.Target + ")\n")
	}
	bw.WriteString("# end file\n")
	return bw.Flush()
}

func writeProps(bw *bufio.Writer, attrs graph.Attributes) {
	if len(attrs) == 0 {
		return
	}
	bw.WriteByte('[')
	for i, a := range attrs {
		if i > 0 {
			bw.WriteString(", ")
		}
		bw.WriteByte('"')
		yarsEscaper.WriteString(bw, a.Key)
		bw.WriteString(`": "`)
		yarsEscaper.WriteString(bw, a.Value)
		bw.WriteByte('"')
	}
	bw.WriteByte(']')
}

func validateYARSPG(g *graph.Graph) error {
	for _, n := range g.Nodes() {
		if !yarsID.MatchString(n.ID) {
			return invalid(FormatYARSPG, "node id", n.ID)
		}
		if n.Label == "" || !errors.IsText(n.Label) {
			return invalid(FormatYARSPG, "node label", n.Label)
		}
		if err := yarsAttrs(n.Attrs); err != nil {
			return err
		}
	}
	for _, e := range g.Edges() {
		if e.Label == "" || !errors.IsText(e.Label) {
			return invalid(FormatYARSPG, "edge label", e.Label)
		}
		if err := yarsAttrs(e.Attrs); err != nil {
			return err
		}
	}
	return nil
}

func yarsAttrs(attrs graph.Attributes) error {
	for _, a := range attrs {
		if a.Key == "" || !errors.IsText(a.Key) {
			return invalid(FormatYARSPG, "attribute name", a.Key)
		}
		if !errors.IsText(a.Value) {
			return invalid(FormatYARSPG, "attribute value", a.Value)
		}
	}
	return nil
}
