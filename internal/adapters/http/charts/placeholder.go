package charts

import (
	"fmt"
	"html"
	"io"
)

// Placeholder writes a framed SVG carrying title and a short message, used
// in place of a chart that has nothing to show.
func Placeholder(w io.Writer, title, msg string, o Options) error {
	o = o.withDefaults()
	p := o.palette()
	_, err := fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="%s" stroke="%s"/>`+
		`<text x="50%%" y="28" text-anchor="middle" font-size="14" fill="%s">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" dominant-baseline="middle" font-size="13" fill="%s">%s</text>`+
		`</svg>`,
		o.Width, o.Height, o.Width, o.Height,
		p.background.String(), p.grid.String(),
		p.text.String(), html.EscapeString(title),
		p.text.String(), html.EscapeString(msg),
	)
	return err
}
