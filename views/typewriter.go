// Package views holds the templ components the dev server renders.
package views

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/isidrok/site/animation"
)

// Typewriter renders text in a span whose CSS custom properties drive the
// typing animation: the number of steps, the per-step speed, the start delay
// and the total duration computed by calc.
func Typewriter(text string, calc animation.Calculator) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<span class="typewriter" style="`)
		fmt.Fprintf(&b, "--typewriter-steps: %d; ", calc.Steps(text))
		fmt.Fprintf(&b, "--typewriter-speed: %s; ", cssTime(calc.Speed))
		fmt.Fprintf(&b, "--typewriter-delay: %s; ", cssTime(calc.StartDelay))
		fmt.Fprintf(&b, "--typewriter-duration: %s", cssTime(calc.Duration(text)))
		b.WriteString(`">`)
		b.WriteString(templ.EscapeString(text))
		b.WriteString(`</span>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func cssTime(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
