package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// EnvGitHubActions is set to "true" by the GitHub Actions runner.
const EnvGitHubActions = "GITHUB_ACTIONS"

// Annotator writes failures and progress either as GitHub Actions workflow
// commands or as colored console lines.
type Annotator struct {
	out     io.Writer
	actions bool

	errColor  *color.Color
	warnColor *color.Color
	okColor   *color.Color
	dimColor  *color.Color
}

// NewAnnotator creates an annotator writing to out. When actions is true the
// output uses workflow commands (::error:: and friends).
func NewAnnotator(out io.Writer, actions bool) *Annotator {
	return &Annotator{
		out:       out,
		actions:   actions,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow),
		okColor:   color.New(color.FgGreen),
		dimColor:  color.New(color.Faint),
	}
}

// Fatal implements Sink.
func (a *Annotator) Fatal(f Failure) {
	msg := f.Text()
	if a.actions {
		fmt.Fprintf(a.out, "::error title=%s::%s\n", escapeProperty(string(f.Step)), escapeData(msg))
		return
	}
	a.errColor.Fprintf(a.out, "✗ [%s] %s\n", f.Step, msg)
}

// Warn writes a warning line.
func (a *Annotator) Warn(msg string) {
	if a.actions {
		fmt.Fprintf(a.out, "::warning::%s\n", escapeData(msg))
		return
	}
	a.warnColor.Fprintf(a.out, "⚠ %s\n", msg)
}

// Success writes a success line.
func (a *Annotator) Success(msg string) {
	if a.actions {
		fmt.Fprintln(a.out, msg)
		return
	}
	a.okColor.Fprintf(a.out, "✓ %s\n", msg)
}

// Group opens a collapsible log group and returns the function closing it.
func (a *Annotator) Group(title string) func() {
	if a.actions {
		fmt.Fprintf(a.out, "::group::%s\n", escapeData(title))
		return func() { fmt.Fprintln(a.out, "::endgroup::") }
	}
	a.dimColor.Fprintf(a.out, "── %s\n", title)
	return func() {}
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	return strings.ReplaceAll(s, "\n", "%0A")
}

func escapeProperty(s string) string {
	s = escapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	return strings.ReplaceAll(s, ",", "%2C")
}
