// Package present renders smartcli output: panels, highlighted code, and
// saved artifacts. All user-facing text flows through a Presenter so the
// dispatch loop stays free of formatting concerns.
package present

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	answerPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)

	codePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 1)

	contextPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true)
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// Presenter writes styled output to a terminal, or plain text when color is off.
type Presenter struct {
	out         io.Writer
	color       bool
	syntaxTheme string
}

// New builds a Presenter writing to out.
func New(out io.Writer, color bool, syntaxTheme string) *Presenter {
	if syntaxTheme == "" {
		syntaxTheme = "monokai"
	}
	return &Presenter{out: out, color: color, syntaxTheme: syntaxTheme}
}

// Info prints a status line (query echo, model notice, progress).
func (p *Presenter) Info(msg string) {
	p.line(infoStyle, msg)
}

// Notice prints a highlighted hint such as the file-saved confirmation.
func (p *Presenter) Notice(msg string) {
	p.line(noticeStyle, msg)
}

// Error prints a user-facing error line.
func (p *Presenter) Error(msg string) {
	p.line(errStyle, msg)
}

// Success prints a confirmation line.
func (p *Presenter) Success(msg string) {
	p.line(okStyle, msg)
}

func (p *Presenter) line(style lipgloss.Style, msg string) {
	if p.color {
		fmt.Fprintln(p.out, style.Render(msg))
		return
	}
	fmt.Fprintln(p.out, msg)
}

// Answer renders a DIRECT_ANSWER payload. Markdown is rendered with glamour
// when color is enabled; rendering failures fall back to the raw text.
func (p *Presenter) Answer(text string) {
	body := text
	if p.color {
		if r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80)); err == nil {
			if rendered, err := r.Render(text); err == nil {
				body = strings.TrimRight(rendered, "\n")
			}
		}
	}
	p.panel(answerPanel, "Answer", body)
}

// Code renders generated Python with syntax highlighting and line numbers.
func (p *Presenter) Code(code string) {
	body := numberLines(code)
	if p.color {
		var b strings.Builder
		if err := quick.Highlight(&b, code, "python", "terminal256", p.syntaxTheme); err == nil {
			body = numberLines(strings.TrimRight(b.String(), "\n"))
		}
	}
	p.panel(codePanel, "Generated Code", body)
}

// ContextRequest renders a NEED_CONTEXT question for the user.
func (p *Presenter) ContextRequest(text string) {
	p.panel(contextPanel, "Context Request", text)
}

// Output prints captured child stdout under a separator, with stderr as an
// error block when present.
func (p *Presenter) Output(stdout, stderr string) {
	p.line(okStyle, "--- Output ---")
	if stdout != "" {
		fmt.Fprint(p.out, stdout)
		if !strings.HasSuffix(stdout, "\n") {
			fmt.Fprintln(p.out)
		}
	}
	if stderr != "" {
		p.line(errStyle, "Errors:")
		fmt.Fprint(p.out, stderr)
		if !strings.HasSuffix(stderr, "\n") {
			fmt.Fprintln(p.out)
		}
	}
}

func (p *Presenter) panel(style lipgloss.Style, title, body string) {
	if p.color {
		fmt.Fprintln(p.out, titleStyle.Render(title))
		fmt.Fprintln(p.out, style.Render(body))
		return
	}
	fmt.Fprintf(p.out, "%s\n%s\n", title, body)
}

// Save writes content verbatim to path and confirms. The path is used as
// given for every save within one invocation, never suffixed.
func (p *Presenter) Save(content, path, label string) error {
	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", strings.ToLower(label), err)
	}
	p.Success(fmt.Sprintf("%s saved to %s", label, path))
	return nil
}

var vizKeywords = []string{"plot", "graph", "chart", "visualiz", "histogram", "heatmap"}

var wordPattern = regexp.MustCompile(`[a-zA-Z0-9]+`)

// stopwords excluded when deriving filenames from queries.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "for": {}, "to": {}, "and": {},
	"in": {}, "on": {}, "with": {}, "from": {}, "my": {}, "me": {}, "show": {},
	"make": {}, "create": {}, "draw": {}, "please": {},
}

// SuggestSavePath synthesizes a timestamped .py filename from significant
// query words when the query looks visualization-related and no explicit
// save path was given. Returns "" for non-visualization queries.
func SuggestSavePath(query string, now time.Time) string {
	lower := strings.ToLower(query)
	var isViz bool
	for _, kw := range vizKeywords {
		if strings.Contains(lower, kw) {
			isViz = true
			break
		}
	}
	if !isViz {
		return ""
	}

	var words []string
	for _, w := range wordPattern.FindAllString(lower, -1) {
		if _, skip := stopwords[w]; skip {
			continue
		}
		if isVizWord(w) {
			continue
		}
		words = append(words, w)
		if len(words) == 3 {
			break
		}
	}
	stem := strings.Join(words, "_")
	if stem == "" {
		stem = "visualization"
	}
	return filepath.Clean(stem + "_" + now.Format("20060102_150405") + ".py")
}

func isVizWord(w string) bool {
	for _, kw := range vizKeywords {
		if strings.Contains(w, kw) {
			return true
		}
	}
	return false
}

func numberLines(s string) string {
	lines := strings.Split(s, "\n")
	width := len(fmt.Sprint(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		fmt.Fprintf(&b, "%*d  %s", width, i+1, line)
		if i < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
