// Package classify turns raw model replies into typed dispatch decisions.
package classify

import "strings"

// Kind identifies how a model response payload should be handled.
type Kind int

const (
	// KindDirectAnswer is an explanation to display.
	KindDirectAnswer Kind = iota
	// KindCodeExecution is Python code to run.
	KindCodeExecution
	// KindNeedContext is a question the user must answer before retrying.
	KindNeedContext
	// KindMalformed is a bare mode keyword with no payload.
	KindMalformed
)

const (
	prefixDirectAnswer  = "DIRECT_ANSWER:"
	prefixCodeExecution = "CODE_EXECUTION:"
	prefixNeedContext   = "NEED_CONTEXT:"
)

func (k Kind) String() string {
	switch k {
	case KindDirectAnswer:
		return "DIRECT_ANSWER"
	case KindCodeExecution:
		return "CODE_EXECUTION"
	case KindNeedContext:
		return "NEED_CONTEXT"
	default:
		return "MALFORMED"
	}
}

// Result is a classified model response.
type Result struct {
	Kind    Kind
	Payload string
	// Fallback marks a response with no recognized prefix, treated as code.
	Fallback bool
	// Cleaned is the full response after fence stripping, kept for display
	// and history purposes.
	Cleaned string
}

// StripFences trims whitespace and removes at most one leading markdown code
// fence opener and one trailing closer. A "```python" opener is preferred over
// a bare "```"; the closer is cut at its last occurrence. One pass only:
// nested fences need a second application, which Classify performs for code
// payloads.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```python") {
		text = strings.Replace(text, "```python", "", 1)
	}
	if strings.HasPrefix(text, "```") {
		text = strings.Replace(text, "```", "", 1)
	}
	if strings.HasSuffix(text, "```") {
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}

// Classify strips fences from a raw model response and decides its kind.
// Exactly one kind applies. A response that is only a bare mode keyword is
// malformed; a response matching no prefix falls back to code execution.
func Classify(raw string) Result {
	response := StripFences(raw)

	switch response {
	case "CODE_EXECUTION", "DIRECT_ANSWER", "NEED_CONTEXT":
		return Result{Kind: KindMalformed, Cleaned: response}
	}

	switch {
	case strings.HasPrefix(response, prefixDirectAnswer):
		payload := strings.TrimSpace(strings.TrimPrefix(response, prefixDirectAnswer))
		return Result{Kind: KindDirectAnswer, Payload: payload, Cleaned: response}
	case strings.HasPrefix(response, prefixCodeExecution):
		// Fence-stripped a second time: a fenced payload inside a fenced
		// response loses both layers.
		payload := StripFences(strings.TrimPrefix(response, prefixCodeExecution))
		return Result{Kind: KindCodeExecution, Payload: payload, Cleaned: response}
	case strings.HasPrefix(response, prefixNeedContext):
		payload := strings.TrimSpace(strings.TrimPrefix(response, prefixNeedContext))
		return Result{Kind: KindNeedContext, Payload: payload, Cleaned: response}
	default:
		return Result{Kind: KindCodeExecution, Payload: response, Fallback: true, Cleaned: response}
	}
}
