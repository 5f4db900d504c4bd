// Package dispatch routes classified model responses until a terminal action:
// an answer shown, code executed, or the user leaving.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prudhvi1709/smart-cli/internal/classify"
	"github.com/prudhvi1709/smart-cli/internal/runner"
)

// ErrEmptyQuery is returned when a single-shot run receives no query.
var ErrEmptyQuery = errors.New("query is required")

// ModelClient is the model collaborator capability.
type ModelClient interface {
	Ask(ctx context.Context, query string) (string, error)
}

// CodeRunner executes generated code.
type CodeRunner interface {
	Run(ctx context.Context, code string) (runner.Result, error)
}

// Presenter handles all user-facing display.
type Presenter interface {
	Info(msg string)
	Notice(msg string)
	Error(msg string)
	Answer(text string)
	Code(code string)
	ContextRequest(text string)
	Output(stdout, stderr string)
	Save(content, path, label string) error
}

// Prompter reads one line of free text from the user.
type Prompter interface {
	ReadLine(prompt string) (string, error)
}

// Options control one invocation of the loop.
type Options struct {
	Execute  bool
	ShowCode bool
	// SavePath is reused verbatim for every terminal save when set.
	SavePath string
	// MaxRetries caps malformed-response re-queries; 0 means unbounded.
	MaxRetries int
	// SuggestSave, when set, proposes a save path for queries that have none.
	SuggestSave func(query string) string
}

// Loop drives query cycles against the model.
type Loop struct {
	Client    ModelClient
	Runner    CodeRunner
	Presenter Presenter
	Prompter  Prompter
	Logger    *zap.Logger
	Opts      Options
}

var exitKeywords = map[string]struct{}{"exit": {}, "quit": {}, "q": {}}

// Run executes one query to its terminal action. Model collaborator failures
// propagate to the caller; everything else is handled with a console message.
func (l *Loop) Run(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	l.Presenter.Info("Query: " + query)
	l.Presenter.Info("Processing...")
	return l.cycle(ctx, query)
}

// RunInteractive reads queries until the user exits. Model failures are
// reported and the prompt continues.
func (l *Loop) RunInteractive(ctx context.Context) error {
	l.Presenter.Info("Interactive mode. Type 'exit' to quit.")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, err := l.Prompter.ReadLine("> ")
		if err != nil {
			// EOF or closed input ends the session gracefully.
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if _, quit := exitKeywords[strings.ToLower(line)]; quit {
			l.Presenter.Info("Goodbye!")
			return nil
		}

		if err := l.cycle(ctx, line); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			l.Presenter.Error("Error: " + err.Error())
		}
	}
}

// cycle runs the state machine for one query: model call, classification,
// and exactly one terminal action. Context-request and malformed-retry
// iterations feed a new query back without a terminal action.
func (l *Loop) cycle(ctx context.Context, query string) error {
	savePath := l.Opts.SavePath
	if savePath == "" && l.Opts.SuggestSave != nil {
		savePath = l.Opts.SuggestSave(query)
	}

	currentQuery := query
	retries := 0

	for {
		raw, err := l.Client.Ask(ctx, currentQuery)
		if err != nil {
			return err
		}

		res := classify.Classify(raw)
		l.Logger.Debug("classified response",
			zap.String("kind", res.Kind.String()),
			zap.Bool("fallback", res.Fallback))

		switch res.Kind {
		case classify.KindMalformed:
			l.Presenter.Error(fmt.Sprintf("Error: Malformed response from model. Got %q without content.", res.Cleaned))
			retries++
			if l.Opts.MaxRetries > 0 && retries > l.Opts.MaxRetries {
				return fmt.Errorf("model returned %d malformed responses in a row", retries)
			}
			l.Presenter.Info("Retrying with clearer instructions...")
			currentQuery = "Please provide a complete response. Original query: " + query
			continue

		case classify.KindDirectAnswer:
			if res.Payload == "" {
				l.Presenter.Error("Error: Empty DIRECT_ANSWER response")
				return nil
			}
			l.Presenter.Answer(res.Payload)
			if err := l.Presenter.Save(res.Payload, savePath, "Answer"); err != nil {
				l.Presenter.Error(err.Error())
			}
			return nil

		case classify.KindNeedContext:
			if res.Payload == "" {
				l.Presenter.Error("Error: Empty NEED_CONTEXT response")
				return nil
			}
			l.Presenter.ContextRequest(res.Payload)
			if err := l.Presenter.Save(res.Payload, savePath, "Context request"); err != nil {
				l.Presenter.Error(err.Error())
			}

			l.Presenter.Info("Please provide the requested information:")
			input, err := l.Prompter.ReadLine("> ")
			if err != nil || strings.TrimSpace(input) == "" {
				l.Presenter.Error("No context provided. Exiting.")
				return nil
			}
			input = strings.TrimSpace(input)
			currentQuery = fmt.Sprintf("Context provided: %s. Original query: %s", input, query)
			l.Presenter.Info("Continuing with context: " + input)
			continue

		default: // KindCodeExecution, tagged or fallback
			if res.Payload == "" {
				l.Presenter.Error("Error: Empty CODE_EXECUTION response")
				return nil
			}
			label := "Code"
			if res.Fallback {
				label = "Content"
			}
			if l.Opts.ShowCode {
				l.Presenter.Code(res.Payload)
			}
			if err := l.Presenter.Save(res.Payload, savePath, label); err != nil {
				l.Presenter.Error(err.Error())
			}
			if l.Opts.Execute {
				l.Presenter.Info("Executing code...")
				l.execute(ctx, res.Payload)
			}
			return nil
		}
	}
}

// execute runs generated code and reports the outcome. Runner failures never
// propagate past this point.
func (l *Loop) execute(ctx context.Context, code string) {
	result, err := l.Runner.Run(ctx, code)
	if err != nil {
		l.Presenter.Error("Execution error: " + err.Error())
		return
	}

	if result.TimedOut {
		l.Presenter.Error(fmt.Sprintf("Code execution timed out (%ds limit)", int(runner.DefaultTimeout.Seconds())))
		return
	}

	l.Presenter.Output(result.Stdout, result.Stderr)
	if result.SavedFile {
		l.Presenter.Notice("File saved successfully!")
	}
	if result.ExitCode != 0 {
		l.Presenter.Error(fmt.Sprintf("Process exited with code %d", result.ExitCode))
	}
}
