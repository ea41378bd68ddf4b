package summarize

import (
	"context"
	"errors"
	"strings"
)

// Completer is the stateless text-completion contract: one prompt in, one
// text out per call.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const initialTemplate = `You are an expert at summarizing customer support tickets.
Your goal is to create a concise but comprehensive summary of the ticket.
Below you find the content of a support ticket:
--------
{{text}}
--------

Focus on:
1. The main issue or request
2. Key details and context provided
3. Current status and any resolution steps
4. Important customer interactions

CONCISE SUMMARY:`

const refineTemplate = `You are an expert at summarizing customer support tickets.
We have provided an existing summary up to a certain point: {{existing_answer}}

Below you find additional ticket content:
--------
{{text}}
--------

Given this new context, refine the summary to be more complete.
If the context isn't useful, return the original summary.
Focus on maintaining a clear and concise summary that captures all important details.

REFINED SUMMARY:`

// RefineChain produces a summary incrementally: the first chunk seeds an
// initial summary, and each subsequent chunk refines the running summary.
// The refine prompt explicitly allows the model to return the prior summary
// unchanged when a chunk adds nothing.
type RefineChain struct {
	completer Completer
	splitter  Splitter
}

// NewRefineChain constructs the chain.
func NewRefineChain(completer Completer, splitter Splitter) *RefineChain {
	return &RefineChain{completer: completer, splitter: splitter}
}

// Summarize runs the chain over the whole document, one model call per
// chunk.
func (c *RefineChain) Summarize(ctx context.Context, document string) (string, error) {
	chunks := c.splitter.Split(document)
	if len(chunks) == 0 {
		return "", errors.New("nothing to summarize")
	}

	summary, err := c.completer.Complete(ctx, renderInitial(chunks[0]))
	if err != nil {
		return "", err
	}

	for _, chunk := range chunks[1:] {
		summary, err = c.completer.Complete(ctx, renderRefine(summary, chunk))
		if err != nil {
			return "", err
		}
	}
	return strings.TrimSpace(summary), nil
}

func renderInitial(text string) string {
	return strings.ReplaceAll(initialTemplate, "{{text}}", text)
}

func renderRefine(existing, text string) string {
	prompt := strings.ReplaceAll(refineTemplate, "{{existing_answer}}", existing)
	return strings.ReplaceAll(prompt, "{{text}}", text)
}
