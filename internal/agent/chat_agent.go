package agent

import (
	"context"
	"fmt"

	"github.com/coursechat/coursechat/internal/tools"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// systemPrompt is static so it is not rebuilt on every call. Prior-turn
// history, when present, is appended under a "Previous conversation" header.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to tools for course information.

Tool Usage:
- **search_course_content**: Search course materials for specific content or detailed educational materials
- **get_course_outline**: Get course structure - use when users ask what lessons a course has, its outline, the topics it covers, or links to lessons
- **Up to 2 sequential tool calls per query**: you may call a second tool after seeing the first result, e.g. get an outline first and then search for specific content
- Synthesize tool results into accurate, fact-based responses
- If a tool yields no results, state this clearly without offering alternatives

Response Protocol:
- General knowledge questions: answer from existing knowledge without tools
- Course-specific content questions: use search_course_content first
- Course structure questions: use get_course_outline first
- Provide direct answers only - no reasoning process or search commentary

When presenting course outlines, include the course title and link plus every lesson number, title, and link.

All responses must be brief, clear, educational, and example-supported when that aids understanding.`

// ToolDispatcher executes a named tool and always answers with text; failure
// isolation is the dispatcher's job, so no error is returned here.
type ToolDispatcher interface {
	Execute(ctx context.Context, name string, input map[string]interface{}) string
}

// ChatAgent runs the bounded multi-round conversation loop. One Respond call
// owns its transcript exclusively; the ModelClient may be shared.
type ChatAgent struct {
	client    ModelClient
	maxRounds int
}

// NewChatAgent creates the orchestrator. maxRounds caps the number of tool
// rounds before the model is forced to answer in text; negative values are
// clamped to zero (never offer tools).
func NewChatAgent(client ModelClient, maxRounds int) *ChatAgent {
	if maxRounds < 0 {
		maxRounds = 0
	}
	return &ChatAgent{client: client, maxRounds: maxRounds}
}

// Respond answers one user query, running at most maxRounds tool rounds.
// history is opaque prior-turn context prepended to the system instructions.
// defs and dispatcher come in together in practice: with no defs the first
// response is authoritative. Remote-model failures propagate; tool failures
// never do (the dispatcher converts them to text).
func (a *ChatAgent) Respond(ctx context.Context, query, history string, defs []tools.Definition, dispatcher ToolDispatcher) (string, error) {
	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	messages := []Message{UserText(query)}

	for round := 0; round < a.maxRounds; round++ {
		req := SendRequest{System: system, Messages: messages}
		if len(defs) > 0 {
			req.Tools = defs
		}

		resp, err := a.client.Send(ctx, req)
		if err != nil {
			return "", err
		}

		if resp.StopReason != StopReasonToolUse {
			return textContent(resp.Content), nil
		}

		if dispatcher == nil {
			// The model was offered tools but nothing can execute them.
			// That is a wiring bug, not a conversational condition.
			return "", fmt.Errorf("model requested tool use but no tool dispatcher is configured")
		}

		results := a.runToolCalls(ctx, resp.Content, dispatcher)

		messages = append(messages,
			Message{Role: RoleAssistant, Content: resp.Content},
			Message{Role: RoleUser, Content: results},
		)

		log.Debug().
			Int("round", round+1).
			Int("tool_calls", len(results)).
			Int("transcript_len", len(messages)).
			Msg("tool round completed")
	}

	// Round cap reached: one more call with tool advertisements withheld so
	// the model must answer in text.
	resp, err := a.client.Send(ctx, SendRequest{System: system, Messages: messages})
	if err != nil {
		return "", err
	}
	return textContent(resp.Content), nil
}

// runToolCalls dispatches every tool_use block in the response. Calls run
// concurrently but results are reassembled in the order of the originating
// blocks; that ordering, not the parallelism, is the invariant that matters.
func (a *ChatAgent) runToolCalls(ctx context.Context, blocks []ContentBlock, dispatcher ToolDispatcher) []ContentBlock {
	var calls []ToolUseBlock
	for _, b := range blocks {
		if tu, ok := b.(ToolUseBlock); ok {
			calls = append(calls, tu)
		}
	}

	results := make([]ContentBlock, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			results[i] = ToolResultBlock{
				ToolUseID: call.ID,
				Content:   dispatcher.Execute(gctx, call.Name, call.Input),
			}
			return nil
		})
	}
	// Dispatchers never error; Wait only synchronizes.
	_ = g.Wait()
	return results
}

func textContent(blocks []ContentBlock) string {
	var text string
	for _, b := range blocks {
		if tb, ok := b.(TextBlock); ok {
			text += tb.Text
		}
	}
	return text
}
