package agent

import (
	"context"

	"github.com/coursechat/coursechat/internal/tools"
)

// Stop reasons reported by the remote model.
const (
	StopReasonToolUse = "tool_use"
	StopReasonEndTurn = "end_turn"
)

// SendRequest is one remote model call. A nil Tools slice withholds tool
// advertisements entirely, guaranteeing a text-only response; a non-empty
// slice is offered with the automatic tool-choice policy.
type SendRequest struct {
	System   string
	Messages []Message
	Tools    []tools.Definition
}

// ModelResponse is the remote model's reply.
type ModelResponse struct {
	StopReason string
	Content    []ContentBlock
}

// ModelClient is the remote model service. The production implementation is
// AnthropicClient; tests substitute a scripted fake.
type ModelClient interface {
	Send(ctx context.Context, req SendRequest) (*ModelResponse, error)
}
