// Package agent drives the round-bounded tool-calling conversation against
// the LLM: it owns the transcript, dispatches requested tools through a
// registry, and forces a final text answer once the round cap is reached.
package agent

// Role of one transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentBlock is the tagged union carried by messages: text, a tool
// invocation request from the model, or the matching tool result. Modeled as
// a closed interface so the ToolUse/ToolResult pairing stays type-checked.
type ContentBlock interface {
	isContentBlock()
}

// TextBlock is plain answer text.
type TextBlock struct {
	Text string
}

// ToolUseBlock is one capability invocation requested by the model.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]interface{}
}

// ToolResultBlock answers the ToolUseBlock with the same ID in the
// immediately preceding assistant message.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
}

func (TextBlock) isContentBlock()       {}
func (ToolUseBlock) isContentBlock()    {}
func (ToolResultBlock) isContentBlock() {}

// Message is one transcript entry. Block order is significant and preserved
// exactly as constructed; messages are immutable once appended.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// UserText builds a single-text user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock{Text: text}}}
}
