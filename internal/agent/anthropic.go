package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/coursechat/coursechat/internal/tools"
	"github.com/rs/zerolog/log"
)

// AnthropicClient implements ModelClient on top of the Anthropic Messages
// API (or a compatible proxy via baseURL).
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	maxTokens   int
	temperature float64
}

func NewAnthropicClient(apiKey, model, baseURL string) *AnthropicClient {
	if model == "" {
		model = "claude-sonnet-4-6"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &AnthropicClient{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: 800,
	}
}

func (c *AnthropicClient) Send(ctx context.Context, req SendRequest) (*ModelResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.F(anthropic.Model(c.model)),
		MaxTokens:   anthropic.F(int64(c.maxTokens)),
		Temperature: anthropic.F(c.temperature),
		Messages:    anthropic.F(toMessageParams(req.Messages)),
	}
	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(req.System),
		})
	}
	if len(req.Tools) > 0 {
		params.Tools = anthropic.F(toToolParams(req.Tools))
		params.ToolChoice = anthropic.F[anthropic.ToolChoiceUnionParam](
			anthropic.ToolChoiceAutoParam{Type: anthropic.F(anthropic.ToolChoiceAutoTypeAuto)},
		)
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	out := &ModelResponse{StopReason: string(resp.StopReason)}
	for _, block := range resp.Content {
		switch b := block.AsUnion().(type) {
		case anthropic.TextBlock:
			out.Content = append(out.Content, TextBlock{Text: b.Text})
		case anthropic.ToolUseBlock:
			var input map[string]interface{}
			if err := json.Unmarshal(b.Input, &input); err != nil {
				log.Warn().Err(err).Str("tool", b.Name).Msg("failed to parse tool input")
				input = map[string]interface{}{}
			}
			out.Content = append(out.Content, ToolUseBlock{ID: b.ID, Name: b.Name, Input: input})
		}
	}
	return out, nil
}

// toToolParams converts registry definitions to Anthropic tool schemas.
func toToolParams(defs []tools.Definition) []anthropic.ToolUnionUnionParam {
	params := make([]anthropic.ToolUnionUnionParam, len(defs))
	for i, d := range defs {
		schema := map[string]interface{}{"type": "object"}
		if props, ok := d.InputSchema["properties"]; ok {
			schema["properties"] = props
		}
		if required, ok := d.InputSchema["required"]; ok {
			schema["required"] = required
		}
		params[i] = anthropic.ToolParam{
			Name:        anthropic.String(d.Name),
			Description: anthropic.String(d.Description),
			InputSchema: anthropic.F[interface{}](schema),
		}
	}
	return params
}

func toMessageParams(messages []Message) []anthropic.MessageParam {
	params := make([]anthropic.MessageParam, len(messages))
	for i, m := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, b := range m.Content {
			switch blk := b.(type) {
			case TextBlock:
				blocks = append(blocks, anthropic.NewTextBlock(blk.Text))
			case ToolUseBlock:
				blocks = append(blocks, anthropic.ToolUseBlockParam{
					ID:    anthropic.F(blk.ID),
					Name:  anthropic.F(blk.Name),
					Input: anthropic.F[interface{}](blk.Input),
					Type:  anthropic.F(anthropic.ToolUseBlockParamTypeToolUse),
				})
			case ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(blk.ToolUseID, blk.Content, false))
			}
		}
		role := anthropic.MessageParamRoleUser
		if m.Role == RoleAssistant {
			role = anthropic.MessageParamRoleAssistant
		}
		params[i] = anthropic.MessageParam{
			Role:    anthropic.F(role),
			Content: anthropic.F(blocks),
		}
	}
	return params
}
