// Package llm adapts the agent's model port to AWS Bedrock's Converse API.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/voyant-travel/voyant-agent/internal/app/tools"
	"github.com/voyant-travel/voyant-agent/internal/domain"
)

// BedrockConfig holds the settings for one Bedrock-backed model client.
type BedrockConfig struct {
	Region    string
	ModelID   string
	MaxTokens int
}

// BedrockClient implements domain.ModelClient over the Bedrock Converse and
// ConverseStream APIs. The plan binding attaches the tool registry with tool
// choice "any", which makes the model emit at least one tool call; the free
// binding attaches no tools at all. Safe for concurrent use.
type BedrockClient struct {
	client     *bedrockruntime.Client
	modelID    string
	maxTokens  int32
	toolConfig *types.ToolConfiguration
}

func NewBedrockClient(ctx context.Context, cfg BedrockConfig, registry *tools.Registry) (*BedrockClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	maxTokens := int32(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 2048
	}

	return &BedrockClient{
		client:     bedrockruntime.NewFromConfig(awsCfg),
		modelID:    cfg.ModelID,
		maxTokens:  maxTokens,
		toolConfig: buildToolConfig(registry),
	}, nil
}

// Converse performs one model invocation. With OnToken set it uses the
// streaming API and forwards text deltas as they arrive; tool-use deltas are
// accumulated and never surfaced as tokens.
func (c *BedrockClient) Converse(ctx context.Context, req domain.ModelRequest) (*domain.ModelReply, error) {
	if req.OnToken != nil {
		return c.converseStream(ctx, req)
	}
	return c.converse(ctx, req)
}

func (c *BedrockClient) converse(ctx context.Context, req domain.ModelRequest) (*domain.ModelReply, error) {
	out, err := c.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:         aws.String(c.modelID),
		Messages:        convertMessages(req.Messages),
		System:          systemBlocks(req.System),
		InferenceConfig: &types.InferenceConfiguration{MaxTokens: aws.Int32(c.maxTokens)},
		ToolConfig:      c.toolConfigFor(req.Binding),
	})
	if err != nil {
		return nil, wrapAPIError("bedrock converse", err)
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, fmt.Errorf("bedrock converse: unexpected output type %T", out.Output)
	}
	return parseMessage(msg.Value)
}

func (c *BedrockClient) converseStream(ctx context.Context, req domain.ModelRequest) (*domain.ModelReply, error) {
	out, err := c.client.ConverseStream(ctx, &bedrockruntime.ConverseStreamInput{
		ModelId:         aws.String(c.modelID),
		Messages:        convertMessages(req.Messages),
		System:          systemBlocks(req.System),
		InferenceConfig: &types.InferenceConfiguration{MaxTokens: aws.Int32(c.maxTokens)},
		ToolConfig:      c.toolConfigFor(req.Binding),
	})
	if err != nil {
		return nil, wrapAPIError("bedrock converse stream", err)
	}

	stream := out.GetStream()
	defer stream.Close()

	var (
		reply       domain.ModelReply
		text        strings.Builder
		toolInput   strings.Builder
		pendingTool *domain.ToolCall
	)

	flushTool := func() {
		if pendingTool == nil {
			return
		}
		input := toolInput.String()
		if input == "" {
			input = "{}"
		}
		pendingTool.Input = json.RawMessage(input)
		reply.ToolCalls = append(reply.ToolCalls, *pendingTool)
		pendingTool = nil
		toolInput.Reset()
	}

	for event := range stream.Events() {
		switch ev := event.(type) {
		case *types.ConverseStreamOutputMemberContentBlockStart:
			if toolUse, ok := ev.Value.Start.(*types.ContentBlockStartMemberToolUse); ok {
				pendingTool = &domain.ToolCall{
					ID:   aws.ToString(toolUse.Value.ToolUseId),
					Name: aws.ToString(toolUse.Value.Name),
				}
				toolInput.Reset()
			}
		case *types.ConverseStreamOutputMemberContentBlockDelta:
			switch delta := ev.Value.Delta.(type) {
			case *types.ContentBlockDeltaMemberText:
				if delta.Value != "" {
					text.WriteString(delta.Value)
					req.OnToken(delta.Value)
				}
			case *types.ContentBlockDeltaMemberToolUse:
				if delta.Value.Input != nil {
					toolInput.WriteString(*delta.Value.Input)
				}
			}
		case *types.ConverseStreamOutputMemberContentBlockStop:
			flushTool()
		case *types.ConverseStreamOutputMemberMessageStop:
		}
	}
	flushTool()

	if err := stream.Err(); err != nil {
		return nil, wrapAPIError("bedrock converse stream", err)
	}

	reply.Text = text.String()
	return &reply, nil
}

// toolConfigFor returns the registry's tool configuration under the plan
// binding and nil under free. A nil ToolConfig means the model cannot emit
// tool calls at all, which is what makes composition terminal.
func (c *BedrockClient) toolConfigFor(b domain.Binding) *types.ToolConfiguration {
	if b == domain.BindingPlan {
		return c.toolConfig
	}
	return nil
}

func buildToolConfig(registry *tools.Registry) *types.ToolConfiguration {
	all := registry.All()
	specs := make([]types.Tool, 0, len(all))
	for _, t := range all {
		var schema any
		if err := json.Unmarshal(t.InputSchema(), &schema); err != nil {
			schema = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		specs = append(specs, &types.ToolMemberToolSpec{
			Value: types.ToolSpecification{
				Name:        aws.String(t.Name()),
				Description: aws.String(t.Description()),
				InputSchema: &types.ToolInputSchemaMemberJson{Value: document.NewLazyDocument(schema)},
			},
		})
	}
	return &types.ToolConfiguration{
		Tools:      specs,
		ToolChoice: &types.ToolChoiceMemberAny{},
	}
}

// wrapAPIError surfaces the AWS error code so log lines distinguish
// throttling from validation or access failures.
func wrapAPIError(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s: %w", op, apiErr.ErrorCode(), err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func systemBlocks(system string) []types.SystemContentBlock {
	if system == "" {
		return nil
	}
	return []types.SystemContentBlock{&types.SystemContentBlockMemberText{Value: system}}
}

// convertMessages maps the transcript to Converse messages. Tool results ride
// in user-role messages, as the Converse API requires.
func convertMessages(msgs []domain.Message) []types.Message {
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		var content []types.ContentBlock

		if m.Text != "" {
			content = append(content, &types.ContentBlockMemberText{Value: m.Text})
		}
		for _, tc := range m.ToolCalls {
			var input any
			if err := json.Unmarshal(tc.Input, &input); err != nil {
				input = map[string]any{}
			}
			content = append(content, &types.ContentBlockMemberToolUse{
				Value: types.ToolUseBlock{
					ToolUseId: aws.String(tc.ID),
					Name:      aws.String(tc.Name),
					Input:     document.NewLazyDocument(input),
				},
			})
		}
		if m.ToolResult != nil {
			content = append(content, &types.ContentBlockMemberToolResult{
				Value: types.ToolResultBlock{
					ToolUseId: aws.String(m.ToolResult.CallID),
					Content: []types.ToolResultContentBlock{
						&types.ToolResultContentBlockMemberText{Value: string(m.ToolResult.Output)},
					},
				},
			})
		}

		if len(content) == 0 {
			continue
		}

		role := types.ConversationRoleUser
		if m.Role == domain.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		out = append(out, types.Message{Role: role, Content: content})
	}
	return out
}

func parseMessage(msg types.Message) (*domain.ModelReply, error) {
	var reply domain.ModelReply
	var text strings.Builder

	for _, block := range msg.Content {
		switch b := block.(type) {
		case *types.ContentBlockMemberText:
			text.WriteString(b.Value)
		case *types.ContentBlockMemberToolUse:
			input := json.RawMessage(`{}`)
			if b.Value.Input != nil {
				raw, err := b.Value.Input.MarshalSmithyDocument()
				if err != nil {
					return nil, fmt.Errorf("decoding tool input for %s: %w", aws.ToString(b.Value.Name), err)
				}
				input = raw
			}
			reply.ToolCalls = append(reply.ToolCalls, domain.ToolCall{
				ID:    aws.ToString(b.Value.ToolUseId),
				Name:  aws.ToString(b.Value.Name),
				Input: input,
			})
		}
	}

	reply.Text = text.String()
	return &reply, nil
}
