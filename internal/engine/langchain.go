package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fyrsmithlabs/docsmith/internal/actions"
)

const forceToolUseDirective = "You must call at least one tool before producing a final answer. " +
	"Never answer from memory; gather data through the available tools first."

// LangchainEngine implements Engine over an OpenAI-compatible chat endpoint
// via langchaingo.
type LangchainEngine struct {
	model llms.Model
}

// Options configures the langchaingo-backed engine.
type Options struct {
	// BaseURL is the chat completions endpoint root.
	BaseURL string
	// APIKey authenticates against the endpoint.
	APIKey string
	// Model is the model name requested per call.
	Model string
}

// NewLangchainEngine creates an engine client. The underlying HTTP client is
// safe for concurrent use by independent pipeline runs.
func NewLangchainEngine(opts Options) (*LangchainEngine, error) {
	llmOpts := []openai.Option{
		openai.WithToken(opts.APIKey),
	}
	if opts.Model != "" {
		llmOpts = append(llmOpts, openai.WithModel(opts.Model))
	}
	if opts.BaseURL != "" {
		llmOpts = append(llmOpts, openai.WithBaseURL(opts.BaseURL))
	}

	model, err := openai.New(llmOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine client: %w", err)
	}
	return &LangchainEngine{model: model}, nil
}

// Invoke performs one round against the engine, replaying the conversation
// history carried in the request.
func (e *LangchainEngine) Invoke(ctx context.Context, req Request) (*Reply, error) {
	messages := buildMessages(req)

	resp, err := e.model.GenerateContent(ctx, messages, llms.WithTools(toolSpecs(req.Tools)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: response carried no choices", ErrUnavailable)
	}

	choice := resp.Choices[0]
	reply := &Reply{Text: choice.Content}

	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		args := map[string]any{}
		if tc.FunctionCall.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &args); err != nil {
				return nil, fmt.Errorf("%w: malformed tool arguments for %s: %v",
					ErrUnavailable, tc.FunctionCall.Name, err)
			}
		}
		reply.ToolCalls = append(reply.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      actions.Name(tc.FunctionCall.Name),
			Arguments: args,
		})
	}

	return reply, nil
}

func buildMessages(req Request) []llms.MessageContent {
	system := req.System
	if req.ForceToolUse {
		system += "\n\n" + forceToolUseDirective
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, req.User),
	}

	for _, ex := range req.History {
		args, err := json.Marshal(ex.Call.Arguments)
		if err != nil {
			args = []byte("{}")
		}
		messages = append(messages, llms.MessageContent{
			Role: llms.ChatMessageTypeAI,
			Parts: []llms.ContentPart{
				llms.ToolCall{
					ID:   ex.Call.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      string(ex.Call.Name),
						Arguments: string(args),
					},
				},
			},
		})
		messages = append(messages, llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{
				llms.ToolCallResponse{
					ToolCallID: ex.Call.ID,
					Name:       string(ex.Call.Name),
					Content:    ex.Result,
				},
			},
		})
	}

	return messages
}

func toolSpecs(specs []actions.Spec) []llms.Tool {
	tools := make([]llms.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        string(spec.Name),
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}
	return tools
}
