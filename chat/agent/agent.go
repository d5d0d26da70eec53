// Package agent runs the model loop: it turns a user message plus
// conversation context into chat completions, executes any tool calls
// the model issues against the backend, and folds the results back into
// a final reply.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"

	"github.com/Aliladla/hackathon2phase3/chat/client"
	"github.com/Aliladla/hackathon2phase3/chat/session"
	"github.com/Aliladla/hackathon2phase3/chat/tools"
)

// CompletionService is the slice of the OpenAI client the runner needs.
type CompletionService interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Runner processes one conversation turn at a time. It is stateless
// across turns; all per-session state lives in the session context.
type Runner struct {
	Completions CompletionService
	Model       string
	BackendURL  string
	Timeout     time.Duration
	Logger      *logrus.Logger
}

// Run processes a single user message and returns the assistant's
// reply. Failures never surface as errors; they come back as an
// apologetic reply and leave the session usable.
func (r *Runner) Run(ctx context.Context, sess *session.Context, token, message string) string {
	sess.AddMessage(session.RoleUser, message, nil, nil)

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(sess.Messages)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt(sess.Summary())))
	for _, m := range sess.Messages {
		switch m.Role {
		case session.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case session.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		}
	}

	resp, err := r.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.Model),
		Messages: messages,
		Tools:    tools.OpenAITools(),
	})
	if err != nil {
		return r.fail(sess, err)
	}
	if len(resp.Choices) == 0 {
		return r.fail(sess, errors.New("model returned no choices"))
	}

	assistant := resp.Choices[0].Message
	if len(assistant.ToolCalls) == 0 {
		sess.AddMessage(session.RoleAssistant, assistant.Content, nil, nil)
		return assistant.Content
	}

	executor := tools.NewExecutor(client.New(r.BackendURL, token, r.Timeout), r.Logger)
	messages = append(messages, assistant.ToParam())

	calls := make([]session.ToolCallRecord, 0, len(assistant.ToolCalls))
	results := make([]tools.Result, 0, len(assistant.ToolCalls))
	for _, tc := range assistant.ToolCalls {
		res := r.executeCall(ctx, executor, tc)
		results = append(results, res)
		calls = append(calls, session.ToolCallRecord{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
		payload, err := sonic.MarshalString(res)
		if err != nil {
			return r.fail(sess, err)
		}
		messages = append(messages, openai.ToolMessage(payload, tc.ID))
	}
	sess.AddMessage(session.RoleAssistant, assistant.Content, calls, nil)

	final, err := r.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.Model),
		Messages: messages,
	})
	if err != nil {
		return r.fail(sess, err)
	}
	if len(final.Choices) == 0 {
		return r.fail(sess, errors.New("model returned no choices"))
	}
	reply := final.Choices[0].Message.Content

	applyResults(sess, results)
	sess.AddMessage(session.RoleAssistant, reply, nil, resultRecords(results))
	return reply
}

// executeCall runs one tool call, treating malformed argument JSON as a
// failed call rather than a failed turn.
func (r *Runner) executeCall(ctx context.Context, executor *tools.Executor, tc openai.ChatCompletionMessageToolCallUnion) tools.Result {
	var args map[string]any
	if tc.Function.Arguments != "" {
		if err := sonic.UnmarshalString(tc.Function.Arguments, &args); err != nil {
			return tools.Result{
				ToolName: tc.Function.Name,
				Error:    fmt.Sprintf("Unexpected error: %v", err),
			}
		}
	}
	if args == nil {
		args = map[string]any{}
	}
	return executor.Execute(ctx, tc.Function.Name, args)
}

// applyResults records task references from successful tool calls so
// the next turn can resolve "that task". A delete forgets the task id
// instead of leaving a dangling reference.
func applyResults(sess *session.Context, results []tools.Result) {
	for _, res := range results {
		if !res.Success {
			continue
		}
		op := tools.OperationForTool(res.ToolName)
		if op == "" {
			continue
		}
		if res.ToolName == "delete_task" {
			sess.ClearLastTask()
			sess.UpdateTaskContext(0, op)
			continue
		}
		if id := res.TaskID(); id > 0 {
			sess.UpdateTaskContext(id, op)
		}
	}
}

func resultRecords(results []tools.Result) []session.ToolResultRecord {
	records := make([]session.ToolResultRecord, 0, len(results))
	for _, res := range results {
		records = append(records, session.ToolResultRecord{
			ToolName:   res.ToolName,
			Success:    res.Success,
			Error:      res.Error,
			DurationMS: res.ExecutionTime * 1000,
		})
	}
	return records
}

func (r *Runner) fail(sess *session.Context, err error) string {
	if r.Logger != nil {
		r.Logger.WithError(err).Error("chat turn failed")
	}
	reply := fmt.Sprintf("I encountered an error: %v. Please try again.", err)
	sess.AddMessage(session.RoleAssistant, reply, nil, nil)
	return reply
}
