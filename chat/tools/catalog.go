// Package tools defines the function-calling tools the assistant can
// invoke and the executor that dispatches them against the backend API.
package tools

import (
	"github.com/openai/openai-go/v3"
)

// Property describes one parameter in a tool's JSON schema.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Definition is one callable tool exposed to the model.
type Definition struct {
	Name        string
	Description string
	Parameters  map[string]Property
	Required    []string
}

// OpenAITool converts the definition into the function-calling shape the
// chat completions API expects.
func (d Definition) OpenAITool() openai.ChatCompletionToolUnionParam {
	properties := make(map[string]any, len(d.Parameters))
	for name, p := range d.Parameters {
		properties[name] = map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
	}
	required := d.Required
	if required == nil {
		required = []string{}
	}
	return openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
		Name:        d.Name,
		Description: openai.String(d.Description),
		Parameters: openai.FunctionParameters{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	})
}

// Catalog lists every tool the assistant may call, in the order they are
// presented to the model.
var Catalog = []Definition{
	{
		Name:        "create_task",
		Description: "Create a new task with a title and optional description. Use this when the user wants to add a new item to their todo list.",
		Parameters: map[string]Property{
			"title":       {Type: "string", Description: "The task title (1-200 characters). This is what the user wants to do."},
			"description": {Type: "string", Description: "Optional additional details about the task (0-1000 characters)."},
		},
		Required: []string{"title"},
	},
	{
		Name:        "list_tasks",
		Description: "Get a list of the user's tasks. Can filter by completion status. Use this when the user wants to see their todo list.",
		Parameters: map[string]Property{
			"completed": {Type: "boolean", Description: "Filter by completion status. true = only completed, false = only incomplete, omit = all tasks"},
			"limit":     {Type: "integer", Description: "Maximum number of tasks to return (default 100)"},
		},
	},
	{
		Name:        "get_task",
		Description: "Get details of a specific task by its ID. Use this when the user asks about a particular task.",
		Parameters: map[string]Property{
			"task_id": {Type: "integer", Description: "The ID of the task to retrieve"},
		},
		Required: []string{"task_id"},
	},
	{
		Name:        "update_task",
		Description: "Update a task's title, description, or completion status. Use this when the user wants to modify an existing task.",
		Parameters: map[string]Property{
			"task_id":     {Type: "integer", Description: "The ID of the task to update"},
			"title":       {Type: "string", Description: "New task title (1-200 characters). Only provide if changing the title."},
			"description": {Type: "string", Description: "New task description. Only provide if changing the description."},
			"completed":   {Type: "boolean", Description: "New completion status. Only provide if changing the status."},
		},
		Required: []string{"task_id"},
	},
	{
		Name:        "delete_task",
		Description: "Permanently delete a task. Use this when the user wants to remove a task. ALWAYS confirm with the user before calling this.",
		Parameters: map[string]Property{
			"task_id": {Type: "integer", Description: "The ID of the task to delete"},
		},
		Required: []string{"task_id"},
	},
	{
		Name:        "toggle_complete",
		Description: "Toggle a task's completion status. If incomplete, mark complete. If complete, mark incomplete. Use when user wants to mark a task as done.",
		Parameters: map[string]Property{
			"task_id": {Type: "integer", Description: "The ID of the task to toggle"},
		},
		Required: []string{"task_id"},
	},
}

// OpenAITools returns the full catalog in API form.
func OpenAITools() []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(Catalog))
	for _, d := range Catalog {
		out = append(out, d.OpenAITool())
	}
	return out
}
