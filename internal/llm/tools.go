package llm

import (
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// Tool names the model can invoke. The set is fixed; the dispatcher
// matches on these exhaustively.
const (
	ToolWebSearch = "web_search"
	ToolSendEmail = "send_email"
	ToolReadSkill = "read_skill"
)

// toolSchema declares the three agent tools for every endpoint call.
func toolSchema() []anthropic.ToolUnionParam {
	return []anthropic.ToolUnionParam{
		toolParam(ToolWebSearch,
			"Search the web for information about a company, person, or topic. Use this to research prospects and companies.",
			anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "The search query",
					},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default: 5)",
					},
				},
				Required: []string{"query"},
			}),
		toolParam(ToolSendEmail,
			"Send an email to a prospect. Use this after composing a personalized email.",
			anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"to_email": map[string]any{
						"type":        "string",
						"description": "Recipient email address",
					},
					"to_name": map[string]any{
						"type":        "string",
						"description": "Recipient name",
					},
					"subject": map[string]any{
						"type":        "string",
						"description": "Email subject line",
					},
					"body": map[string]any{
						"type":        "string",
						"description": "Email body content",
					},
				},
				Required: []string{"to_email", "subject", "body"},
			}),
		toolParam(ToolReadSkill,
			"Load the full instructions from an agent skill. Use this when you need detailed guidance on a specific task.",
			anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"skill_name": map[string]any{
						"type":        "string",
						"description": "Name of the skill to load",
					},
				},
				Required: []string{"skill_name"},
			}),
	}
}

func toolParam(name, desc string, schema anthropic.ToolInputSchemaParam) anthropic.ToolUnionParam {
	tp := anthropic.ToolUnionParamOfTool(schema, name)
	if tp.OfTool != nil {
		tp.OfTool.Description = param.NewOpt(desc)
	}
	return tp
}
