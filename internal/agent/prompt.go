package agent

import "fmt"

// systemPromptTemplate is the agent's operating prompt. The skill
// catalog XML is interpolated at turn time so a rescan is picked up
// without restarting the process.
const systemPromptTemplate = `You are an AI Sales Development Representative (SDR) agent. Your role is to help with:

1. **Company Research**: Research companies to understand their business,
   technology stack, funding, and key decision makers.
2. **Prospect Research**: Research individual prospects to understand their
   role, background, and interests.
3. **Email Composition**: Write personalized outreach emails based on research.
4. **Lead Qualification**: Evaluate and score leads based on fit criteria.

## Available Skills

You have access to specialized skills that provide detailed instructions for
specific tasks. When you need guidance on a complex task, use the ` + "`read_skill`" + `
tool to load the relevant skill instructions.

%s

## Tools Available

- **web_search**: Search the web for information about companies, people, or topics
- **send_email**: Send an email to a prospect
- **read_skill**: Load detailed instructions from a skill

## Guidelines

1. Always research before reaching out - personalization is key
2. Keep emails concise and value-focused
3. Reference specific details from your research
4. Be professional but conversational
5. Focus on the prospect's needs, not your product features

When a user asks you to research a company or prospect, use the web_search tool
to gather information. When composing emails, reference the email-composer skill
for best practices.`

func (a *Agent) buildSystemPrompt() string {
	if a.systemPrompt != "" {
		return a.systemPrompt
	}
	return fmt.Sprintf(systemPromptTemplate, a.registry.Catalog())
}

// researchCompanyPrompt expands a company name into a full research
// brief for the model.
func researchCompanyPrompt(company string) string {
	return fmt.Sprintf(`Research the company %q thoroughly.

Please find and summarize:
1. Company overview (what they do, industry, size)
2. Recent news and developments
3. Key products or services
4. Technology stack (if detectable)
5. Key decision makers (C-suite, VP-level)
6. Any recent funding or financial news

Provide a comprehensive research report that would help an SDR prepare for outreach.`, company)
}

func researchProspectPrompt(prospect, company string) string {
	context := ""
	if company != "" {
		context = fmt.Sprintf(" at %s", company)
	}
	return fmt.Sprintf(`Research the prospect %q%s thoroughly.

Please find and summarize:
1. Current role and responsibilities
2. Professional background and experience
3. Education and certifications
4. Recent public activity (posts, articles, speaking)
5. Professional interests and focus areas
6. Any personal details that could help personalize outreach

Provide a comprehensive prospect profile that would help craft a personalized outreach message.`, prospect, context)
}
