package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"portfolio-backend/internal/domain"
)

// Tool pairs a wire-format definition with the function the agent executes
// when the model calls it.
type Tool struct {
	Definition domain.ToolDefinition
	Run        func(ctx context.Context, arguments string) (string, error)
}

const portfolioToolName = "get_portfolio_info"

// portfolioInfoTool returns static portfolio text the model may pull in
// mid-turn.
func portfolioInfoTool() Tool {
	return Tool{
		Definition: domain.ToolDefinition{
			Type: "function",
			Function: domain.FunctionDefinition{
				Name:        portfolioToolName,
				Description: "Returns information about Umer Ali's portfolio, skills, and expertise.",
				Parameters:  json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`),
			},
		},
		Run: func(_ context.Context, _ string) (string, error) {
			return portfolioInfo, nil
		},
	}
}

const portfolioInfo = `Umer Ali is a full-stack developer specializing in Next.js, TypeScript, React.js,
Tailwind CSS, Python, AI and Web Development.
He has expertise in problem-solving, debugging code, and concepts related to agent SDKs.`

// agentInstructions is the fixed system prompt the agent is bound to.
func agentInstructions() string {
	return strings.Join([]string{
		"You are a highly skilled AI assistant built by a full-stack developer named Umer Ali.",
		"You help users with Next.js, TypeScript, React.js, Tailwind CSS, Python, AI,",
		"Web Development, Problem-Solving, Debugging Code, and agent SDK concepts.",
		"",
		"Always explain answers clearly, simply, and in a friendly tone.",
		"If a user asks for code, provide clean and optimized code.",
		"If a user asks about AI or backend topics, give practical, real-world explanations.",
		"",
		"Your purpose is to act like a helpful coding buddy for learners and developers.",
	}, "\n")
}

// buildPromptMessages assembles one model call: instructions, completed prior
// turns as user/assistant pairs, then the current question.
func buildPromptMessages(instructions string, history []domain.Turn, question string) []domain.ChatMessage {
	messages := []domain.ChatMessage{
		{Role: "system", Content: instructions},
	}
	for _, t := range history {
		messages = append(messages, historyToPromptMessages(t)...)
	}
	messages = append(messages, domain.ChatMessage{
		Role:    "user",
		Content: question,
	})
	return messages
}

func historyToPromptMessages(t domain.Turn) []domain.ChatMessage {
	question := strings.TrimSpace(t.Question)
	answer := strings.TrimSpace(t.Answer)
	if question == "" || answer == "" {
		return nil
	}
	return []domain.ChatMessage{
		{Role: "user", Content: question},
		{Role: "assistant", Content: answer},
	}
}
