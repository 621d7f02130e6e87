package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/domain"
	"portfolio-backend/internal/integrations/gemini"
	"portfolio-backend/internal/repository"
)

const (
	defaultMaxContext = 20
	defaultMaxMessage = 2000
	maxToolRounds     = 4
)

// LLMClient executes one model call with the agent's run settings.
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage, settings domain.RunSettings) (domain.ChatResult, error)
}

// SessionStore persists per-conversation turn history.
type SessionStore interface {
	GetHistory(ctx context.Context, conversationID string, limit int) ([]domain.Turn, error)
	SaveTurn(ctx context.Context, turn domain.Turn) error
	TurnCount(ctx context.Context, conversationID string) (int, error)
	Close() error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// agentRuntime is the lazily built triple: model client, session store, and
// the run settings the agent is bound to.
type agentRuntime struct {
	llm      LLMClient
	store    SessionStore
	settings domain.RunSettings
}

// ChatService executes conversational turns against the portfolio agent.
// The underlying client and session store are built on first use so a
// missing credential degrades the chat endpoint instead of crashing the
// process at startup.
type ChatService struct {
	geminiCfg       config.GeminiConfig
	sessionDBPath   string
	maxMessageLen   int
	maxContextTurns int
	maxConvTurns    int
	instructions    string
	tools           map[string]Tool

	// Build hooks, overridable in tests.
	buildClient func() (LLMClient, error)
	openStore   func() (SessionStore, error)

	mu    sync.RWMutex
	agent *agentRuntime
}

type ChatInput struct {
	Message        string
	ConversationID string
}

type ChatOutput struct {
	Answer         string
	ConversationID string
}

// NewChatService creates a ChatService bound to the fixed portfolio
// instructions and tool. Nothing is connected until the first turn runs.
func NewChatService(cfg *config.Config) (*ChatService, error) {
	if cfg == nil {
		return nil, errors.New("usecase: config must not be nil")
	}
	maxMessage := cfg.MaxMessageLength
	if maxMessage <= 0 {
		maxMessage = defaultMaxMessage
	}
	maxContext := cfg.MaxContextTurns
	if maxContext <= 0 {
		maxContext = defaultMaxContext
	}

	tool := portfolioInfoTool()
	s := &ChatService{
		geminiCfg:       cfg.Gemini,
		sessionDBPath:   cfg.SessionDBPath,
		maxMessageLen:   maxMessage,
		maxContextTurns: maxContext,
		maxConvTurns:    cfg.MaxConversationTurns,
		instructions:    agentInstructions(),
		tools:           map[string]Tool{tool.Definition.Function.Name: tool},
	}
	s.buildClient = func() (LLMClient, error) {
		return gemini.NewClient(s.geminiCfg.APIKey, gemini.WithBaseURL(s.geminiCfg.BaseURL))
	}
	s.openStore = func() (SessionStore, error) {
		return repository.NewSQLite(s.sessionDBPath)
	}
	return s, nil
}

// Chat executes one conversational turn: validate, obtain the cached agent,
// run the tool loop, persist the completed turn.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.maxMessageLen {
		return ChatOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	agent, err := s.ensureAgent()
	if err != nil {
		return ChatOutput{}, newError(ErrorConfig, "agent_init_error", err)
	}

	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = newUUID()
	}

	if s.maxConvTurns > 0 && strings.TrimSpace(in.ConversationID) != "" {
		turns, err := agent.store.TurnCount(ctx, convID)
		if err != nil {
			return ChatOutput{}, newError(ErrorInternal, "session_turn_count_error", err)
		}
		if turns >= s.maxConvTurns {
			return ChatOutput{}, newError(ErrorInvalidInput, "conversation_turn_limit", nil)
		}
	}

	history, err := agent.store.GetHistory(ctx, convID, s.maxContextTurns)
	if err != nil {
		return ChatOutput{}, newError(ErrorInternal, "session_history_error", err)
	}

	answer, err := s.runTurn(ctx, agent, buildPromptMessages(s.instructions, history, message))
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == 429 {
			return ChatOutput{}, newError(ErrorRateLimited, "gemini_rate_limited", err)
		}
		var uerr *Error
		if errors.As(err, &uerr) {
			return ChatOutput{}, err
		}
		return ChatOutput{}, newError(ErrorUpstream, "gemini_error", err)
	}

	turn := domain.Turn{
		ConversationID: convID,
		Question:       message,
		Answer:         answer,
		CreatedAt:      time.Now().UTC(),
	}
	if err := agent.store.SaveTurn(ctx, turn); err != nil {
		return ChatOutput{}, newError(ErrorInternal, "session_write_error", err)
	}

	return ChatOutput{
		Answer:         answer,
		ConversationID: convID,
	}, nil
}

// runTurn invokes the model, executing requested tools and feeding results
// back until the model produces final text or the round budget runs out.
func (s *ChatService) runTurn(ctx context.Context, agent *agentRuntime, messages []domain.ChatMessage) (string, error) {
	for round := 0; round < maxToolRounds; round++ {
		result, err := agent.llm.Chat(ctx, s.geminiCfg.Model, messages, agent.settings)
		if err != nil {
			return "", err
		}
		if len(result.ToolCalls) == 0 {
			return result.Content, nil
		}

		messages = append(messages, domain.ChatMessage{
			Role:      "assistant",
			Content:   result.Content,
			ToolCalls: result.ToolCalls,
		})
		for _, call := range result.ToolCalls {
			messages = append(messages, domain.ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    s.executeTool(ctx, call),
			})
		}
	}
	return "", newError(ErrorUpstream, "tool_round_limit", nil)
}

// executeTool runs a requested tool. Failures are reported back to the model
// as the tool result so the turn can still complete.
func (s *ChatService) executeTool(ctx context.Context, call domain.ToolCall) string {
	tool, ok := s.tools[call.Function.Name]
	if !ok {
		return "error: unknown tool " + call.Function.Name
	}
	out, err := tool.Run(ctx, call.Function.Arguments)
	if err != nil {
		return "error: " + err.Error()
	}
	return out
}

// ensureAgent returns the cached runtime triple, building it on first call.
// On failure the cache stays empty so a later call may retry; under
// concurrent first calls exactly one usable runtime ends up cached.
func (s *ChatService) ensureAgent() (*agentRuntime, error) {
	s.mu.RLock()
	if s.agent != nil {
		agent := s.agent
		s.mu.RUnlock()
		return agent, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agent != nil {
		return s.agent, nil
	}

	if strings.TrimSpace(s.geminiCfg.APIKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is not configured")
	}

	llm, err := s.buildClient()
	if err != nil {
		return nil, err
	}
	store, err := s.openStore()
	if err != nil {
		return nil, err
	}

	defs := make([]domain.ToolDefinition, 0, len(s.tools))
	for _, t := range s.tools {
		defs = append(defs, t.Definition)
	}

	s.agent = &agentRuntime{
		llm:   llm,
		store: store,
		settings: domain.RunSettings{
			Tools:       defs,
			MaxTokens:   s.geminiCfg.MaxTokens,
			Temperature: s.geminiCfg.Temperature,
		},
	}
	return s.agent, nil
}

// Close releases the session store if the agent was ever built.
func (s *ChatService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.agent == nil {
		return nil
	}
	err := s.agent.store.Close()
	s.agent = nil
	return err
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
