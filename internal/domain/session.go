package domain

import "time"

// Bot is a conversation participant backed by an LLM provider.
type Bot struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Provider   Provider `json:"provider"`
	Credential string   `json:"-"`
	TokenLimit int      `json:"tokenLimit"`
}

// Message is one immutable entry in a session log. BotID and BotName are
// only set on assistant messages.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	BotID     string    `json:"botId,omitempty"`
	BotName   string    `json:"botName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserMessage builds a user-authored message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text, CreatedAt: time.Now()}
}

// AssistantMessage builds a message spoken by bot.
func AssistantMessage(bot Bot, text string) Message {
	return Message{
		Role:      RoleAssistant,
		Content:   text,
		BotID:     bot.ID,
		BotName:   bot.Name,
		CreatedAt: time.Now(),
	}
}

// Session is the conversation aggregate: a fixed roster, the message log and
// the rotation cursor naming whose turn is next.
type Session struct {
	ID        string    `json:"id"`
	Bots      []Bot     `json:"bots"`
	Messages  []Message `json:"messages"`
	Cursor    int       `json:"currentBotIndex"`
	CreatedAt time.Time `json:"createdAt"`
}

// BotIndex returns the roster position of botID, or -1.
func (s *Session) BotIndex(botID string) int {
	for i, b := range s.Bots {
		if b.ID == botID {
			return i
		}
	}
	return -1
}

// NextCursor returns the roster slot following index, wrapping around.
func (s *Session) NextCursor(index int) int {
	return (index + 1) % len(s.Bots)
}

// Clone returns a deep copy so callers can't mutate stored state.
func (s *Session) Clone() *Session {
	c := *s
	c.Bots = append([]Bot(nil), s.Bots...)
	c.Messages = append([]Message(nil), s.Messages...)
	return &c
}

// TurnResult is the normalized outcome of one bot turn.
type TurnResult struct {
	SessionID  string      `json:"sessionId"`
	Reply      BotResponse `json:"botResponse"`
	NextCursor int         `json:"nextBotIndex"`
}

// BotResponse carries the reply text and who said it.
type BotResponse struct {
	BotID   string `json:"botId"`
	BotName string `json:"botName"`
	Content string `json:"content"`
}

// PromptMessage is the provider-neutral shape handed to adapters.
type PromptMessage struct {
	Role    Role
	Content string
}
