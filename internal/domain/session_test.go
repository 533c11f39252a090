package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSession() *Session {
	return &Session{
		ID: "s1",
		Bots: []Bot{
			{ID: "a", Name: "A", Provider: ProviderOpenAI},
			{ID: "b", Name: "B", Provider: ProviderAnthropic},
			{ID: "c", Name: "C", Provider: ProviderDeepSeek},
		},
		Messages: []Message{UserMessage("topic")},
	}
}

func TestSessionBotIndex(t *testing.T) {
	s := testSession()
	assert.Equal(t, 0, s.BotIndex("a"))
	assert.Equal(t, 2, s.BotIndex("c"))
	assert.Equal(t, -1, s.BotIndex("z"))
}

func TestSessionNextCursorWraps(t *testing.T) {
	s := testSession()
	assert.Equal(t, 1, s.NextCursor(0))
	assert.Equal(t, 2, s.NextCursor(1))
	assert.Equal(t, 0, s.NextCursor(2))

	solo := &Session{Bots: []Bot{{ID: "only"}}}
	assert.Equal(t, 0, solo.NextCursor(0))
}

func TestSessionClone(t *testing.T) {
	s := testSession()
	c := s.Clone()
	c.Messages = append(c.Messages, UserMessage("more"))
	c.Bots[0].Name = "changed"

	assert.Len(t, s.Messages, 1)
	assert.Equal(t, "A", s.Bots[0].Name)
}

func TestAssistantMessage(t *testing.T) {
	m := AssistantMessage(Bot{ID: "a", Name: "A"}, "hi")
	assert.Equal(t, RoleAssistant, m.Role)
	assert.Equal(t, "a", m.BotID)
	assert.Equal(t, "A", m.BotName)
	assert.False(t, m.CreatedAt.IsZero())

	u := UserMessage("hello")
	assert.Equal(t, RoleUser, u.Role)
	assert.Empty(t, u.BotID)
}

func TestSpeaker(t *testing.T) {
	_, explicit := Rotation().BotID()
	assert.False(t, explicit)
	assert.False(t, Speaker{}.IsExplicit())

	id, explicit := Explicit("b").BotID()
	assert.True(t, explicit)
	assert.Equal(t, "b", id)

	assert.False(t, SpeakerFromID("").IsExplicit())
	assert.True(t, SpeakerFromID("b").IsExplicit())
}

func TestProviderCallErrorUnwrap(t *testing.T) {
	cause := assert.AnError
	err := &ProviderCallError{Provider: ProviderOpenAI, Status: 401, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "[401]")

	noStatus := &ProviderCallError{Provider: ProviderDeepSeek, Cause: cause}
	assert.NotContains(t, noStatus.Error(), "[")
}
