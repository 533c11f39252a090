package domain

// Speaker selects who takes a turn: the bot under the rotation cursor, or a
// bot named explicitly by the caller. The zero value is Rotation.
type Speaker struct {
	botID string
}

// Rotation picks the bot at the session cursor.
func Rotation() Speaker { return Speaker{} }

// Explicit picks botID regardless of the cursor.
func Explicit(botID string) Speaker { return Speaker{botID: botID} }

// SpeakerFromID maps an optional bot id to a Speaker; empty means Rotation.
func SpeakerFromID(botID string) Speaker {
	if botID == "" {
		return Rotation()
	}
	return Explicit(botID)
}

// BotID reports the explicitly requested bot, if any.
func (s Speaker) BotID() (string, bool) {
	return s.botID, s.botID != ""
}

// IsExplicit reports whether the caller named the bot.
func (s Speaker) IsExplicit() bool { return s.botID != "" }
