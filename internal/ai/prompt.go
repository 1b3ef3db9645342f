package ai

import (
	"strings"

	"github.com/flavian-jumba/peerly-BE/internal/models"
)

// SystemPrompt defines the companion's behavior: emotional support only,
// no general knowledge, no diagnoses.
const SystemPrompt = `You are Peerly, a compassionate and empathetic AI therapy assistant for a mental health support app. Your ONLY purpose is to provide mental health support and emotional guidance.

CRITICAL RULES - NEVER BREAK THESE:
1. You are a THERAPIST - respond ONLY to emotional and mental health needs
2. DO NOT provide historical facts, definitions, or general knowledge
3. DO NOT search the web or provide information unrelated to mental health
4. DO NOT explain names, words, or concepts unless directly related to therapy
5. If someone says their name or introduces themselves, respond warmly and ask about their feelings
6. ALWAYS focus on emotions, feelings, mental well-being, and therapeutic support
7. NEVER provide medical diagnoses or prescribe medications
8. Maintain a warm, caring, and supportive tone in every response

YOUR THERAPEUTIC APPROACH:
- Listen attentively with empathy and without judgment
- Validate users feelings and experiences
- Ask open-ended questions to better understand their emotional state
- Offer evidence-based coping strategies for stress, anxiety, depression, etc.
- Use therapeutic techniques like CBT, mindfulness, grounding exercises
- Recognize crisis situations and recommend professional help when needed
- Keep responses conversational, warm, and focused on the user well-being

When you have access to therapist information, you can recommend specific therapists based on their specialties. Include their name, specialty, and contact information.

Always be warm, supportive, and encouraging. Keep responses conversational and appropriately concise unless the user needs more detailed guidance.`

// HistoryWindow is how many prior exchanges are replayed to the provider.
const HistoryWindow = 10

// triggerKeywords switch the therapist directory into the system prompt when
// found in the latest prompt or recent history.
var triggerKeywords = []string{
	"suicide", "kill myself", "end it all", "no reason to live",
	"therapist", "professional help", "counselor", "psychiatrist",
	"severe", "crisis", "emergency", "can't cope", "overwhelmed",
	"self-harm", "hurt myself", "depressed", "anxiety attack",
}

// Exchange is one stored prompt/response pair.
type Exchange struct {
	Prompt   string
	Response string
}

// NeedsTherapistContext reports whether the latest prompt or the recent
// history suggests professional help should be offered.
func NeedsTherapistContext(prompt string, history []Exchange) bool {
	var sb strings.Builder
	sb.WriteString(prompt)
	for _, ex := range history {
		sb.WriteByte(' ')
		sb.WriteString(ex.Prompt)
	}
	text := strings.ToLower(sb.String())

	for _, kw := range triggerKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// TherapistContext renders the therapist directory for the system prompt.
// Empty directory renders to an empty string.
func TherapistContext(therapists []models.Therapist) string {
	if len(therapists) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\nAVAILABLE THERAPISTS:\n")
	sb.WriteString("You can recommend the following licensed therapists when appropriate:\n\n")
	for _, t := range therapists {
		sb.WriteString("- " + t.Name + "\n")
		sb.WriteString("  Specialty: " + t.Specialty + "\n")
		if t.Bio != "" {
			sb.WriteString("  About: " + t.Bio + "\n")
		}
		sb.WriteString("  Contact: " + t.PhoneNumber + " | " + t.Email + "\n\n")
	}
	return sb.String()
}

// BuildMessages assembles the provider message list: system prompt first,
// then the rolling history as alternating user/assistant turns, then the
// current prompt. Only the last HistoryWindow exchanges are kept.
func BuildMessages(system string, history []Exchange, prompt string) []Message {
	if len(history) > HistoryWindow {
		history = history[len(history)-HistoryWindow:]
	}

	msgs := make([]Message, 0, 2*len(history)+2)
	msgs = append(msgs, Message{Role: "system", Content: system})
	for _, ex := range history {
		msgs = append(msgs, Message{Role: "user", Content: ex.Prompt})
		msgs = append(msgs, Message{Role: "assistant", Content: ex.Response})
	}
	msgs = append(msgs, Message{Role: "user", Content: prompt})
	return msgs
}
