package prompt

import (
	"fmt"
	"strings"

	"github.com/papercomputeco/coursewise/pkg/retrieval"
)

const contentSystem = `You generate study content for a gamified learning app.
Use ONLY the course context provided. Do not introduce facts that are not in the context.
Respond with JSON only, matching the schema in the user message exactly. No prose, no markdown.`

// QuestionsInput configures a question generation prompt.
type QuestionsInput struct {
	TopicName  string
	Context    []retrieval.Chunk
	Count      int
	Difficulty string
}

// Questions builds a prompt asking for a JSON array of multiple-choice questions.
func Questions(in QuestionsInput) Prompt {
	count := max(in.Count, 1)
	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	var user strings.Builder
	user.WriteString(formatContext(in.Context, "Course context:"))
	fmt.Fprintf(&user, "\n\nWrite %d %s-difficulty multiple-choice questions about %s.\n", count, difficulty, topicLabel(in.TopicName))
	user.WriteString(`Return a JSON array where each element is:
{
  "question": string,
  "options": [string, string, string, string],
  "correctIndex": number (0-3),
  "explanation": string,
  "difficulty": "easy" | "medium" | "hard"
}`)

	return Prompt{System: contentSystem, User: user.String()}
}

// FlashcardsInput configures a flashcard generation prompt.
type FlashcardsInput struct {
	TopicName string
	Context   []retrieval.Chunk
	Count     int
}

// Flashcards builds a prompt asking for a JSON array of flashcards.
func Flashcards(in FlashcardsInput) Prompt {
	count := max(in.Count, 1)

	var user strings.Builder
	user.WriteString(formatContext(in.Context, "Course context:"))
	fmt.Fprintf(&user, "\n\nWrite %d flashcards about %s.\n", count, topicLabel(in.TopicName))
	user.WriteString(`Return a JSON array where each element is:
{
  "front": string (a term or short question),
  "back": string (a concise answer),
  "hint": string
}`)

	return Prompt{System: contentSystem, User: user.String()}
}

// BossInput configures a boss narrative prompt.
type BossInput struct {
	TopicName string
	Context   []retrieval.Chunk
	Level     int
}

// BossNarrative builds a prompt asking for a single JSON object describing a
// topic boss character.
func BossNarrative(in BossInput) Prompt {
	var user strings.Builder
	user.WriteString(formatContext(in.Context, "Course context:"))
	fmt.Fprintf(&user, "\n\nCreate a level %d boss character themed on %s. "+
		"Its challenge must test the concepts in the context.\n", max(in.Level, 1), topicLabel(in.TopicName))
	user.WriteString(`Return a JSON object:
{
  "name": string,
  "intro": string (2-3 sentences),
  "challenge": string,
  "victoryLine": string,
  "defeatLine": string
}`)

	return Prompt{System: contentSystem, User: user.String()}
}

func topicLabel(name string) string {
	if strings.TrimSpace(name) == "" {
		return "this topic"
	}
	return fmt.Sprintf("%q", name)
}
