// Package prompt builds the system and user prompts for each pedagogical mode.
// Every prompt confines the model to the supplied curriculum context, and the
// assessment prompts forbid revealing graded answers.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/papercomputeco/coursewise/pkg/retrieval"
)

// Prompt is a system and user prompt pair.
type Prompt struct {
	System string
	User   string
}

// Input is everything a tutoring or assessment prompt needs.
type Input struct {
	Query        string
	Context      []retrieval.Chunk
	StudentLevel string

	// MasteryScore is the student's proficiency on the topic, 0 to 100.
	MasteryScore float64
}

// Build returns the prompt pair for mode. It holds no state between calls.
func Build(mode Mode, in Input) (Prompt, error) {
	switch mode {
	case ModeLearning:
		return learning(in), nil
	case ModePractice:
		return practice(in), nil
	case ModeAssessmentSoft:
		return assessmentSoft(in), nil
	case ModeAssessmentStrict:
		return assessmentStrict(in), nil
	default:
		return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownMode, string(mode))
	}
}

// MasteryTier is a mastery-score bracket.
type MasteryTier string

const (
	TierBeginner MasteryTier = "beginner"
	TierBridging MasteryTier = "bridging"
	TierModerate MasteryTier = "moderate"
	TierAdvanced MasteryTier = "advanced"
)

// TierFor maps a mastery score to its bracket.
func TierFor(score float64) MasteryTier {
	switch {
	case score < 30:
		return TierBeginner
	case score < 60:
		return TierBridging
	case score < 80:
		return TierModerate
	default:
		return TierAdvanced
	}
}

var tierGuidance = map[MasteryTier]string{
	TierBeginner: "The student is just starting this topic. Define every term you use, build from everyday " +
		"intuition, and move one small step at a time.",
	TierBridging: "The student knows the basics but has gaps. Connect the new idea to what they already " +
		"know and point out common misconceptions.",
	TierModerate: "The student has a working understanding. Be precise, skip the most basic definitions, " +
		"and show how the pieces fit together.",
	TierAdvanced: "The student has strong mastery. Be concise and rigorous and focus on subtleties and edge cases.",
}

func masteryGuidance(score float64) string {
	var b strings.Builder
	b.WriteString(tierGuidance[TierFor(score)])
	switch {
	case score < 40:
		b.WriteString("\nSimplify your language and add concrete examples.")
	case score > 80:
		b.WriteString("\nAdvanced nuance and extensions beyond the basics are welcome.")
	}
	return b.String()
}

func learning(in Input) Prompt {
	level := in.StudentLevel
	if level == "" {
		level = "unspecified"
	}

	system := fmt.Sprintf(`You are a curriculum tutor. Answer ONLY from the course context provided in the user message.

Rules:
- Use only the supplied context. Do not use outside knowledge.
- If the context does not contain enough information to answer, say so plainly and suggest what the student could ask their instructor.
- Never invent facts, citations or sources.
- Adapt vocabulary and depth to the student: level %s, mastery %d/100.
- Mark key concepts in **bold**.
- Use short bullet points for key ideas and end with one suggestion to practice.`, level, masteryPercent(in.MasteryScore))

	var user strings.Builder
	user.WriteString(formatContext(in.Context, "Course context (ranked by relevance):"))
	user.WriteString("\n\nStudent guidance:\n")
	user.WriteString(masteryGuidance(in.MasteryScore))
	user.WriteString("\n\nStudent question:\n")
	user.WriteString(strings.TrimSpace(in.Query))

	return Prompt{System: system, User: user.String()}
}

func practice(in Input) Prompt {
	system := `You are a Socratic practice coach. The student is working on a practice problem and must reach the answer themselves.

Rules:
- NEVER give the final answer or a complete worked solution.
- Respond with leveled hints, stopping at the lowest level that helps:
  Level 1: point in the right direction.
  Level 2: name the key concept involved.
  Level 3: sketch a partial framework without completing it.
- Ask one guiding question at the end.
- Base hints only on the course context. If it does not cover the problem, say so.`

	var user strings.Builder
	user.WriteString(formatContext(in.Context,
		"Course context (for your reference only, do not reveal directly):"))
	user.WriteString("\n\nStudent guidance:\n")
	user.WriteString(masteryGuidance(in.MasteryScore))
	user.WriteString("\n\nStudent's practice question:\n")
	user.WriteString(strings.TrimSpace(in.Query))

	return Prompt{System: system, User: user.String()}
}

func assessmentSoft(in Input) Prompt {
	system := `The student is taking a graded assessment. You may offer only general conceptual encouragement.

Rules:
- Do NOT reveal answers, options, formulas, definitions or steps that would solve the question.
- Do NOT confirm or reject any proposed answer.
- You may remind the student which general area of the course to think about.
- Reply in 2 to 3 short sentences.`

	var user strings.Builder
	if len(in.Context) > 0 {
		user.WriteString(formatContext(in.Context,
			"Course context (for orientation only, never quote or paraphrase it):"))
		user.WriteString("\n\n")
	}
	user.WriteString("Student message during the assessment:\n")
	user.WriteString(strings.TrimSpace(in.Query))

	return Prompt{System: system, User: user.String()}
}

func assessmentStrict(in Input) Prompt {
	system := `The student is in an active exam with strict mode enabled.

Rules:
- You cannot assist with exam content in any way.
- Reply that you cannot assist during an active exam.
- You may add one sentence of generic encouragement.
- Do not discuss the question, the subject or any hints.`

	user := "Student message during the exam:\n" + strings.TrimSpace(in.Query)
	return Prompt{System: system, User: user}
}

// formatContext renders ranked chunks with their relevance percentage.
func formatContext(chunks []retrieval.Chunk, heading string) string {
	if len(chunks) == 0 {
		return heading + "\n(No relevant course material was found for this question.)"
	}

	var b strings.Builder
	b.WriteString(heading)
	for i, c := range chunks {
		fmt.Fprintf(&b, "\n\n[Source %d | Relevance: %d%%]\n%s", i+1, relevancePercent(c.Score), strings.TrimSpace(c.Text))
	}
	return b.String()
}

func relevancePercent(score float32) int {
	return int(math.Round(float64(score) * 100))
}

func masteryPercent(score float64) int {
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
