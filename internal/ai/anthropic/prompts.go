package anthropic

import (
	"fmt"

	"github.com/elijahtye/Tonr/internal/domain"
)

// tonalityGuidance describes what each tonality should sound like so the
// model scores against a concrete target rather than a label.
var tonalityGuidance = map[domain.Tonality]string{
	domain.TonalityNeutral:   "Even, measured delivery. Balanced word choice without emotional loading. Clear structure, steady pacing, no filler escalation.",
	domain.TonalityAssertive: "Confident, direct delivery. Strong declarative sentences, active voice, clear positions stated without hedging or apology.",
	domain.TonalityComposed:  "Calm, unhurried delivery under pressure. Deliberate pacing, controlled phrasing, no rushed or reactive language.",
}

// buildScoringPrompt creates the prompt for evaluating a speech transcript
// against a target tonality
func buildScoringPrompt(transcript string, tonality domain.Tonality) string {
	guidance := tonalityGuidance[tonality]

	prompt := fmt.Sprintf(`You are an expert speech coach evaluating a practice speech transcript. The speaker is practicing a "%s" tonality.

Target tonality characteristics:
%s

Evaluate how well the transcript achieves the target tonality. Consider:
1. Word choice and phrasing relative to the target
2. Sentence structure and rhythm
3. Use of hedging, filler, or emotional loading that undermines the target
4. Overall consistency across the transcript

Score on a scale of 1 to 100, where:
- 1-30: Transcript works against the target tonality
- 31-60: Mixed; some passages hit the target, others miss
- 61-85: Mostly consistent with the target tonality
- 86-100: Strong, sustained execution of the target tonality

Provide 2-5 feedback points. Each point must be specific and actionable: quote or paraphrase the passage it refers to and say what to change.

Transcript to evaluate:
---
%s
---

**Response Format:**
Return your evaluation as a JSON object with this exact structure:

{
  "rating": 72,
  "feedback": [
    "First specific, actionable coaching point",
    "Second specific, actionable coaching point"
  ]
}

**Important:** Return ONLY the JSON object, no additional text or explanation.`, tonality, guidance, transcript)

	return prompt
}
