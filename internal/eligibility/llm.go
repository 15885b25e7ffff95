package eligibility

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"dailytrivia/internal/llm"

	"google.golang.org/genai"
)

// LLMClient interface for clue screening
type LLMClient interface {
	GenerateText(ctx context.Context, prompt string, options llm.TextGenerationOptions) (string, error)
}

// LLMClassifier classifies clues with an LLM using structured output.
type LLMClassifier struct {
	llmClient LLMClient
	pacer     *Pacer
}

// NewLLMClassifier creates a classifier. The pacer is shared with the
// rewriter when both talk to the same service.
func NewLLMClassifier(llmClient LLMClient, pacer *Pacer) *LLMClassifier {
	return &LLMClassifier{llmClient: llmClient, pacer: pacer}
}

// ClassificationSchema is the Gemini response schema for clue classification.
func ClassificationSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"shouldDisqualify": {
				Type:        genai.TypeBoolean,
				Description: "True when the clue cannot be answered without seeing its category (wordplay, anagrams, letter games, quoted hints)",
			},
			"dependsOnCategory": {
				Type:        genai.TypeBoolean,
				Description: "True when the clue is answerable but refers to its category or uses theme framing that should be rewritten",
			},
			"reason": {
				Type:        genai.TypeString,
				Description: "One short sentence explaining the decision",
			},
		},
		Required: []string{"shouldDisqualify", "dependsOnCategory", "reason"},
	}
}

// Classify asks the LLM whether the clue survives out of context.
func (c *LLMClassifier) Classify(ctx context.Context, req Request) (Verdict, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return Verdict{}, fmt.Errorf("classifier pacing: %w", err)
	}

	response, err := c.llmClient.GenerateText(ctx, buildClassificationPrompt(req), llm.TextGenerationOptions{
		Temperature:    0.1,
		MaxTokens:      300,
		ResponseSchema: ClassificationSchema(),
	})
	if err != nil {
		return Verdict{}, fmt.Errorf("failed to classify clue: %w", err)
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(llm.StripCodeFence(response)), &verdict); err != nil {
		return Verdict{}, fmt.Errorf("failed to parse classification response: %w\nResponse: %s", err, response)
	}
	return verdict, nil
}

func buildClassificationPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are screening trivia clues for a daily quiz. Each clue will be shown WITHOUT its original category.\n\n")

	sb.WriteString("CLUE:\n")
	sb.WriteString(fmt.Sprintf("Category: %s\n", req.Category))
	sb.WriteString(fmt.Sprintf("Clue: %s\n", req.Clue))
	sb.WriteString(fmt.Sprintf("Answer: %s\n\n", req.Answer))

	sb.WriteString("TASK:\n")
	sb.WriteString("1. shouldDisqualify = true if the clue cannot be solved without the category: anagrams, rhyme time,\n")
	sb.WriteString("   before & after, letter or spelling games, quoted-letter hints, or any wordplay defined by the category.\n")
	sb.WriteString("2. dependsOnCategory = true if the clue is solvable but mentions the category, says \"this category\",\n")
	sb.WriteString("   or uses first-person theme framing (\"we'll give you...\", \"each answer...\").\n")
	sb.WriteString("3. Otherwise both are false.\n\n")

	sb.WriteString("Be conservative: only disqualify when the clue is truly unanswerable out of context.\n")
	sb.WriteString("Provide your response as structured JSON following the schema.\n")

	return sb.String()
}

// LLMRewriter rewrites category-dependent clues with an LLM.
type LLMRewriter struct {
	llmClient LLMClient
	pacer     *Pacer
}

// NewLLMRewriter creates a rewriter.
func NewLLMRewriter(llmClient LLMClient, pacer *Pacer) *LLMRewriter {
	return &LLMRewriter{llmClient: llmClient, pacer: pacer}
}

// RewriteSchema is the Gemini response schema for clue rewrites.
func RewriteSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"clue": {
				Type:        genai.TypeString,
				Description: "The rewritten clue text",
			},
		},
		Required: []string{"clue"},
	}
}

// Rewrite returns clue text with the same answer and difficulty that no
// longer relies on the category. A rewrite that gives away the answer is
// rejected.
func (r *LLMRewriter) Rewrite(ctx context.Context, req Request) (string, error) {
	if err := r.pacer.Wait(ctx); err != nil {
		return "", fmt.Errorf("rewriter pacing: %w", err)
	}

	response, err := r.llmClient.GenerateText(ctx, buildRewritePrompt(req), llm.TextGenerationOptions{
		Temperature:    0.4,
		MaxTokens:      400,
		ResponseSchema: RewriteSchema(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to rewrite clue: %w", err)
	}

	var parsed struct {
		Clue string `json:"clue"`
	}
	if err := json.Unmarshal([]byte(llm.StripCodeFence(response)), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse rewrite response: %w\nResponse: %s", err, response)
	}

	text := strings.TrimSpace(parsed.Clue)
	if text == "" {
		return "", fmt.Errorf("rewrite response was empty")
	}
	if answer := strings.TrimSpace(req.Answer); answer != "" && strings.Contains(strings.ToLower(text), strings.ToLower(answer)) {
		return "", fmt.Errorf("rewrite reveals the answer %q", answer)
	}
	return text, nil
}

func buildRewritePrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("Rewrite this trivia clue so it can be understood WITHOUT seeing its category.\n\n")

	sb.WriteString(fmt.Sprintf("Category: %s\n", req.Category))
	sb.WriteString(fmt.Sprintf("Clue: %s\n", req.Clue))
	sb.WriteString(fmt.Sprintf("Answer: %s\n\n", req.Answer))

	sb.WriteString("Guidelines:\n")
	sb.WriteString("- Keep the same answer and roughly the same difficulty\n")
	sb.WriteString("- Remove references to the category and theme framing such as \"this category\" or \"we'll give you\"\n")
	sb.WriteString("- Fold any context the category provided into the clue itself\n")
	sb.WriteString("- Never include the answer in the clue\n")
	sb.WriteString("- Keep the clue to one or two sentences\n\n")

	sb.WriteString("Provide your response as structured JSON following the schema.\n")

	return sb.String()
}
