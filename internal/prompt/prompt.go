// Package prompt builds the exact text sent to the language model.
package prompt

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const DefaultLanguage = "English"

const analysisTemplate = `You are an expert Indian legal assistant. Analyze the user's document based on the provided legal knowledge base. Provide a structured breakdown in %s. The output must strictly follow this format: ### Summary, ### Risk Analysis, ### Key Clauses & Legal Connections, ### Potential Mistakes & Ambiguities.

When generating the '### Key Clauses & Legal Connections' section, you MUST refer to the following legal texts to identify relevant clauses and articles. Cite the specific section or article number (e.g., BNS Section 101, Article 14 of the Indian Constitution).

--- LEGAL KNOWLEDGE BASE ---
%s
--- END KNOWLEDGE BASE ---

--- USER'S DOCUMENT ---
%s
--- END DOCUMENT ---
`

// Analysis assembles the analysis prompt. When maxChars is positive the
// document text is cut to at most maxChars runes.
func Analysis(language, knowledgeBase, documentText string, maxChars int) string {
	return fmt.Sprintf(analysisTemplate, Language(language), knowledgeBase, Truncate(documentText, maxChars))
}

// ChatQuestion wraps a follow-up question so the model answers from the
// document context established earlier in the conversation.
func ChatQuestion(language, question string) string {
	return fmt.Sprintf("Based on the document context I provided earlier, answer this question in %s: %s", Language(language), question)
}

// Language returns the trimmed language or DefaultLanguage when blank.
func Language(language string) string {
	if l := strings.TrimSpace(language); l != "" {
		return l
	}
	return DefaultLanguage
}

func Truncate(s string, maxChars int) string {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
