package chat

import (
	"fmt"
	"regexp"
	"strings"
)

// ContextWindowChars caps how much document text is included in a
// generation prompt. Longer documents are cut off and marked.
const ContextWindowChars = 6000

const truncationMarker = "..."

// DefaultSystemPrompt is used when an upload carries no custom instruction.
const DefaultSystemPrompt = `You are an AI assistant specialized in answering questions based only on the content of an uploaded document.

Instructions:
1. Context: A document has been uploaded, and you must read and understand it.
2. Answering Rules:
   - Base every answer strictly on the document's content.
   - If the document does not contain the requested information, reply clearly: "The document does not provide that information."
   - Always include page references (if available), but place them at the end of the answer.
   - Present answers in bullet points, numbered lists, or short structured summaries for clarity.
3. Style:
   - Keep responses concise, clear, and factual.
   - Do not make assumptions or use outside knowledge.
   - Highlight direct evidence from the document wherever possible.`

var (
	spaceRun   = regexp.MustCompile(`[^\S\n]+`)
	newlineRun = regexp.MustCompile(`(?:\n[^\S\n]*)+`)
)

// CleanText normalizes extracted document text: runs of spaces and tabs
// collapse to a single space, runs of newlines to a single newline, and
// leading/trailing whitespace is trimmed.
func CleanText(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = newlineRun.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// BuildPrompt assembles the grounded generation prompt from the system
// instruction, the document context window and the verbatim user question.
func BuildPrompt(systemPrompt, documentText, userMessage string) string {
	context := documentText
	if len(context) > ContextWindowChars {
		context = context[:ContextWindowChars] + truncationMarker
	}

	return fmt.Sprintf(`%s

Document Content:
%s

User Question: %s

Please answer the user's question based on the document content provided above.`, systemPrompt, context, userMessage)
}
