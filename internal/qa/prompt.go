package qa

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
)

// systemMessage frames the model as a document-grounded legal assistant.
const systemMessage = "You are a helpful legal assistant that answers questions based on provided legal documents."

// FallbackAnswer is returned without calling the model when retrieval finds
// nothing relevant.
const FallbackAnswer = "I couldn't find any relevant information in the legal documents to answer your question."

// promptTemplate wraps the retrieved context and the question. The two %s
// verbs are the context block and the question.
const promptTemplate = `You are a legal expert assistant. Use ONLY the following retrieved paragraphs to answer the user's question. If the answer cannot be found in the provided context, say so clearly.

<context>
%s
</context>

Question: %s

Please provide a clear, accurate answer based solely on the information provided above.`

// buildContext labels each document with its 1-based rank.
func buildContext(docs []string) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = fmt.Sprintf("[Document %d]:\n%s", i+1, d)
	}
	return strings.Join(parts, "\n\n")
}

// BuildPrompt renders the user prompt for the given documents and question.
func BuildPrompt(docs []string, question string) string {
	return fmt.Sprintf(promptTemplate, buildContext(docs), question)
}

// buildMessages returns the system and user messages sent to the model.
func buildMessages(docs []string, question string) []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(systemMessage),
		schema.UserMessage(BuildPrompt(docs, question)),
	}
}
