// Package usecases - prompt.go assembles the generation prompt.
package usecases

import (
	"fmt"
	"strings"

	"spendchat/internal/domain/entities"
)

// historyWindow is how many trailing conversation turns make it into the prompt.
const historyWindow = 3

// ComposePrompt builds the generation prompt from retrieved context, recent
// conversation history and the question. Pure function: output depends only
// on its inputs. The history block is omitted entirely when history is empty;
// otherwise only the last historyWindow turns are rendered.
func ComposePrompt(query string, contexts []string, history []entities.ConversationTurn) string {
	var sb strings.Builder

	sb.WriteString("You are an AI assistant analyzing commodity procurement spend data. ")
	sb.WriteString("Answer the user's question accurately using ONLY the provided context.\n\n")

	if len(history) > 0 {
		sb.WriteString("Previous conversation:\n")
		start := len(history) - historyWindow
		if start < 0 {
			start = 0
		}
		for _, turn := range history[start:] {
			sb.WriteString(turn.Role)
			sb.WriteString(": ")
			sb.WriteString(turn.Content)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	sb.WriteString("CONTEXT INFORMATION:\n")
	for i, ctx := range contexts {
		fmt.Fprintf(&sb, "Context %d: %s\n", i+1, ctx)
	}
	sb.WriteString("\n")

	sb.WriteString("INSTRUCTIONS:\n")
	sb.WriteString("1. Answer based ONLY on the provided context\n")
	sb.WriteString("2. Be specific with numbers (quantities in kg, spend in USD, suppliers, commodities)\n")
	sb.WriteString("3. Format numbers clearly (e.g., $1,234.56, 1,000 kg)\n")
	sb.WriteString("4. If the context doesn't have the information, say so\n")
	sb.WriteString("5. Be concise but complete\n\n")

	sb.WriteString("USER QUESTION: ")
	sb.WriteString(query)
	sb.WriteString("\n\nANSWER:")

	return sb.String()
}
