package insights

import (
	"encoding/json"
	"fmt"
	"strings"

	"fingenius-server/src/models"
)

type promptTransaction struct {
	Type        string `json:"type"`
	Category    string `json:"category"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Description string `json:"description,omitempty"`
}

// BuildPrompt serializes the window and wraps it in instructions shared by
// every backend.
func BuildPrompt(window []models.Transaction, question string) (string, error) {
	rows := make([]promptTransaction, 0, len(window))
	for _, t := range window {
		rows = append(rows, promptTransaction{
			Type:        t.Type,
			Category:    t.Category,
			Amount:      t.Amount.String(),
			Date:        t.Date.Format("2006-01-02"),
			Description: t.Description,
		})
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transactions: %w", err)
	}

	var b strings.Builder
	b.WriteString(`You are "FinGenius", a friendly and insightful AI financial co-pilot.
Analyze the following recent financial transactions.
`)
	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&b, "Answer the user's question using this data: %s\n", q)
	} else {
		b.WriteString("Provide three unique, actionable, and encouraging financial insights.\n")
	}
	b.WriteString(`- Each insight must start with a relevant emoji.
- Keep the tone positive and motivating.
- Format the response as plain text, one insight per line.

Here are the user's recent transactions (in JSON format):
`)
	b.Write(data)
	return b.String(), nil
}
