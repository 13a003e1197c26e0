package model

import "strings"

const (
	RoleUser      = "user"
	RoleModel     = "model"
	RoleAssistant = "assistant"
)

type Part struct {
	Text string `json:"text"`
}

// Turn is one entry of a chat history as the client sends it.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Text joins the non-empty parts of the turn with newlines.
func (t Turn) Text() string {
	texts := make([]string, 0, len(t.Parts))
	for _, p := range t.Parts {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, "\n")
}

// IsModel reports whether the turn was produced by the model.
func (t Turn) IsModel() bool {
	role := strings.ToLower(strings.TrimSpace(t.Role))
	return role == RoleModel || role == RoleAssistant
}

func NewModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{{Text: text}}}
}
