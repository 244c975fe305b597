package inbox

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"mealer/internal/models"
)

// Triage produces a short review summary of the complaints in an
// inbox, so an admin can prioritize without reading every complaint.
type Triage struct {
	model llms.LLM
}

// NewTriage creates a triage assistant backed by the given model.
func NewTriage(model llms.LLM) *Triage {
	return &Triage{model: model}
}

// Summarize asks the model for a prioritized summary of the inbox.
func (t *Triage) Summarize(ctx context.Context, in *AdminInbox) (string, error) {
	if t.model == nil {
		return "", fmt.Errorf("no model configured")
	}
	complaints := in.Complaints()
	if len(complaints) == 0 {
		return "No complaints to review.", nil
	}

	// Oldest first so the model sees complaints in filing order.
	sort.Slice(complaints, func(i, j int) bool {
		return complaints[i].Date.Before(complaints[j].Date)
	})

	prompt := buildTriagePrompt(complaints)
	summary, err := t.model.Call(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to summarize complaints: %w", err)
	}
	return summary, nil
}

func buildTriagePrompt(complaints []*models.Complaint) string {
	var sb strings.Builder
	sb.WriteString("You review complaints filed by clients of a meal-ordering service against chefs.\n")
	sb.WriteString("Summarize the complaints below and list the chefs that need attention first.\n\n")
	for _, c := range complaints {
		fmt.Fprintf(&sb, "- [%s] chef %s, client %s: %s — %s\n",
			c.Date.Format("2006-01-02"), c.ChefID, c.ClientID, c.Title, c.Description)
	}
	return sb.String()
}
