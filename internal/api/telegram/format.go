package telegram

import (
	"fmt"
	"strings"

	"issue-classifier/internal/domain/entity"
)

// formatVerdict renders a verdict as a chat message.
func formatVerdict(v *entity.ClassificationVerdict) string {
	var sb strings.Builder

	switch {
	case v.IsValid:
		sb.WriteString("✅ ")
	case v.IsUnrelated:
		sb.WriteString("🚫 ")
	default:
		sb.WriteString("⚠️ ")
	}
	sb.WriteString(v.Message)

	if v.IsValid && v.IssueType != nil {
		fmt.Fprintf(&sb, "\n\nIssue type: %s (%s)", v.IssueType.Label(), *v.IssueType)
	}

	if len(v.Predictions) > 0 {
		sb.WriteString("\n\nTop predictions:")
		for i, p := range v.Predictions {
			fmt.Fprintf(&sb, "\n%d. %s — %.1f%%", i+1, p.ClassName, p.Probability*100)
		}
	}

	return sb.String()
}

func formatIssueTypes(entries []entity.TaxonomyEntry) string {
	var sb strings.Builder
	sb.WriteString("📋 Supported issue types:")
	for _, e := range entries {
		fmt.Fprintf(&sb, "\n• %s (%s)", e.Label, e.IssueType)
	}
	return sb.String()
}
