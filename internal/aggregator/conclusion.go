package aggregator

import (
	"fmt"
	"strings"

	"github.com/GustavoDePieri/ontop-feedback-dashboard/internal/models"
)

// Conclusion renders the deterministic narrative for a summary. The
// wording is template selection, never free text, so re-running an
// unchanged record set reproduces the string bit for bit.
func Conclusion(sum *models.ClientSentimentSummary) string {
	var parts []string

	switch sum.Category {
	case models.LabelPositive:
		parts = append(parts,
			fmt.Sprintf("Client %s shows positive sentiment overall (score: %.2f).", sum.ClientID, sum.FinalScore),
			fmt.Sprintf("Out of %d records, %d are positive.", sum.TotalRecords, sum.PositiveCount),
		)
	case models.LabelNegative:
		negativePct := 0.0
		if sum.TotalRecords > 0 {
			negativePct = float64(sum.NegativeCount) / float64(sum.TotalRecords) * 100
		}
		parts = append(parts,
			fmt.Sprintf("Client %s shows negative sentiment (score: %.2f).", sum.ClientID, sum.FinalScore),
			fmt.Sprintf("%d out of %d records (%.1f%%) are negative, indicating potential retention risk.",
				sum.NegativeCount, sum.TotalRecords, negativePct),
		)
	default:
		parts = append(parts,
			fmt.Sprintf("Client %s shows neutral sentiment (score: %.2f).", sum.ClientID, sum.FinalScore),
			fmt.Sprintf("Sentiment is balanced across %d records.", sum.TotalRecords),
		)
	}

	if sum.NegativeAspectsSummary != "" {
		parts = append(parts, fmt.Sprintf("Primary pain points: %s.", sum.NegativeAspectsSummary))
	}

	switch sum.Category {
	case models.LabelNegative:
		parts = append(parts, "Recommendation: Proactive outreach and issue resolution to improve client satisfaction.")
	case models.LabelPositive:
		parts = append(parts, "Recommendation: Maintain current service quality and leverage positive feedback.")
	default:
		parts = append(parts, "Recommendation: Monitor closely and address any emerging issues promptly.")
	}

	return strings.Join(parts, " ")
}
