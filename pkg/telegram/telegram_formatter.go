package telegram

import (
	"fmt"
	"strings"
	"time"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/pkg/utils"
)

// maxErrorLines caps how many row errors go into one message.
const maxErrorLines = 10

// FormatRunSummaryForTelegram formats an ingestion run into a Markdown message.
func FormatRunSummaryForTelegram(summary dto.RunSummary) string {
	var sb strings.Builder

	var emoji string
	switch summary.Outcome {
	case "success":
		emoji = "✅"
	case "partial":
		emoji = "⚠️"
	default:
		emoji = "📛"
	}

	sb.WriteString(fmt.Sprintf("%s *NEPSE ingestion %s* (HTTP %d)\n", emoji, strings.ToUpper(summary.Outcome), summary.StatusCode))
	sb.WriteString(fmt.Sprintf("🗂 Source: %s\n", escapeMarkdown(summary.Source)))
	if summary.TradeDate != "" {
		sb.WriteString(fmt.Sprintf("📅 Trade date: %s\n", summary.TradeDate))
	}
	sb.WriteString(fmt.Sprintf("💬 %s\n\n", escapeMarkdown(summary.Message)))

	c := summary.Counts
	sb.WriteString("📊 *Counts:*\n")
	sb.WriteString(fmt.Sprintf("• Rows scraped: %d\n", c.RawDataEntries))
	sb.WriteString(fmt.Sprintf("• Companies created: %d\n", c.CompaniesNewlyCreated))
	sb.WriteString(fmt.Sprintf("• Rows prepared: %d\n", c.MarketDataEntriesForUpsert))
	sb.WriteString(fmt.Sprintf("• Rows upserted: %d\n", c.MarketDataSuccessfullyUpserted))
	sb.WriteString(fmt.Sprintf("• Company failures: %d\n", c.CompaniesFailedOperations))
	sb.WriteString(fmt.Sprintf("• Market data failures: %d\n", c.MarketDataFailedOperations))
	if c.DuplicateRowsSkipped > 0 {
		sb.WriteString(fmt.Sprintf("• Duplicate rows skipped: %d\n", c.DuplicateRowsSkipped))
	}

	if len(summary.Errors) > 0 {
		sb.WriteString("\n🔧 *Errors:*\n")
		for i, e := range summary.Errors {
			if i == maxErrorLines {
				sb.WriteString(fmt.Sprintf("• ... and %d more\n", len(summary.Errors)-maxErrorLines))
				break
			}
			sb.WriteString(fmt.Sprintf("• %s\n", escapeMarkdown(utils.Truncate(e, 200))))
		}
	}

	sb.WriteString(fmt.Sprintf("\n_%s_\n", utils.PrettyDate(summary.FinishedAt)))
	return sb.String()
}

// FormatErrorAlertMessage formats a failure that happened before any row was ingested.
func FormatErrorAlertMessage(t time.Time, errType string, errMsg string, data string) string {
	return fmt.Sprintf(`📛 \[ERROR ALERT]
%s
🔧 %s
⚠️ %s

📄 Data: %s
`, utils.PrettyDate(t), escapeMarkdown(errType), escapeMarkdown(errMsg), escapeMarkdown(utils.Truncate(data, 500)))
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
