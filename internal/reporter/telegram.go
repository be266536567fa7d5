package reporter

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/oscarl77/tech-job-market-analysis/internal/pipeline"
	"github.com/oscarl77/tech-job-market-analysis/internal/scraper"
	"github.com/oscarl77/tech-job-market-analysis/internal/stats"
)

// Reporter announces the outcome of collection and processing runs.
type Reporter interface {
	SendScrapeReport(report scraper.Report) error
	SendRunSummary(res pipeline.Result, summary stats.Summary) error
	SendError(err error) error
}

// sender is the part of tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramReporter struct {
	bot    sender
	chatID int64
	logger *slog.Logger
}

func NewTelegramReporter(token string, chatID int64, logger *slog.Logger) (*TelegramReporter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	//turn this on in case of debug
	//bot.Debug = true

	return newTelegramReporter(bot, chatID, logger), nil
}

func newTelegramReporter(bot sender, chatID int64, logger *slog.Logger) *TelegramReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramReporter{bot: bot, chatID: chatID, logger: logger}
}

func (t *TelegramReporter) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Warn("telegram send failed", "error", err)
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (t *TelegramReporter) SendScrapeReport(report scraper.Report) error {
	return t.send(FormatScrapeReport(report))
}

func (t *TelegramReporter) SendRunSummary(res pipeline.Result, summary stats.Summary) error {
	return t.send(FormatRunSummary(res, summary))
}

func (t *TelegramReporter) SendError(errReq error) error {
	return t.send(fmt.Sprintf("⚠️ *Job market run failed*\n%s", escapeMarkdown(errReq.Error())))
}

// FormatScrapeReport renders a collection report as MarkdownV2.
func FormatScrapeReport(r scraper.Report) string {
	var b strings.Builder
	b.WriteString("🕷 *Collection finished*\n")
	fmt.Fprintf(&b, "📂 Categories: %d\n", r.Categories)
	fmt.Fprintf(&b, "📥 Collected: %d\n", r.Collected)
	fmt.Fprintf(&b, "💾 Written: %d\n", r.Written)
	if len(r.FailedCategories) > 0 {
		fmt.Fprintf(&b, "❌ Failed: %s\n", escapeMarkdown(strings.Join(r.FailedCategories, ", ")))
	}
	return b.String()
}

// FormatRunSummary renders a processing run and its table summary as
// MarkdownV2.
func FormatRunSummary(res pipeline.Result, s stats.Summary) string {
	var b strings.Builder
	b.WriteString("📊 *Job market table refreshed*\n")
	fmt.Fprintf(&b, "🆔 %s\n", escapeMarkdown(res.RunID.String()))
	fmt.Fprintf(&b, "📥 Raw rows: %d\n", res.Loaded)
	fmt.Fprintf(&b, "💾 Processed rows: %d\n", res.Written)
	fmt.Fprintf(&b, "⏱ %s\n", escapeMarkdown(res.Duration().Round(time.Millisecond).String()))
	if s.MeanSalary > 0 {
		fmt.Fprintf(&b, "💰 Mean salary: £%d \\(%d postings\\)\n", s.MeanSalary, s.SalaryRows)
	}
	writeCounts(&b, "🎚 Seniority", s.BySeniority)
	writeCounts(&b, "📍 Regions", s.ByRegion)
	writeCounts(&b, "🛠 Top skills", s.TopSkills)
	return b.String()
}

func writeCounts(b *strings.Builder, title string, counts []stats.Count) {
	if len(counts) == 0 {
		return
	}
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s %d", escapeMarkdown(c.Label), c.Count)
	}
	fmt.Fprintf(b, "%s: %s\n", title, strings.Join(parts, ", "))
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(",
		")", "\\)", "~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#",
		"+", "\\+", "-", "\\-", "=", "\\=", "|", "\\|", "{", "\\{",
		"}", "\\}", ".", "\\.", "!", "\\!",
	)
	return replacer.Replace(text)
}

// Nop discards every report. It is used when no bot token is configured.
type Nop struct{}

func (Nop) SendScrapeReport(scraper.Report) error { return nil }
func (Nop) SendRunSummary(pipeline.Result, stats.Summary) error { return nil }
func (Nop) SendError(error) error { return nil }

var (
	_ Reporter = (*TelegramReporter)(nil)
	_ Reporter = Nop{}
)
