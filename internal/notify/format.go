package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/crypto-notifier/internal/model"
)

// insightReplacer drops characters that would end or nest the italic
// entity the insight is wrapped in.
var insightReplacer = strings.NewReplacer("_", " ", "*", "", "`", "'", "[", "(", "]", ")")

// FormatOnline renders the startup announcement. A %s verb in tmpl is
// replaced with cadence (see FormatCadence).
func FormatOnline(tmpl, cadence string) string {
	if strings.Contains(tmpl, "%s") {
		return fmt.Sprintf(tmpl, cadence)
	}
	return tmpl
}

// FormatCadence describes when updates are sent: "every 5-min", or the
// cron expression when one is configured.
func FormatCadence(interval time.Duration, schedule string) string {
	if schedule != "" {
		return fmt.Sprintf("on schedule `%s`", schedule)
	}
	return "every " + FormatInterval(interval)
}

// FormatUpdate renders one price update:
//
//	*5-min prices (UTC 12:05)*
//
//	*BTC*: `65000.12`
//	*ETH*: `3200.50` _(stale)_
//	*SOL*: NA
//
//	_insight text_
//
// The insight paragraph is omitted when no insight is present. A zero
// interval, used for cron schedules, drops the interval prefix:
// "*Prices (UTC 12:05)*".
func FormatUpdate(quotes []model.Quote, insight model.Insight, now time.Time, precision int, interval time.Duration) string {
	var b strings.Builder
	stamp := now.UTC().Format("15:04")
	if interval > 0 {
		fmt.Fprintf(&b, "*%s prices (UTC %s)*\n\n", FormatInterval(interval), stamp)
	} else {
		fmt.Fprintf(&b, "*Prices (UTC %s)*\n\n", stamp)
	}

	for i, q := range quotes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(formatQuote(q, precision))
	}

	if text, ok := insight.Get(); ok {
		if text = strings.TrimSpace(insightReplacer.Replace(text)); text != "" {
			fmt.Fprintf(&b, "\n\n_%s_", text)
		}
	}

	return b.String()
}

func formatQuote(q model.Quote, precision int) string {
	if !q.Available {
		return fmt.Sprintf("*%s*: NA", q.Symbol)
	}
	line := fmt.Sprintf("*%s*: `%s`", q.Symbol, q.Price.StringFixed(int32(precision)))
	if q.Stale {
		line += " _(stale)_"
	}
	return line
}

// FormatInterval renders d the way update headers show it: "5-min",
// "1-hour", "30-sec".
func FormatInterval(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return fmt.Sprintf("%d-hour", d/time.Hour)
	case d >= time.Minute && d%time.Minute == 0:
		return fmt.Sprintf("%d-min", d/time.Minute)
	case d >= time.Second && d%time.Second == 0:
		return fmt.Sprintf("%d-sec", d/time.Second)
	default:
		return d.String()
	}
}
