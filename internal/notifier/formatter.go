package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MetalBoard/internal/model"
	"MetalBoard/internal/strategy"
	"MetalBoard/internal/trade"
)

// maxListed caps the signal log and trade list in a report.
const maxListed = 10

const dateLayout = "2006-01-02"

// HelpText lists the bot commands.
const HelpText = `<b>MetalBoard 命令</b>
/signal &lt;品种&gt; [策略] [参数1] [参数2] - 计算信号
  策略: crossover | breakout | channel
/symbols - 已配置品种
/update [品种...] - 从数据源更新行情
/alerts - 最近一次提醒
/help - 帮助`

// Recommendation renders the last signal as a position recommendation.
func Recommendation(s model.Signal) string {
	if s == model.Long {
		return "持仓 (买入)"
	}
	return "空仓 (卖出/观望)"
}

func changeLabel(c model.PositionChange) string {
	switch c {
	case model.Enter:
		return "买入"
	case model.Exit:
		return "卖出"
	default:
		return ""
	}
}

func signed(v float64) string { return signedDecimal(decimal.NewFromFloat(v)) }

func signedDecimal(d decimal.Decimal) string {
	d = d.Round(2)
	if d.IsPositive() {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func title(f *model.IndicatorFrame) string {
	label := ""
	if f.Strategy != nil {
		label = " · " + f.Strategy.Label()
	}
	return html.EscapeString(f.Symbol + label)
}

// FormatReport renders a computed frame and its trades into a Telegram message.
func FormatReport(f *model.IndicatorFrame, book trade.Book) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>%s</b>\n", title(f)))
	if f.Strategy != nil {
		b.WriteString(fmt.Sprintf("参数: %s\n", strategy.Describe(f.Strategy)))
	}

	last, ok := f.Last()
	if !ok {
		b.WriteString("\n无数据\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("最新日期: %s\n", last.Time.Format(dateLayout)))
	b.WriteString(fmt.Sprintf("最新收盘: %s\n", last.Close))
	b.WriteString(fmt.Sprintf("操作建议: <b>%s</b>\n", Recommendation(last.Signal)))
	writeIndicators(&b, f.Strategy, last)

	// Signal log, newest first
	events := f.Events()
	b.WriteString("\n🧾 <b>信号记录:</b>\n")
	if len(events) == 0 {
		b.WriteString("  暂无交易信号\n")
	}
	for i, n := len(events)-1, 0; i >= 0 && n < maxListed; i, n = i-1, n+1 {
		e := events[i]
		b.WriteString(fmt.Sprintf("  %s %s @ %s\n", e.Time.Format(dateLayout), changeLabel(e.Change), e.Close))
	}

	// Trade segments
	if len(book.Closed) > 0 {
		b.WriteString("\n📊 <b>交易记录:</b>\n")
		start := 0
		if len(book.Closed) > maxListed {
			start = len(book.Closed) - maxListed
		}
		for _, t := range book.Closed[start:] {
			pnl, verdict := "-", "无价格"
			if p := t.PnL(); p.Valid {
				pnl, verdict = signed(p.Val), "亏损"
				if t.Profitable() {
					verdict = "盈利"
				}
			}
			b.WriteString(fmt.Sprintf("  %s → %s  %.2f → %s  %s %s\n",
				t.EntryTime.Format(dateLayout), t.ExitTime.Format(dateLayout),
				t.EntryPrice, t.ExitPrice, pnl, verdict))
		}
	}

	if o := book.Open; o != nil {
		b.WriteString(fmt.Sprintf("\n🟢 <b>当前持仓:</b> %s 买入 @ %.2f, 浮动 %s (%s%%)\n",
			o.EntryTime.Format(dateLayout), o.EntryPrice, signed(o.Unrealized), signed(o.UnrealizedPct)))
	}

	sum := book.Summary()
	if sum.Trades > 0 {
		b.WriteString(fmt.Sprintf("\n汇总: %d 笔, 胜 %d 负 %d, 胜率 %s%%, 累计 %s\n",
			sum.Trades, sum.Wins, sum.Losses, sum.WinRate.StringFixed(1),
			signedDecimal(sum.RealizedPnL)))
	}
	return b.String()
}

func writeIndicators(b *strings.Builder, st model.Strategy, r model.FrameRow) {
	switch st.(type) {
	case model.CrossoverStrategy:
		b.WriteString(fmt.Sprintf("快线: %s | 慢线: %s\n", r.FastLine, r.SlowLine))
	case model.BreakoutStrategy:
		b.WriteString(fmt.Sprintf("快线: %s | 慢线: %s\n", r.FastLine, r.SlowLine))
		b.WriteString(fmt.Sprintf("上轨: %s | 下轨: %s\n", r.UpperBand, r.LowerBand))
		b.WriteString(fmt.Sprintf("K线位置: %s (前: %s)\n", r.RatioCurrent, r.RatioPrior))
	case model.ChannelStrategy:
		b.WriteString(fmt.Sprintf("上轨: %s | 下轨: %s\n", r.UpperBand, r.LowerBand))
	}
}

// FormatFailure renders a strategy that could not run, e.g. when High/Low
// columns are missing.
func FormatFailure(symbol string, st model.Strategy, err error) string {
	label := symbol
	if st != nil {
		label += " · " + st.Label()
	}
	return fmt.Sprintf("⚠️ <b>%s</b>\n策略无法运行: %s\n", html.EscapeString(label), html.EscapeString(err.Error()))
}

// FormatAlert renders a position change on the last bar.
func FormatAlert(f *model.IndicatorFrame, r model.FrameRow) string {
	icon := "🔴"
	if r.Change == model.Enter {
		icon = "🟢"
	}
	return fmt.Sprintf("%s <b>%s</b>\n%s %s @ %s\n操作建议: %s\n",
		icon, title(f), r.Time.Format(dateLayout), changeLabel(r.Change), r.Close, Recommendation(r.Signal))
}

// FormatLastAlerts lists the last announced change per symbol. Symbols
// without one are shown as never alerted.
func FormatLastAlerts(symbols []string, last func(symbol string) (model.PositionChange, time.Time, float64, bool)) string {
	var b strings.Builder
	b.WriteString("<b>最近提醒:</b>\n")
	for _, s := range symbols {
		change, at, price, ok := last(s)
		if !ok {
			b.WriteString(fmt.Sprintf("  %s: 暂无\n", html.EscapeString(s)))
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %s %s @ %.2f\n", html.EscapeString(s), at.Format(dateLayout), changeLabel(change), price))
	}
	return b.String()
}

// FormatSymbols lists configured symbols.
func FormatSymbols(symbols []string) string {
	if len(symbols) == 0 {
		return "未配置品种"
	}
	return "<b>已配置品种:</b>\n" + strings.Join(symbols, "\n")
}

// PlainText strips the HTML markup used for Telegram so a message can be
// printed to a terminal.
func PlainText(msg string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "")
	return html.UnescapeString(r.Replace(msg))
}
