package telegram

import (
	"fmt"
	"strings"

	"tradebridge/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

// FormatEvent renders one notification event as a Telegram HTML message.
// The layout mirrors the alert format traders already rely on: side emoji,
// bold field labels, italic UTC timestamp line.
func FormatEvent(ev domain.Event) string {
	switch ev.Kind {
	case domain.EventOrderSucceeded:
		return formatOrderSucceeded(ev)
	case domain.EventUpdateSucceeded:
		return formatUpdateSucceeded(ev)
	case domain.EventOrderFailed:
		return formatFailure("Order Execution Failed", ev)
	case domain.EventUpdateFailed:
		return formatFailure("Stop Update Failed", ev)
	case domain.EventValidationError:
		return fmt.Sprintf("❌ <b>Webhook Error:</b> %s", ev.ErrorMsg)
	default: // domain.EventInternalError
		return fmt.Sprintf("❌ <b>Internal Error</b>\n\n<b>Error:</b> %s", ev.ErrorMsg)
	}
}

func formatOrderSucceeded(ev domain.Event) string {
	emoji := "🟢"
	if ev.Action == domain.ActionSell {
		emoji = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Trade Executed</b>\n\n", emoji)
	fmt.Fprintf(&b, "<b>Symbol:</b> %s\n", ev.Symbol)
	fmt.Fprintf(&b, "<b>Action:</b> %s\n", strings.ToUpper(string(ev.Action)))
	fmt.Fprintf(&b, "<b>Quantity:</b> %v\n", ev.Quantity)
	fmt.Fprintf(&b, "<b>Entry:</b> $%.4f\n", ev.EntryPrice)
	if ev.StopLoss > 0 {
		fmt.Fprintf(&b, "<b>Stop Loss:</b> $%.4f\n", ev.StopLoss)
	}
	if ev.TakeProfit > 0 {
		fmt.Fprintf(&b, "<b>Take Profit:</b> $%.4f\n", ev.TakeProfit)
	}
	if ev.TrailingStop > 0 {
		fmt.Fprintf(&b, "<b>Trailing Stop:</b> %.4f\n", ev.TrailingStop)
	}
	if ev.OrderID != "" {
		fmt.Fprintf(&b, "<b>Order ID:</b> %s\n", ev.OrderID)
	}
	if ev.Warning != "" {
		fmt.Fprintf(&b, "\n⚠️ <b>Warning:</b> %s\n", ev.Warning)
	}
	fmt.Fprintf(&b, "\n<i>Timestamp: %s</i>", ev.Timestamp.UTC().Format(timestampLayout))
	return b.String()
}

func formatUpdateSucceeded(ev domain.Event) string {
	var b strings.Builder
	b.WriteString("🔧 <b>Stops Updated</b>\n\n")
	fmt.Fprintf(&b, "<b>Symbol:</b> %s\n", ev.Symbol)
	if ev.StopLoss > 0 {
		fmt.Fprintf(&b, "<b>Stop Loss:</b> $%.4f\n", ev.StopLoss)
	}
	if ev.TakeProfit > 0 {
		fmt.Fprintf(&b, "<b>Take Profit:</b> $%.4f\n", ev.TakeProfit)
	}
	if ev.TrailingStop > 0 {
		fmt.Fprintf(&b, "<b>Trailing Stop:</b> %.4f\n", ev.TrailingStop)
	}
	if ev.Warning != "" {
		fmt.Fprintf(&b, "\n⚠️ <b>Warning:</b> %s\n", ev.Warning)
	}
	fmt.Fprintf(&b, "\n<i>Timestamp: %s</i>", ev.Timestamp.UTC().Format(timestampLayout))
	return b.String()
}

func formatFailure(title string, ev domain.Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "❌ <b>%s</b>\n\n", title)
	if ev.Symbol != "" {
		fmt.Fprintf(&b, "<b>Symbol:</b> %s\n", ev.Symbol)
	}
	if ev.Action != "" {
		fmt.Fprintf(&b, "<b>Action:</b> %s\n", strings.ToUpper(string(ev.Action)))
	}
	if ev.Quantity > 0 {
		fmt.Fprintf(&b, "<b>Quantity:</b> %v\n", ev.Quantity)
	}
	if ev.ErrorCode != 0 {
		fmt.Fprintf(&b, "<b>Error Code:</b> %d\n", ev.ErrorCode)
	}
	fmt.Fprintf(&b, "<b>Error Message:</b> %s\n", ev.ErrorMsg)
	return b.String()
}
