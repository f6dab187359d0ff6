package notify

import (
	"fmt"
	"html"
	"strings"

	"bloomshop/internal/entity"
)

// Kind selects the notification template.
type Kind string

const (
	KindOrderCreated   Kind = "order_created"
	KindPaymentSuccess Kind = "payment_success"
	KindPaymentFailed  Kind = "payment_failed"
)

const (
	_subunitFactor = 100

	_placeholder = "не указан"
	_flagOn      = "✅"
	_flagOff     = "➖"
)

// Format renders an order snapshot into a Telegram HTML message.
//
// The output is deterministic: the same (order, kind, reason) triple always
// yields byte-identical text, so a retried send never re-derives content.
// Every user-supplied string is HTML-escaped before interpolation. Section
// order is fixed; optional sections render an explicit placeholder instead
// of disappearing.
func Format(order *entity.Order, kind Kind, reason string) string {
	var b strings.Builder

	sections := []func(*strings.Builder, *entity.Order, Kind, string){
		writeHeader,
		writeSummary,
		writeItems,
		writeFailureReason,
		writeBuyer,
		writeRecipient,
		writeFlags,
		writeDelivery,
		writePromo,
		writeTrailer,
	}

	for _, section := range sections {
		section(&b, order, kind, reason)
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeHeader(b *strings.Builder, order *entity.Order, kind Kind, _ string) {
	switch kind {
	case KindOrderCreated:
		b.WriteString("🌸 <b>Новый заказ</b>\n")
	case KindPaymentSuccess:
		b.WriteString("💚 <b>Заказ оплачен</b>\n")
	case KindPaymentFailed:
		b.WriteString("❌ <b>Оплата не прошла</b>\n")
	default:
		b.WriteString("📦 <b>Заказ</b>\n")
	}
}

func writeSummary(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	fmt.Fprintf(b, "Заказ <code>#%s</code> на сумму <b>%s</b>\n\n",
		shortID(order), FormatAmount(order.Amount, order.Currency))
}

func writeItems(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	b.WriteString("<b>Состав:</b>\n")
	for _, item := range order.Items {
		b.WriteString("• ")
		if item.Path != "" {
			fmt.Fprintf(b, "<a href=\"%s\">%s</a>",
				html.EscapeString(item.Path), html.EscapeString(item.Name))
		} else {
			b.WriteString(html.EscapeString(item.Name))
		}
		if item.Variant != "" {
			fmt.Fprintf(b, " (%s)", html.EscapeString(item.Variant))
		}
		if item.Quantity > 1 {
			fmt.Fprintf(b, " ×%d", item.Quantity)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeFailureReason(b *strings.Builder, _ *entity.Order, kind Kind, reason string) {
	if kind != KindPaymentFailed {
		return
	}
	if reason == "" {
		reason = _placeholder
	}
	fmt.Fprintf(b, "<b>Причина:</b> %s\n\n", html.EscapeString(reason))
}

func writeBuyer(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	c := order.Customer
	b.WriteString("<b>Покупатель:</b>\n")
	fmt.Fprintf(b, "%s, %s\n", html.EscapeString(c.Name), html.EscapeString(c.Phone))
	if c.Email != "" {
		fmt.Fprintf(b, "%s\n", html.EscapeString(c.Email))
	}
	b.WriteString("\n")
}

func writeRecipient(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	c := order.Customer
	b.WriteString("<b>Получатель:</b> ")
	if c.RecipientName == "" && c.RecipientPhone == "" {
		b.WriteString(_placeholder + "\n\n")
		return
	}
	parts := make([]string, 0, 2)
	if c.RecipientName != "" {
		parts = append(parts, html.EscapeString(c.RecipientName))
	}
	if c.RecipientPhone != "" {
		parts = append(parts, html.EscapeString(c.RecipientPhone))
	}
	b.WriteString(strings.Join(parts, ", ") + "\n\n")
}

func writeFlags(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	c := order.Customer

	// Absence must be visible: every flag is printed, on or off.
	flags := []struct {
		label string
		set   bool
	}{
		{"Анонимно", c.Anonymous},
		{"Позвонить получателю", c.CallRecipient},
		{"Согласие на рассылку", c.PromoConsent},
	}

	for _, f := range flags {
		glyph := _flagOff
		if f.set {
			glyph = _flagOn
		}
		fmt.Fprintf(b, "%s %s\n", glyph, f.label)
	}
	b.WriteString("\n")
}

func writeDelivery(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	c := order.Customer
	b.WriteString("<b>Доставка:</b>\n")

	if c.IsPickup() {
		b.WriteString("Самовывоз\n")
	} else {
		zone := c.DeliveryZone
		if zone == "" {
			zone = _placeholder
		}
		fmt.Fprintf(b, "Зона: %s\n", html.EscapeString(zone))

		address := c.Address
		if address == "" {
			address = _placeholder
		}
		fmt.Fprintf(b, "Адрес: %s\n", html.EscapeString(address))
	}

	date := c.DeliveryDate
	if date == "" {
		date = _placeholder
	}
	slot := c.DeliveryTime
	if slot == "" {
		slot = _placeholder
	}
	fmt.Fprintf(b, "Дата: %s, время: %s\n",
		html.EscapeString(date), html.EscapeString(slot))

	if c.CardText != "" {
		fmt.Fprintf(b, "Открытка: %s\n", html.EscapeString(c.CardText))
	}
	if c.Note != "" {
		fmt.Fprintf(b, "Комментарий: %s\n", html.EscapeString(c.Note))
	}
	b.WriteString("\n")
}

func writePromo(b *strings.Builder, order *entity.Order, _ Kind, _ string) {
	promo := order.PromoCode
	if promo == "" {
		promo = _placeholder
	}
	fmt.Fprintf(b, "<b>Промокод:</b> %s\n", html.EscapeString(promo))
}

func writeTrailer(b *strings.Builder, _ *entity.Order, kind Kind, _ string) {
	if kind != KindOrderCreated {
		return
	}
	b.WriteString("\n⏳ Ожидает оплаты\n")
}

func shortID(order *entity.Order) string {
	id := order.ID.String()
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// FormatAmount renders minor currency units as a whole number with
// thousands separators. Integer arithmetic only: no float division.
func FormatAmount(amount uint64, currency string) string {
	units := amount / _subunitFactor

	digits := fmt.Sprintf("%d", units)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(d)
	}

	return grouped.String() + " " + currencySign(currency)
}

func currencySign(currency string) string {
	switch currency {
	case "RUB":
		return "₽"
	case "USD":
		return "$"
	case "EUR":
		return "€"
	default:
		return currency
	}
}
