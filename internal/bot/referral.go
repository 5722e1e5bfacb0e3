package bot

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/skip2/go-qrcode"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/services"
)

const qrSize = 256

// showReferral renders the referral screen: the invitation link and the
// current month's commission per referred partner. When cq is set the
// callback message is edited in place.
func (b *Bot) showReferral(ctx context.Context, chatID int64, from *tgbotapi.User, cq *tgbotapi.CallbackQuery) error {
	u, _, err := b.Users.Touch(ctx, telegramUser(from))
	if err != nil {
		return err
	}
	ov, err := b.Referrals.Overview(ctx, u.ID)
	if err != nil {
		return err
	}

	text := referralText(ov)
	kb := referralKeyboard(ov.URL)
	if cq != nil {
		return b.edit(cq, text, &kb)
	}
	return b.send(chatID, text, kb)
}

func referralText(ov *services.ReferralOverview) string {
	var sb strings.Builder
	sb.WriteString("🤝 <b>Referral program</b>\n\n")
	sb.WriteString("Invite partners with your personal link and earn a commission on the revenue they bring.\n\n")
	fmt.Fprintf(&sb, "Your link:\n<code>%s</code>\n\n", html.EscapeString(ov.URL))
	fmt.Fprintf(&sb, "<b>%s %d</b>\n", ov.Month, ov.Year)

	if len(ov.Referred) == 0 {
		sb.WriteString("You have not invited anyone yet.\n")
	}
	for i, e := range ov.Referred {
		fmt.Fprintf(&sb, "%d. %s: revenue %s, %s%%, commission <b>%s</b>\n",
			i+1,
			html.EscapeString(e.User.DisplayName()),
			money(e.Revenue),
			strconv.FormatFloat(e.Percent, 'f', -1, 64),
			money(e.Commission),
		)
	}
	fmt.Fprintf(&sb, "\nTotal commission this month: <b>%s</b>\n", money(ov.Total))
	sb.WriteString("Payouts are made on the 10th of each month.")
	return sb.String()
}

// sendReferralQR sends the invitation link as a QR code image.
func (b *Bot) sendReferralQR(ctx context.Context, chatID int64, from *tgbotapi.User) error {
	u, _, err := b.Users.Touch(ctx, telegramUser(from))
	if err != nil {
		return err
	}
	link, err := b.Referrals.LinkFor(ctx, u.ID)
	if err != nil {
		return err
	}
	target := b.Referrals.URL(link.Code)
	png, err := qrcode.Encode(target, qrcode.Medium, qrSize)
	if err != nil {
		return fmt.Errorf("encode qr: %w", err)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "referral_qr.png", Bytes: png})
	photo.Caption = "🔲 Your referral link:\n<code>" + html.EscapeString(target) + "</code>"
	photo.ParseMode = tgbotapi.ModeHTML
	photo.ReplyMarkup = backKeyboard(cbReferral)
	_, err = b.API.Send(photo)
	return err
}

var payoutStatusLabels = map[string]string{
	domain.PayoutPending:   "⏳ pending",
	domain.PayoutPaid:      "✅ paid",
	domain.PayoutCancelled: "❌ cancelled",
}

func (b *Bot) showPayouts(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	u, _, err := b.Users.Touch(ctx, telegramUser(cq.From))
	if err != nil {
		return err
	}
	payouts, err := b.Referrals.PayoutHistory(ctx, u.ID)
	if err != nil {
		return err
	}
	kb := backKeyboard(cbReferral)
	return b.edit(cq, payoutsText(payouts), &kb)
}

func payoutsText(payouts []domain.ReferralPayout) string {
	if len(payouts) == 0 {
		return "📊 <b>Payout history</b>\n\n" + textNoPayouts
	}
	var sb strings.Builder
	sb.WriteString("📊 <b>Payout history</b>\n\n")
	for _, p := range payouts {
		status, ok := payoutStatusLabels[p.Status]
		if !ok {
			status = p.Status
		}
		fmt.Fprintf(&sb, "%02d.%d: <b>%s</b>, %s", p.Month, p.Year, money(p.Amount), status)
		if p.PaidAt != nil {
			fmt.Fprintf(&sb, " on %s", p.PaidAt.Format("02.01.2006"))
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
