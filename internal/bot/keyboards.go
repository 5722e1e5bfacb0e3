package bot

import (
	"net/url"
	"strings"
	"unicode"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"

	"github.com/tbourn/lawdesk/internal/forms"
)

// Reply keyboard labels.
const (
	LabelServices = "📋 Services"
	LabelHistory  = "📚 My cases"
	LabelProfile  = "👤 Partner profile"
	LabelSendCase = "💼 Send a case for evaluation"
	LabelSupport  = "💬 Support"
	LabelFAQ      = "❓ FAQ"
	LabelReferral = "🤝 Referral program"
	LabelRevenue  = "💰 Add revenue"

	LabelCancel = "❌ Cancel"
	LabelDone   = "✅ Done"
	LabelSkip   = "⏭️ Skip"
)

// Callback data.
const (
	cbMainMenu      = "main_menu"
	cbCaseEdit      = "q_edit_section"
	cbCaseEditKey   = "q_edit_"
	cbCaseSummary   = "q_back_summary"
	cbCaseSubmit    = "q_submit"
	cbCaseCancel    = "q_cancel"
	cbProfileMenu   = "profile_menu"
	cbProfileUpdate = "profile_update"
	cbProfileView   = "profile_view"
	cbConsent       = "profile_consent"
	cbReferral      = "referral_program"
	cbReferralQR    = "referral_qr"
	cbPayouts       = "payout_history"
	cbRevenue       = "add_revenue"
	cbServices      = "services"
	cbServiceKey    = "svc_"
	cbFAQ           = "faq"
	cbFAQKey        = "faq_"
)

var mainMenuLabels = [][]string{
	{LabelServices, LabelHistory},
	{LabelProfile, LabelSendCase},
	{LabelSupport, LabelFAQ},
	{LabelReferral, LabelRevenue},
}

// labelKey normalizes button text for matching: leading emoji and spaces are
// dropped and the rest is case-folded, so "❌ Cancel", "cancel" and "CANCEL"
// compare equal.
func labelKey(s string) string {
	s = strings.TrimLeftFunc(strings.TrimSpace(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return cases.Fold().String(strings.TrimSpace(s))
}

// isLabel reports whether text is the button with the given label.
func isLabel(text, label string) bool {
	k := labelKey(text)
	return k != "" && k == labelKey(label)
}

// menuLabel returns the main-menu label text stands for, if any.
func menuLabel(text string) (string, bool) {
	k := labelKey(text)
	if k == "" {
		return "", false
	}
	for _, row := range mainMenuLabels {
		for _, l := range row {
			if k == labelKey(l) {
				return l, true
			}
		}
	}
	return "", false
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	kb := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, l := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(l))
		}
		kb = append(kb, btns)
	}
	m := tgbotapi.NewReplyKeyboard(kb...)
	m.ResizeKeyboard = true
	return m
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup { return replyKeyboard(mainMenuLabels) }

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{{LabelCancel}})
}

func documentsKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return replyKeyboard([][]string{{LabelDone, LabelSkip}, {LabelCancel}})
}

func button(text, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text, data)
}

func column(btns ...tgbotapi.InlineKeyboardButton) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(btns))
	for _, b := range btns {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(b))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func summaryKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button("✏️ Edit a section", cbCaseEdit),
			button("📤 Submit", cbCaseSubmit),
		),
		tgbotapi.NewInlineKeyboardRow(button(LabelCancel, cbCaseCancel)),
	)
}

func editSectionsKeyboard() tgbotapi.InlineKeyboardMarkup {
	btns := make([]tgbotapi.InlineKeyboardButton, 0, forms.NumSections+1)
	for _, s := range forms.Sections {
		btns = append(btns, button(s.Title, cbCaseEditKey+s.Key))
	}
	btns = append(btns, button("🔙 Back to summary", cbCaseSummary))
	return column(btns...)
}

func profileMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return column(
		button("📝 Fill in / update my details", cbProfileUpdate),
		button("👤 My profile", cbProfileView),
		button(LabelReferral, cbReferral),
		button(LabelRevenue, cbRevenue),
		button("🔙 Main menu", cbMainMenu),
	)
}

func profileViewKeyboard(consent bool) tgbotapi.InlineKeyboardMarkup {
	label := "🔓 Allow sharing my contact details"
	if consent {
		label = "🔒 Stop sharing my contact details"
	}
	return column(
		button(label, cbConsent),
		button("📝 Update my details", cbProfileUpdate),
		button("🔙 Back", cbProfileMenu),
	)
}

func referralKeyboard(link string) tgbotapi.InlineKeyboardMarkup {
	share := "https://t.me/share/url?url=" + url.QueryEscape(link)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("📤 Share link", share)),
		tgbotapi.NewInlineKeyboardRow(button("🔲 QR code", cbReferralQR)),
		tgbotapi.NewInlineKeyboardRow(button("📊 Payout history", cbPayouts)),
		tgbotapi.NewInlineKeyboardRow(button("🔙 Back to profile", cbProfileMenu)),
	)
}

func backKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return column(button("🔙 Back", data))
}
