package bot

import (
	"context"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type serviceCategory struct {
	Key      string
	Title    string
	Services []string
}

var serviceCatalog = []serviceCategory{
	{Key: "tax", Title: "Tax law and disputes", Services: []string{
		"Tax consulting and planning",
		"Defence during tax audits",
		"Appeals against tax authority decisions",
		"Recovery of overpaid taxes",
		"Tax aspects of bankruptcy",
		"Defence in tax crime cases",
	}},
	{Key: "arbitration", Title: "Commercial disputes and enforcement", Services: []string{
		"Debt collection",
		"Contract disputes",
		"Corporate disputes",
		"Bankruptcy",
		"Challenging cadastral valuation",
		"Enforcement proceedings",
	}},
	{Key: "corporate", Title: "Corporate support", Services: []string{
		"Company registration and liquidation",
		"Changes to the company register",
		"Corporate governance",
		"Minutes of corporate events",
		"Legal outsourcing",
		"Due diligence",
	}},
	{Key: "labor", Title: "Employment law and HR", Services: []string{
		"Employment documentation",
		"Employment disputes",
		"Labour inspections",
		"Dismissals and redundancies",
		"Migration law",
	}},
	{Key: "contract", Title: "Contracts and transactions", Services: []string{
		"Drafting and review of contracts",
		"Legal risk mitigation",
		"Restructuring of grey schemes",
		"Real estate transactions",
	}},
	{Key: "ip", Title: "Intellectual property and IT", Services: []string{
		"Trademark and patent registration",
		"Copyright protection",
		"IT contracts",
		"Support of digital projects",
	}},
	{Key: "administrative", Title: "Administrative law and inspections", Services: []string{
		"Support during regulatory inspections",
		"Appeals against administrative offences",
		"Defence against suspension of business",
	}},
	{Key: "real_estate", Title: "Real estate and construction", Services: []string{
		"Real estate legal audit",
		"Commercial real estate transactions",
		"Construction project support",
		"Land law",
	}},
	{Key: "international", Title: "International law and foreign trade", Services: []string{
		"Structuring international transactions",
		"Foreign company set-up and support",
		"Foreign trade support",
	}},
	{Key: "antitrust", Title: "Competition law", Services: []string{
		"Merger clearance",
		"Advertising law compliance",
		"Protection against unfair competition",
	}},
	{Key: "family_business", Title: "Family business and succession", Services: []string{
		"Asset structuring",
		"Inheritance funds",
		"Division of business assets between spouses",
	}},
}

type faqEntry struct{ Q, A string }

type faqCategory struct {
	Key     string
	Title   string
	Entries []faqEntry
}

var faqCatalog = []faqCategory{
	{Key: "partnership", Title: "Getting started and partnership", Entries: []faqEntry{
		{"How do I become a partner?", "Fill in your partner profile and share your referral link with clients."},
		{"Do I need a legal background?", "No. You recommend our services; our lawyers do the legal work."},
	}},
	{Key: "finance", Title: "Finance and payouts", Entries: []faqEntry{
		{"How is my commission calculated?", "From the monthly revenue of the clients you referred: 0.5% below 250,000, 1% up to 1,000,000 and 2% from 1,000,000. The rate applies to the whole amount."},
		{"When are payouts made?", "On the 10th of each month, for the previous calendar month."},
	}},
	{Key: "client_work", Title: "Clients and requests", Entries: []faqEntry{
		{"How do I send a case?", "Press \"" + LabelSendCase + "\", answer seven short questions and attach documents."},
		{"How do I follow my cases?", "Open \"" + LabelHistory + "\". You will also get a message whenever a status changes."},
	}},
	{Key: "legal_services", Title: "Legal services and expertise", Entries: []faqEntry{
		{"Which areas do you cover?", "See \"" + LabelServices + "\" for the full catalogue."},
		{"Who evaluates a case?", "A lawyer specialised in the area of the dispute."},
	}},
	{Key: "technical_security", Title: "Technical questions and security", Entries: []faqEntry{
		{"Which files can I attach?", "PDF, JPG, JPEG, PNG, DOC and DOCX files."},
		{"Who sees my data?", "Only our staff. Your contact details are shared with clients only if you allow it in your profile."},
	}},
}

// heading upper-cases s for section headers.
func heading(s string) string {
	return cases.Upper(language.English).String(s)
}

func servicesKeyboard() tgbotapi.InlineKeyboardMarkup {
	btns := make([]tgbotapi.InlineKeyboardButton, 0, len(serviceCatalog)+1)
	for _, c := range serviceCatalog {
		btns = append(btns, button(c.Title, cbServiceKey+c.Key))
	}
	btns = append(btns, button("🔙 Main menu", cbMainMenu))
	return column(btns...)
}

func faqKeyboard() tgbotapi.InlineKeyboardMarkup {
	btns := make([]tgbotapi.InlineKeyboardButton, 0, len(faqCatalog)+1)
	for _, c := range faqCatalog {
		btns = append(btns, button(c.Title, cbFAQKey+c.Key))
	}
	btns = append(btns, button("🔙 Main menu", cbMainMenu))
	return column(btns...)
}

const (
	textServices = "<b>Our services</b>\n\nWe offer a wide range of legal services for business. Choose a category:"
	textFAQ      = "<b>Frequently asked questions</b>\n\nChoose a topic:"
)

func (b *Bot) showServices(_ context.Context, chatID int64) error {
	return b.send(chatID, textServices, servicesKeyboard())
}

func (b *Bot) showFAQ(_ context.Context, chatID int64) error {
	return b.send(chatID, textFAQ, faqKeyboard())
}

func (b *Bot) onServiceCallback(cq *tgbotapi.CallbackQuery) error {
	if cq.Data == cbServices {
		kb := servicesKeyboard()
		return b.edit(cq, textServices, &kb)
	}
	key := strings.TrimPrefix(cq.Data, cbServiceKey)
	for _, c := range serviceCatalog {
		if c.Key != key {
			continue
		}
		var sb strings.Builder
		sb.WriteString("<b>" + html.EscapeString(heading(c.Title)) + "</b>\n\n")
		for _, s := range c.Services {
			sb.WriteString("• " + html.EscapeString(s) + "\n")
		}
		sb.WriteString("\nTo request a service, send a case for evaluation or write to support.")
		kb := backKeyboard(cbServices)
		return b.edit(cq, sb.String(), &kb)
	}
	return nil
}

func (b *Bot) onFAQCallback(cq *tgbotapi.CallbackQuery) error {
	if cq.Data == cbFAQ {
		kb := faqKeyboard()
		return b.edit(cq, textFAQ, &kb)
	}
	key := strings.TrimPrefix(cq.Data, cbFAQKey)
	for _, c := range faqCatalog {
		if c.Key != key {
			continue
		}
		var sb strings.Builder
		sb.WriteString("<b>" + html.EscapeString(heading(c.Title)) + "</b>\n\n")
		for _, e := range c.Entries {
			sb.WriteString("<b>" + html.EscapeString(e.Q) + "</b>\n" + html.EscapeString(e.A) + "\n\n")
		}
		kb := backKeyboard(cbFAQ)
		return b.edit(cq, strings.TrimSpace(sb.String()), &kb)
	}
	return nil
}
