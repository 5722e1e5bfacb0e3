package bot

import (
	"strings"
	"testing"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestMenuLabel(t *testing.T) {
	cases := []struct{ in, want string }{
		{LabelHistory, LabelHistory},
		{"my cases", LabelHistory},
		{"📚 MY CASES", LabelHistory},
		{"  ❓ faq ", LabelFAQ},
		{"Add revenue", LabelRevenue},
		{LabelSendCase, LabelSendCase},
		{"🤝 referral program", LabelReferral},
	}
	for _, c := range cases {
		got, ok := menuLabel(c.in)
		if !ok || got != c.want {
			t.Fatalf("menuLabel(%q) = %q, %v; want %q", c.in, got, ok, c.want)
		}
	}
	for _, in := range []string{"", "hello", "❌", LabelCancel} {
		if _, ok := menuLabel(in); ok {
			t.Fatalf("menuLabel(%q) should not match", in)
		}
	}
}

func TestIsLabel(t *testing.T) {
	if !isLabel("CANCEL", LabelCancel) || !isLabel("⏭️ Skip", LabelSkip) || !isLabel("done", LabelDone) {
		t.Fatal("expected case-insensitive label match")
	}
	if isLabel("", LabelCancel) || isLabel("cancel it", LabelCancel) {
		t.Fatal("unexpected label match")
	}
}

func TestMainMenuKeyboard_Layout(t *testing.T) {
	kb := mainMenuKeyboard()
	if len(kb.Keyboard) != 4 || !kb.ResizeKeyboard {
		t.Fatalf("expected 4 resized rows, got %d", len(kb.Keyboard))
	}
	for _, row := range kb.Keyboard {
		if len(row) != 2 {
			t.Fatalf("expected 2 buttons per row, got %d", len(row))
		}
	}
}

func TestReferralKeyboard_ShareURL(t *testing.T) {
	kb := referralKeyboard("https://t.me/bot?start=ABC")
	u := kb.InlineKeyboard[0][0].URL
	if u == nil || !strings.HasPrefix(*u, "https://t.me/share/url?url=https%3A%2F%2Ft.me") {
		t.Fatalf("unexpected share url: %v", u)
	}
}

func TestCallbackDataFitsTelegramLimit(t *testing.T) {
	for _, kb := range [...][][]string{
		buttonData(editSectionsKeyboard().InlineKeyboard),
		buttonData(servicesKeyboard().InlineKeyboard),
		buttonData(faqKeyboard().InlineKeyboard),
	} {
		for _, row := range kb {
			for _, d := range row {
				if len(d) > 64 {
					t.Fatalf("callback data %q exceeds 64 bytes", d)
				}
			}
		}
	}
}

func buttonData(rows [][]tgbotapi.InlineKeyboardButton) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		var r []string
		for _, b := range row {
			if b.CallbackData != nil {
				r = append(r, *b.CallbackData)
			}
		}
		out = append(out, r)
	}
	return out
}

func TestChunks(t *testing.T) {
	var lines []string
	for i := 0; i < 10; i++ {
		lines = append(lines, strings.Repeat("a", 29))
	}
	text := strings.Join(lines, "\n")
	parts := chunks(text, 100)
	if len(parts) < 4 {
		t.Fatalf("expected several chunks, got %d", len(parts))
	}
	for _, p := range parts {
		if utf8.RuneCountInString(p) > 100 {
			t.Fatalf("chunk too long: %d", utf8.RuneCountInString(p))
		}
	}
	if strings.Join(parts, "\n") != text {
		t.Fatal("chunks must rejoin to the original text")
	}

	if got := chunks("short", 100); len(got) != 1 || got[0] != "short" {
		t.Fatalf("short text must be one chunk, got %v", got)
	}
}

func TestChunks_HardCutKeepsEntities(t *testing.T) {
	text := strings.Repeat("a", 97) + "&amp;" + strings.Repeat("b", 10)
	parts := chunks(text, 100)
	if len(parts) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %q", len(parts), parts)
	}
	if parts[0] != strings.Repeat("a", 97) || !strings.HasPrefix(parts[1], "&amp;") {
		t.Fatalf("entity split across chunks: %q", parts)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("привет", 3); got != "при…" {
		t.Fatalf("truncate by runes: %q", got)
	}
	if got := truncate("abc", 3); got != "abc" {
		t.Fatalf("no truncation expected: %q", got)
	}
}

func TestMoney(t *testing.T) {
	if got := money(1250000); got != "1,250,000" {
		t.Fatalf("money = %q", got)
	}
	if got := money(0); got != "0" {
		t.Fatalf("money = %q", got)
	}
}
