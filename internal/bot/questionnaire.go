package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/tbourn/lawdesk/internal/domain"
	"github.com/tbourn/lawdesk/internal/forms"
	"github.com/tbourn/lawdesk/internal/notify"
	"github.com/tbourn/lawdesk/internal/services"
	"github.com/tbourn/lawdesk/internal/session"
)

const (
	// summaryAnswerRunes bounds each answer in the summary so the whole
	// summary fits in one Telegram message.
	summaryAnswerRunes = 450
	// messageRunes is the chunk size for long staff cards.
	messageRunes = 4000
)

func (b *Bot) startCase(ctx context.Context, chatID, uid int64) error {
	q := forms.NewQuestionnaire()
	if err := b.saveSession(ctx, uid, &session.Session{Kind: session.KindQuestionnaire, Questionnaire: q}); err != nil {
		return err
	}
	if err := b.send(chatID, textCaseIntro, nil); err != nil {
		return err
	}
	return b.send(chatID, stepPrompt(q), cancelKeyboard())
}

func stepPrompt(q *forms.Questionnaire) string {
	n := q.Step()
	if n == 0 {
		return ""
	}
	return "📋 <b>" + html.EscapeString(q.Prompt()) + "</b>\n\n" + html.EscapeString(forms.Sections[n-1].Hint)
}

// caseInput handles a message while the questionnaire is active.
func (b *Bot) caseInput(ctx context.Context, m *tgbotapi.Message, s *session.Session) error {
	q := s.Questionnaire
	chatID, uid := m.Chat.ID, m.From.ID
	if q == nil {
		b.dropSession(ctx, uid)
		return b.send(chatID, textStale, mainMenuKeyboard())
	}

	switch q.State {
	case forms.StateAwaitingDocuments:
		return b.documentInput(ctx, m, s)
	case forms.StateViewingSummary:
		return b.send(chatID, textCaseUseButtons, nil)
	}

	if err := q.Answer(m.Text); err != nil {
		if errors.Is(err, forms.ErrEmptyAnswer) {
			return b.send(chatID, textCaseEmpty+"\n\n"+stepPrompt(q), cancelKeyboard())
		}
		return err
	}
	if err := b.saveSession(ctx, uid, s); err != nil {
		return err
	}

	switch q.State {
	case forms.StateAwaitingDocuments:
		return b.send(chatID, documentsText(q), documentsKeyboard())
	case forms.StateViewingSummary:
		return b.sendSummary(chatID, q)
	default:
		return b.send(chatID, stepPrompt(q), cancelKeyboard())
	}
}

func documentsText(q *forms.Questionnaire) string {
	var sb strings.Builder
	sb.WriteString(textDocsIntro)
	if n := len(q.Attachments); n > 0 {
		fmt.Fprintf(&sb, "📊 <b>Documents uploaded: %d</b>\n\n", n)
		for i, a := range q.Attachments {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, html.EscapeString(a.OriginalName))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(textDocsHint)
	return sb.String()
}

// documentInput handles the document phase: files are validated against
// the attachment policy before they are downloaded.
func (b *Bot) documentInput(ctx context.Context, m *tgbotapi.Message, s *session.Session) error {
	q := s.Questionnaire
	chatID := m.Chat.ID

	switch {
	case isLabel(m.Text, LabelDone), isLabel(m.Text, LabelSkip):
		if err := q.Finish(); err != nil {
			return err
		}
		if err := b.saveSession(ctx, m.From.ID, s); err != nil {
			return err
		}
		if err := b.send(chatID, "Please check the questionnaire before sending it.", cancelKeyboard()); err != nil {
			return err
		}
		return b.sendSummary(chatID, q)
	case m.Document != nil:
		return b.acceptFile(ctx, m, s, m.Document.FileID, m.Document.FileName, int64(m.Document.FileSize), false)
	case len(m.Photo) > 0:
		p := m.Photo[len(m.Photo)-1]
		return b.acceptFile(ctx, m, s, p.FileID, forms.PhotoName(b.now()), int64(p.FileSize), true)
	default:
		return b.send(chatID, documentsText(q), documentsKeyboard())
	}
}

func (b *Bot) acceptFile(ctx context.Context, m *tgbotapi.Message, s *session.Session, fileID, name string, size int64, photo bool) error {
	chatID := m.Chat.ID
	if err := b.opts.Policy.Check(name, size); err != nil {
		return b.send(chatID, rejectText(name, err, b.opts.Policy), documentsKeyboard())
	}

	now := b.now()
	stored := name
	if !photo {
		stored = forms.StoredName(name, now)
	}
	dst := uniquePath(filepath.Join(b.opts.UploadDir, stored))
	if _, err := b.Files.Fetch(ctx, fileID, dst, b.opts.Policy.MaxSize); err != nil {
		if errors.Is(err, forms.ErrFileTooLarge) {
			return b.send(chatID, rejectText(name, err, b.opts.Policy), documentsKeyboard())
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("file", name).Msg("attachment transfer failed")
		return b.send(chatID, fmt.Sprintf(textDocsFailed, name), documentsKeyboard())
	}

	q := s.Questionnaire
	if err := q.Attach(forms.Attachment{
		Path:         dst,
		FileType:     forms.FileType(name),
		OriginalName: name,
		UploadedAt:   now.UTC(),
	}); err != nil {
		return err
	}
	if err := b.saveSession(ctx, m.From.ID, s); err != nil {
		return err
	}
	what := fmt.Sprintf("File %q", name)
	if photo {
		what = "Photo"
	}
	return b.send(chatID, fmt.Sprintf(
		"✅ %s uploaded.\nDocuments uploaded: %d\n\nSend more documents or press \"Done\".",
		html.EscapeString(what), len(q.Attachments),
	), documentsKeyboard())
}

func rejectText(name string, err error, p forms.AttachmentPolicy) string {
	if errors.Is(err, forms.ErrFileTooLarge) {
		max := p.MaxSize
		if max <= 0 {
			max = forms.DefaultMaxFileSize
		}
		return fmt.Sprintf("❌ The file %q is too large.\nMaximum size: %.1f MB",
			html.EscapeString(name), float64(max)/(1<<20))
	}
	exts := p.Extensions
	if len(exts) == 0 {
		exts = forms.DefaultExtensions
	}
	return fmt.Sprintf("❌ The file %q has an unsupported type.\nAllowed types: %s",
		html.EscapeString(name), strings.ToUpper(strings.Join(exts, ", ")))
}

func (b *Bot) sendSummary(chatID int64, q *forms.Questionnaire) error {
	return b.send(chatID, summaryText(q), summaryKeyboard())
}

func summaryText(q *forms.Questionnaire) string {
	var sb strings.Builder
	sb.WriteString("📋 <b>" + heading("Case questionnaire summary") + "</b>\n\n")
	for i, s := range forms.Sections {
		answer := q.Answers[i]
		if answer == "" {
			answer = "Not filled in"
		}
		fmt.Fprintf(&sb, "%d. <b>%s</b>\n%s\n\n", i+1, html.EscapeString(heading(s.Title)),
			html.EscapeString(truncate(answer, summaryAnswerRunes)))
	}
	fmt.Fprintf(&sb, "📎 <b>Documents: %d</b>\n\nChoose an action:", len(q.Attachments))
	return sb.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "…"
}

// onCaseCallback handles the summary, edit and submit buttons.
func (b *Bot) onCaseCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) error {
	uid := cq.From.ID
	s, err := b.session(ctx, uid)
	if err != nil {
		return err
	}
	if s == nil || s.Kind != session.KindQuestionnaire || s.Questionnaire == nil {
		b.answer(cq, textStale)
		return nil
	}
	q := s.Questionnaire

	switch data := cq.Data; {
	case data == cbCaseCancel:
		b.answer(cq, "")
		b.dropSession(ctx, uid)
		if err := b.edit(cq, textCaseCancelled, nil); err != nil {
			return err
		}
		return b.send(cq.From.ID, textMainMenu, mainMenuKeyboard())

	case data == cbCaseSubmit:
		return b.submitCase(ctx, cq, q)

	case !q.ReadyToSubmit():
		b.answer(cq, textStale)
		return nil

	case data == cbCaseSummary:
		b.answer(cq, "")
		kb := summaryKeyboard()
		return b.edit(cq, summaryText(q), &kb)

	case data == cbCaseEdit:
		b.answer(cq, "")
		kb := editSectionsKeyboard()
		return b.edit(cq, "Choose a section to edit:", &kb)

	default:
		key := strings.TrimPrefix(data, cbCaseEditKey)
		if err := q.Edit(key); err != nil {
			b.answer(cq, textStale)
			return nil
		}
		if err := b.saveSession(ctx, uid, s); err != nil {
			return err
		}
		b.answer(cq, "")
		i := forms.SectionIndex(key)
		current := q.Answers[i]
		if current == "" {
			current = "Not filled in"
		}
		return b.edit(cq, fmt.Sprintf(
			"✏️ <b>Editing: %s</b>\n\n<b>Current value:</b>\n%s\n\n<b>Documents uploaded:</b> %d\n\nSend the new value or press \"Cancel\".",
			html.EscapeString(forms.Sections[i].Title),
			html.EscapeString(truncate(current, messageRunes/2)),
			len(q.Attachments),
		), nil)
	}
}

// submitCase persists the questionnaire, sends the staff card and the
// documents to the partners chat and clears the session.
func (b *Bot) submitCase(ctx context.Context, cq *tgbotapi.CallbackQuery, q *forms.Questionnaire) error {
	uid := cq.From.ID
	if !q.ReadyToSubmit() {
		b.answer(cq, textStale)
		return nil
	}
	c, err := b.Cases.Submit(ctx, uid, q)
	if errors.Is(err, services.ErrUserNotFound) {
		b.answer(cq, "")
		b.dropSession(ctx, uid)
		return b.edit(cq, textUnknownUser, nil)
	}
	if err != nil {
		return err
	}
	b.answer(cq, "")
	zerolog.Ctx(ctx).Info().Uint("case_id", c.ID).Int("documents", len(q.Attachments)).Msg("case submitted")

	b.sendCaseToStaff(ctx, cq.From, c, q)
	b.dropSession(ctx, uid)

	chatID := uid
	if cq.Message != nil {
		chatID = cq.Message.Chat.ID
		if _, err := b.API.Request(tgbotapi.NewDeleteMessage(chatID, cq.Message.MessageID)); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Msg("delete summary")
		}
	}
	return b.send(chatID, textCaseSubmitted, mainMenuKeyboard())
}

func (b *Bot) sendCaseToStaff(ctx context.Context, from *tgbotapi.User, c *domain.CaseQuestionnaire, q *forms.Questionnaire) {
	chat := b.partnersChat()
	if chat == 0 {
		return
	}
	for _, part := range chunks(caseCard(from, c, q), messageRunes) {
		notify.Deliver(ctx, b.Notifier, chat, part)
	}
	for _, a := range q.Attachments {
		doc := tgbotapi.NewDocument(chat, tgbotapi.FilePath(a.Path))
		doc.Caption = fmt.Sprintf("Case #%d: %s", c.ID, a.OriginalName)
		if _, err := b.API.Send(doc); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("file", a.OriginalName).Uint("case_id", c.ID).Msg("forward document")
		}
	}
}

func caseCard(from *tgbotapi.User, c *domain.CaseQuestionnaire, q *forms.Questionnaire) string {
	sender := domain.User{FirstName: from.FirstName, LastName: from.LastName, Username: from.UserName}
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 <b>New case #%d</b>\n", c.ID)
	fmt.Fprintf(&sb, "From: %s", html.EscapeString(sender.DisplayName()))
	if from.UserName != "" {
		fmt.Fprintf(&sb, " (@%s)", html.EscapeString(from.UserName))
	}
	fmt.Fprintf(&sb, ", id <code>%d</code>\n", from.ID)
	if c.SentAt != nil {
		fmt.Fprintf(&sb, "Sent: %s UTC\n", c.SentAt.UTC().Format("2006-01-02 15:04"))
	}
	sb.WriteString("\n")
	for i, s := range forms.Sections {
		fmt.Fprintf(&sb, "<b>%d. %s</b>\n%s\n\n", i+1, html.EscapeString(heading(s.Title)), html.EscapeString(q.Answers[i]))
	}
	fmt.Fprintf(&sb, "📎 <b>Documents (%d)</b>\n", len(q.Attachments))
	for i, a := range q.Attachments {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, html.EscapeString(a.OriginalName))
	}
	return strings.TrimSpace(sb.String())
}

// chunks splits text into pieces of at most max runes, preferring line
// breaks. A single longer line is cut hard; HTML tags never span lines in
// the texts built here.
func chunks(text string, max int) []string {
	if utf8.RuneCountInString(text) <= max {
		return []string{text}
	}
	var (
		out  []string
		cur  strings.Builder
		size int
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
			size = 0
		}
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf8.RuneCountInString(line)
		if size+n > max {
			flush()
		}
		for n > max {
			r := []rune(line)
			k := cutPoint(r, max)
			out = append(out, string(r[:k]))
			line = string(r[k:])
			n -= k
		}
		cur.WriteString(line)
		size += n
	}
	flush()
	return out
}

// cutPoint returns an index <= max that does not split an HTML entity.
func cutPoint(r []rune, max int) int {
	for i := max - 1; i >= 0 && i > max-10; i-- {
		switch r[i] {
		case ';':
			return max
		case '&':
			if i > 0 {
				return i
			}
			return max
		}
	}
	return max
}
