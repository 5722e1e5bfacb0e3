package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Tee sends every notification through Primary and, for the chat ids listed
// in Mirror, also through Copy. Only the Primary result is returned; copy
// failures are logged.
type Tee struct {
	Primary Notifier
	Copy    Notifier
	Mirror  []int64
}

// Notify implements Notifier.
func (t *Tee) Notify(ctx context.Context, chatID int64, text string) error {
	err := t.Primary.Notify(ctx, chatID, text)
	if t.Copy != nil && t.mirrored(chatID) {
		if cerr := t.Copy.Notify(ctx, chatID, text); cerr != nil {
			log.Warn().Err(cerr).Int64("chat_id", chatID).Msg("notification copy failed")
		}
	}
	return err
}

func (t *Tee) mirrored(chatID int64) bool {
	for _, id := range t.Mirror {
		if id == chatID {
			return true
		}
	}
	return false
}
