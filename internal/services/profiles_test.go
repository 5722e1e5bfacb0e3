package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tbourn/lawdesk/internal/forms"
)

func completedProfile(t *testing.T) *forms.ProfileForm {
	t.Helper()
	f := forms.NewProfileForm()
	for _, in := range []string{"Jane Doe", "Doe & Co", "+7 (912) 345-67-89", "jane@example.com", "Tax law", "12"} {
		if err := f.Answer(in); err != nil {
			t.Fatalf("Answer(%q): %v", in, err)
		}
	}
	if !f.Done() {
		t.Fatalf("profile form not done")
	}
	return f
}

func TestProfileService_SaveAndUpdate(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, 100, "Jane")
	rec := &recorder{}
	s := &ProfileService{DB: db, Notifier: rec, PartnersChatID: -200}
	ctx := context.Background()

	p, created, err := s.Save(ctx, 100, completedProfile(t))
	if err != nil || !created {
		t.Fatalf("Save: created=%v err=%v", created, err)
	}
	if p.FullName != "Jane Doe" || p.Experience != 12 || p.Email != "jane@example.com" {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if err := s.SetConsent(ctx, 100, true); err != nil {
		t.Fatalf("SetConsent: %v", err)
	}

	_, created, err = s.Save(ctx, 100, completedProfile(t))
	if err != nil || created {
		t.Fatalf("second Save: created=%v err=%v", created, err)
	}
	got, err := s.Get(ctx, 100)
	if err != nil || !got.ConsentToShareData {
		t.Fatalf("consent lost on update: %+v, %v", got, err)
	}

	msgs := rec.to(-200)
	if len(msgs) != 2 || !strings.Contains(msgs[0].Text, "registered") || !strings.Contains(msgs[1].Text, "updated") {
		t.Fatalf("unexpected partner notices: %+v", msgs)
	}
	if !strings.Contains(msgs[0].Text, "Doe &amp; Co") {
		t.Fatalf("company name not escaped: %q", msgs[0].Text)
	}
}

func TestProfileService_Errors(t *testing.T) {
	db := newSvcDB(t)
	seedUser(t, db, 100, "Jane")
	s := &ProfileService{DB: db}
	ctx := context.Background()

	if _, _, err := s.Save(ctx, 100, forms.NewProfileForm()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady, got %v", err)
	}
	if _, _, err := s.Save(ctx, 999, completedProfile(t)); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.Get(ctx, 100); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
	if err := s.SetConsent(ctx, 100, true); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}
