package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/lawdesk/internal/domain"
)

func TestCreateUser_DuplicateTelegramID(t *testing.T) {
	db := newRepoDB(t)
	mustUser(t, db, 100, "Ann", "ann")

	err := CreateUser(context.Background(), db, &domain.User{TelegramID: 100, FirstName: "Dup"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestGetUserByTelegramID_NotFound(t *testing.T) {
	db := newRepoDB(t)
	_, err := GetUserByTelegramID(context.Background(), db, 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateUserNames(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	u := mustUser(t, db, 1, "Ann", "ann")

	if err := UpdateUserNames(ctx, db, u.ID, "annie", "Anna", "Smith"); err != nil {
		t.Fatalf("UpdateUserNames: %v", err)
	}
	got, err := GetUser(ctx, db, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "annie" || got.FirstName != "Anna" || got.LastName != "Smith" {
		t.Fatalf("names not updated: %+v", got)
	}
	if err := UpdateUserNames(ctx, db, 9999, "x", "y", "z"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing user, got %v", err)
	}
}

func TestListUsersPage_SearchEscapesWildcards(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	mustUser(t, db, 1, "Ann", "ann_law")
	mustUser(t, db, 2, "Bob", "bobby")
	mustUser(t, db, 3, "Carl", "annex")

	n, err := CountUsers(ctx, db, UserFilter{Search: "ANN"})
	if err != nil || n != 2 {
		t.Fatalf("CountUsers(ANN) = %d, %v; want 2", n, err)
	}
	// "_" must be literal, so only ann_law matches.
	rows, err := ListUsersPage(ctx, db, UserFilter{Search: "n_l"}, 0, 10)
	if err != nil {
		t.Fatalf("ListUsersPage: %v", err)
	}
	if len(rows) != 1 || rows[0].Username != "ann_law" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestListPartners_OnlyUsersWithProfile(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	a := mustUser(t, db, 1, "Ann", "ann")
	mustUser(t, db, 2, "Bob", "bob")
	mustProfile(t, db, a.ID, "Ann Smith")

	out, err := ListPartners(ctx, db)
	if err != nil {
		t.Fatalf("ListPartners: %v", err)
	}
	if len(out) != 1 || out[0].ID != a.ID || out[0].Profile == nil || out[0].Profile.FullName != "Ann Smith" {
		t.Fatalf("unexpected partners: %+v", out)
	}
}

func TestListUsersWithoutProfile_AndTelegramIDs(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	a := mustUser(t, db, 10, "Ann", "ann")
	b := mustUser(t, db, 20, "Bob", "bob")
	c := mustUser(t, db, 30, "Cid", "cid")
	mustProfile(t, db, a.ID, "Ann Smith")
	if err := SetUserActive(ctx, db, c.ID, false); err != nil {
		t.Fatalf("SetUserActive: %v", err)
	}

	out, err := ListUsersWithoutProfile(ctx, db, time.Now().UTC().Add(time.Minute))
	if err != nil {
		t.Fatalf("ListUsersWithoutProfile: %v", err)
	}
	if len(out) != 1 || out[0].ID != b.ID {
		t.Fatalf("expected only Bob, got %+v", out)
	}

	ids, err := ListTelegramIDs(ctx, db, nil)
	if err != nil || len(ids) != 1 || ids[0] != 10 {
		t.Fatalf("ListTelegramIDs(all partners) = %v, %v", ids, err)
	}
	ids, err = ListTelegramIDs(ctx, db, []int64{20, 30, 77})
	if err != nil || len(ids) != 1 || ids[0] != 20 {
		t.Fatalf("ListTelegramIDs(explicit) = %v, %v", ids, err)
	}
}
