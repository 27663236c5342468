// Package storagetest holds behaviour checks shared by every storage.Store
// implementation.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/mmynk/spendwise/internal/models"
	"github.com/mmynk/spendwise/internal/money"
	"github.com/mmynk/spendwise/internal/storage"
)

// Run exercises store against the storage.Store contract. The store must be
// empty and is left open for the caller to close.
func Run(t *testing.T, store storage.Store) {
	ctx := context.Background()

	t.Run("CreateGroup assigns IDs and keeps member order", func(t *testing.T) {
		group := NewGroup(t, store, "owner-1", "Goa Trip", "Alice", "Bob", "Charlie")

		if group.ID == "" {
			t.Fatal("expected group ID to be generated")
		}
		if group.CreatedAt == 0 {
			t.Error("expected CreatedAt to be set")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Name != "Goa Trip" || got.OwnerID != "owner-1" {
			t.Errorf("got group %q owned by %q", got.Name, got.OwnerID)
		}
		if len(got.Members) != 3 {
			t.Fatalf("expected 3 members, got %d", len(got.Members))
		}
		for i, name := range []string{"Alice", "Bob", "Charlie"} {
			if got.Members[i].DisplayName != name {
				t.Errorf("member %d = %q, want %q", i, got.Members[i].DisplayName, name)
			}
			if got.Members[i].ID != group.Members[i].ID {
				t.Errorf("member %d ID = %q, want %q", i, got.Members[i].ID, group.Members[i].ID)
			}
			if got.Members[i].GroupID != group.ID {
				t.Errorf("member %d has group %q", i, got.Members[i].GroupID)
			}
		}
	})

	t.Run("GetGroup unknown ID is ErrNotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "no-such-group")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsByOwner only returns the owner's groups", func(t *testing.T) {
		NewGroup(t, store, "owner-list", "First", "A")
		NewGroup(t, store, "owner-list", "Second", "B", "C")
		NewGroup(t, store, "someone-else", "Other", "D")

		groups, err := store.ListGroupsByOwner(ctx, "owner-list")
		if err != nil {
			t.Fatalf("ListGroupsByOwner failed: %v", err)
		}
		if len(groups) != 2 {
			t.Fatalf("expected 2 groups, got %d", len(groups))
		}
		names := map[string]int{}
		for _, g := range groups {
			names[g.Name] = len(g.Members)
		}
		if names["First"] != 1 || names["Second"] != 2 {
			t.Errorf("unexpected groups/member counts: %v", names)
		}
	})

	t.Run("AddMember and RemoveMember", func(t *testing.T) {
		group := NewGroup(t, store, "owner-2", "Flat", "Alice")

		member := &models.Member{GroupID: group.ID, DisplayName: "Bob"}
		if err := store.AddMember(ctx, member); err != nil {
			t.Fatalf("AddMember failed: %v", err)
		}
		if member.ID == "" {
			t.Fatal("expected member ID to be generated")
		}

		got, err := store.GetMember(ctx, member.ID)
		if err != nil {
			t.Fatalf("GetMember failed: %v", err)
		}
		if got.DisplayName != "Bob" || got.GroupID != group.ID {
			t.Errorf("unexpected member %+v", got)
		}

		members, err := store.ListMembers(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListMembers failed: %v", err)
		}
		if len(members) != 2 || members[1].ID != member.ID {
			t.Errorf("expected Bob appended, got %+v", members)
		}

		if err := store.RemoveMember(ctx, member.ID); err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}
		if _, err := store.GetMember(ctx, member.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after removal, got %v", err)
		}
		if err := store.RemoveMember(ctx, member.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound removing twice, got %v", err)
		}
	})

	t.Run("AddMember to unknown group is ErrNotFound", func(t *testing.T) {
		err := store.AddMember(ctx, &models.Member{GroupID: "no-such-group", DisplayName: "X"})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("RemoveMember refuses members with history", func(t *testing.T) {
		group := NewGroup(t, store, "owner-3", "Dinner", "Alice", "Bob", "Charlie")
		alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID

		NewExpense(t, store, group.ID, alice, "Food", 3000, alice, bob)
		if err := store.CreateSettlement(ctx, &models.Settlement{
			GroupID: group.ID, FromMemberID: charlie, ToMemberID: alice, Amount: 100,
		}); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		for _, id := range []string{alice, bob, charlie} {
			if err := store.RemoveMember(ctx, id); !errors.Is(err, storage.ErrMemberInUse) {
				t.Errorf("RemoveMember(%s) = %v, want ErrMemberInUse", id, err)
			}
		}
	})

	t.Run("expenses round trip with shares", func(t *testing.T) {
		group := NewGroup(t, store, "owner-4", "Trip", "Alice", "Bob", "Charlie")
		alice, bob, charlie := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID

		expense := &models.Expense{
			GroupID:     group.ID,
			Description: "Hotel",
			Amount:      money.MustParse("100.00"),
			Category:    "Stay",
			PaidBy:      bob,
			Shares: []models.Share{
				{MemberID: charlie, Amount: 3334},
				{MemberID: alice, Amount: 3333},
				{MemberID: bob, Amount: 3333},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if expense.ID == "" || expense.CreatedAt == 0 || expense.Date == 0 {
			t.Fatalf("expected ID and timestamps to be set, got %+v", expense)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.Amount != 10000 || got.Category != "Stay" || got.PaidBy != bob || got.Description != "Hotel" {
			t.Errorf("unexpected expense %+v", got)
		}
		if len(got.Shares) != 3 {
			t.Fatalf("expected 3 shares, got %d", len(got.Shares))
		}
		for i, share := range expense.Shares {
			if got.Shares[i] != share {
				t.Errorf("share %d = %+v, want %+v", i, got.Shares[i], share)
			}
		}
	})

	t.Run("ListExpenses filters by category", func(t *testing.T) {
		group := NewGroup(t, store, "owner-5", "Mixed", "Alice", "Bob")
		alice, bob := group.Members[0].ID, group.Members[1].ID

		NewExpense(t, store, group.ID, alice, "Food", 1000, alice, bob)
		NewExpense(t, store, group.ID, bob, "Travel", 2000, alice, bob)
		NewExpense(t, store, group.ID, bob, "Food", 3000, alice)

		all, err := store.ListExpenses(ctx, group.ID, "")
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(all) != 3 {
			t.Errorf("expected 3 expenses, got %d", len(all))
		}

		food, err := store.ListExpenses(ctx, group.ID, "Food")
		if err != nil {
			t.Fatalf("ListExpenses(Food) failed: %v", err)
		}
		if len(food) != 2 {
			t.Fatalf("expected 2 food expenses, got %d", len(food))
		}
		for _, e := range food {
			if e.Category != "Food" {
				t.Errorf("unexpected category %q", e.Category)
			}
			if len(e.Shares) == 0 {
				t.Errorf("expense %s has no shares", e.ID)
			}
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		group := NewGroup(t, store, "owner-6", "Delete", "Alice", "Bob")
		alice, bob := group.Members[0].ID, group.Members[1].ID
		expense := NewExpense(t, store, group.ID, alice, "", 500, alice, bob)

		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := store.DeleteExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
		// Shares are gone too, so Bob can leave.
		if err := store.RemoveMember(ctx, bob); err != nil {
			t.Errorf("RemoveMember after delete failed: %v", err)
		}
	})

	t.Run("settlements are listed newest first", func(t *testing.T) {
		group := NewGroup(t, store, "owner-7", "Settle", "Alice", "Bob")
		alice, bob := group.Members[0].ID, group.Members[1].ID

		first := &models.Settlement{
			GroupID: group.ID, FromMemberID: bob, ToMemberID: alice,
			Amount: 1500, SettledAt: 1000, CreatedBy: "owner-7",
		}
		second := &models.Settlement{
			GroupID: group.ID, FromMemberID: alice, ToMemberID: bob,
			Amount: 200, Note: "Settlement for Food", Category: "Food", SettledAt: 2000,
		}
		for _, s := range []*models.Settlement{first, second} {
			if err := store.CreateSettlement(ctx, s); err != nil {
				t.Fatalf("CreateSettlement failed: %v", err)
			}
		}

		got, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 settlements, got %d", len(got))
		}
		if *got[0] != *second || *got[1] != *first {
			t.Errorf("got %+v, %+v", *got[0], *got[1])
		}
	})

	t.Run("GetSnapshot reads everything", func(t *testing.T) {
		group := NewGroup(t, store, "owner-8", "Snapshot", "Alice", "Bob")
		alice, bob := group.Members[0].ID, group.Members[1].ID
		NewExpense(t, store, group.ID, alice, "Food", 4000, alice, bob)
		if err := store.CreateSettlement(ctx, &models.Settlement{
			GroupID: group.ID, FromMemberID: bob, ToMemberID: alice, Amount: 2000,
		}); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}

		snap, err := store.GetSnapshot(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetSnapshot failed: %v", err)
		}
		if snap.Group.ID != group.ID || len(snap.Group.Members) != 2 {
			t.Errorf("unexpected group %+v", snap.Group)
		}
		if len(snap.Expenses) != 1 || len(snap.Expenses[0].Shares) != 2 {
			t.Errorf("unexpected expenses %+v", snap.Expenses)
		}
		if len(snap.Settlements) != 1 {
			t.Errorf("expected 1 settlement, got %d", len(snap.Settlements))
		}

		if _, err := store.GetSnapshot(ctx, "no-such-group"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteGroup removes everything", func(t *testing.T) {
		group := NewGroup(t, store, "owner-9", "Gone", "Alice", "Bob")
		alice, bob := group.Members[0].ID, group.Members[1].ID
		expense := NewExpense(t, store, group.ID, alice, "Food", 4000, alice, bob)

		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for group, got %v", err)
		}
		if _, err := store.GetExpense(ctx, expense.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for expense, got %v", err)
		}
		if _, err := store.GetMember(ctx, alice); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound for member, got %v", err)
		}
		if err := store.DeleteGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound deleting twice, got %v", err)
		}
	})

	t.Run("users", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if *byEmail != *user {
			t.Errorf("GetUserByEmail = %+v, want %+v", byEmail, user)
		}

		byID, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if byID.Email != user.Email {
			t.Errorf("GetUserByID email = %q", byID.Email)
		}

		dup := models.NewUser("alice@example.com", "Other Alice", "hash2")
		if err := store.CreateUser(ctx, dup); !errors.Is(err, storage.ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}

		if _, err := store.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.GetUserByID(ctx, "no-such-user"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

// NewGroup creates a group with one member per display name.
func NewGroup(t *testing.T, store storage.Store, ownerID, name string, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{Name: name, OwnerID: ownerID}
	for _, m := range members {
		group.Members = append(group.Members, models.Member{DisplayName: m})
	}
	if err := store.CreateGroup(context.Background(), group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return group
}

// NewExpense records an expense split equally between the given member IDs.
func NewExpense(t *testing.T, store storage.Store, groupID, paidBy, category string, cents int64, between ...string) *models.Expense {
	t.Helper()
	total := money.FromCents(cents)
	parts := total.Split(len(between))
	expense := &models.Expense{
		GroupID:     groupID,
		Description: "expense",
		Amount:      total,
		Category:    category,
		PaidBy:      paidBy,
	}
	for i, id := range between {
		expense.Shares = append(expense.Shares, models.Share{MemberID: id, Amount: parts[i]})
	}
	if err := store.CreateExpense(context.Background(), expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return expense
}
