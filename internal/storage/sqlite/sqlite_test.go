package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"spendsplit/internal/models"
	"spendsplit/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "spendsplit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, email, name string) *models.User {
	t.Helper()

	user := models.NewUser(email, name, "hashed-password")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUserStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamp", func(t *testing.T) {
		user := models.NewUser("alice@example.com", "Alice", "hash")
		if err := store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByEmail retrieves user", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "alice@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected user, got nil")
		}
		if got.Name != "Alice" {
			t.Errorf("Name mismatch: got %s, want Alice", got.Name)
		}
	})

	t.Run("GetUserByEmail returns nil for unknown email", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "nobody@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got != nil {
			t.Errorf("Expected nil, got %+v", got)
		}
	})

	t.Run("GetUsersByIDs omits missing IDs", func(t *testing.T) {
		bob := createTestUser(t, store, "bob@example.com", "Bob")

		users, err := store.GetUsersByIDs(ctx, []string{bob.ID, "missing-id"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("Expected 1 user, got %d", len(users))
		}
		if users[bob.ID].Email != "bob@example.com" {
			t.Errorf("Email mismatch: got %s", users[bob.ID].Email)
		}
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "Alice Again", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("Expected error for duplicate email, got nil")
		}
	})
}

func TestCategoryStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "carol@example.com", "Carol")

	t.Run("CreateCategory and GetCategory", func(t *testing.T) {
		category := &models.Category{
			UserID: user.ID,
			Name:   "Groceries",
			Type:   models.CategoryExpense,
		}
		if err := store.CreateCategory(ctx, category); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}

		got, err := store.GetCategory(ctx, category.ID, user.ID)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if got.Name != "Groceries" {
			t.Errorf("Name mismatch: got %s", got.Name)
		}
		if got.Budget.Valid {
			t.Error("Expected no budget on new category")
		}
	})

	t.Run("UpdateCategoryBudget round-trips decimal", func(t *testing.T) {
		category := &models.Category{UserID: user.ID, Name: "Dining", Type: models.CategoryExpense}
		if err := store.CreateCategory(ctx, category); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}

		budget := decimal.RequireFromString("250.50")
		if err := store.UpdateCategoryBudget(ctx, category.ID, user.ID, budget); err != nil {
			t.Fatalf("UpdateCategoryBudget failed: %v", err)
		}

		got, err := store.GetCategory(ctx, category.ID, user.ID)
		if err != nil {
			t.Fatalf("GetCategory failed: %v", err)
		}
		if !got.Budget.Valid || !got.Budget.Decimal.Equal(budget) {
			t.Errorf("Budget mismatch: got %+v, want %s", got.Budget, budget)
		}
	})

	t.Run("GetCategory scoped to owner", func(t *testing.T) {
		other := createTestUser(t, store, "dave@example.com", "Dave")
		category := &models.Category{UserID: user.ID, Name: "Travel", Type: models.CategoryExpense}
		if err := store.CreateCategory(ctx, category); err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}

		_, err := store.GetCategory(ctx, category.ID, other.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for other user, got %v", err)
		}
	})

	t.Run("CreateCategories batch insert", func(t *testing.T) {
		fresh := createTestUser(t, store, "erin@example.com", "Erin")
		batch := []*models.Category{
			{UserID: fresh.ID, Name: "Salary", Type: models.CategoryIncome},
			{UserID: fresh.ID, Name: "Rent", Type: models.CategoryExpense},
		}
		if err := store.CreateCategories(ctx, batch); err != nil {
			t.Fatalf("CreateCategories failed: %v", err)
		}

		list, err := store.ListCategories(ctx, fresh.ID)
		if err != nil {
			t.Fatalf("ListCategories failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("Expected 2 categories, got %d", len(list))
		}
		// Sorted by name.
		if list[0].Name != "Rent" || list[1].Name != "Salary" {
			t.Errorf("Unexpected order: %s, %s", list[0].Name, list[1].Name)
		}
	})
}

func TestTransactionStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := createTestUser(t, store, "frank@example.com", "Frank")

	category := &models.Category{UserID: user.ID, Name: "Food", Type: models.CategoryExpense}
	if err := store.CreateCategory(ctx, category); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	t.Run("CreateTransaction and GetTransaction", func(t *testing.T) {
		txn := &models.Transaction{
			UserID:      user.ID,
			CategoryID:  category.ID,
			Type:        models.CategoryExpense,
			Amount:      decimal.RequireFromString("12.34"),
			Description: "lunch",
			Date:        time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		got, err := store.GetTransaction(ctx, txn.ID, user.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !got.Amount.Equal(txn.Amount) {
			t.Errorf("Amount mismatch: got %s, want %s", got.Amount, txn.Amount)
		}
		if !got.Date.Equal(txn.Date) {
			t.Errorf("Date mismatch: got %s, want %s", got.Date, txn.Date)
		}
	})

	t.Run("ListTransactions newest first", func(t *testing.T) {
		older := &models.Transaction{
			UserID: user.ID, CategoryID: category.ID, Type: models.CategoryExpense,
			Amount: decimal.RequireFromString("5"), Description: "coffee",
			Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		newer := &models.Transaction{
			UserID: user.ID, CategoryID: category.ID, Type: models.CategoryExpense,
			Amount: decimal.RequireFromString("7"), Description: "snack",
			Date: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		}
		for _, txn := range []*models.Transaction{older, newer} {
			if err := store.CreateTransaction(ctx, txn); err != nil {
				t.Fatalf("CreateTransaction failed: %v", err)
			}
		}

		list, err := store.ListTransactions(ctx, user.ID)
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		for i := 1; i < len(list); i++ {
			if list[i-1].Date.Before(list[i].Date) {
				t.Errorf("Transactions out of order at %d: %s before %s", i, list[i-1].Date, list[i].Date)
			}
		}
	})

	t.Run("UpdateTransaction and DeleteTransaction", func(t *testing.T) {
		txn := &models.Transaction{
			UserID: user.ID, CategoryID: category.ID, Type: models.CategoryExpense,
			Amount: decimal.RequireFromString("20"), Description: "taxi",
			Date: time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		txn.Amount = decimal.RequireFromString("22.50")
		txn.Description = "taxi with tip"
		if err := store.UpdateTransaction(ctx, txn); err != nil {
			t.Fatalf("UpdateTransaction failed: %v", err)
		}

		got, err := store.GetTransaction(ctx, txn.ID, user.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !got.Amount.Equal(txn.Amount) || got.Description != "taxi with tip" {
			t.Errorf("Update not applied: %+v", got)
		}

		if err := store.DeleteTransaction(ctx, txn.ID, user.ID); err != nil {
			t.Fatalf("DeleteTransaction failed: %v", err)
		}
		_, err = store.GetTransaction(ctx, txn.ID, user.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("DeleteTransaction scoped to owner", func(t *testing.T) {
		other := createTestUser(t, store, "gina@example.com", "Gina")
		txn := &models.Transaction{
			UserID: user.ID, CategoryID: category.ID, Type: models.CategoryExpense,
			Amount: decimal.RequireFromString("9"), Date: time.Now().UTC(),
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}

		err := store.DeleteTransaction(ctx, txn.ID, other.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for other user, got %v", err)
		}
	})
}

func TestFriendshipStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	t.Run("CreateFriendship defaults to pending", func(t *testing.T) {
		friendship := &models.Friendship{RequesterID: alice.ID, ReceiverID: bob.ID}
		if err := store.CreateFriendship(ctx, friendship); err != nil {
			t.Fatalf("CreateFriendship failed: %v", err)
		}
		if friendship.Status != models.FriendshipPending {
			t.Errorf("Status mismatch: got %s", friendship.Status)
		}
	})

	t.Run("GetFriendshipBetween finds either direction", func(t *testing.T) {
		got, err := store.GetFriendshipBetween(ctx, bob.ID, alice.ID)
		if err != nil {
			t.Fatalf("GetFriendshipBetween failed: %v", err)
		}
		if got == nil {
			t.Fatal("Expected friendship, got nil")
		}
		if got.RequesterID != alice.ID {
			t.Errorf("RequesterID mismatch: got %s", got.RequesterID)
		}
	})

	t.Run("ListFriendships pending lists incoming only", func(t *testing.T) {
		outgoing, err := store.ListFriendships(ctx, alice.ID, models.FriendshipPending)
		if err != nil {
			t.Fatalf("ListFriendships failed: %v", err)
		}
		if len(outgoing) != 0 {
			t.Errorf("Expected no incoming requests for requester, got %d", len(outgoing))
		}

		incoming, err := store.ListFriendships(ctx, bob.ID, models.FriendshipPending)
		if err != nil {
			t.Fatalf("ListFriendships failed: %v", err)
		}
		if len(incoming) != 1 {
			t.Errorf("Expected 1 incoming request, got %d", len(incoming))
		}
	})

	t.Run("UpdateFriendshipStatus then ACCEPTED visible both ways", func(t *testing.T) {
		friendship, err := store.GetFriendshipBetween(ctx, alice.ID, bob.ID)
		if err != nil || friendship == nil {
			t.Fatalf("GetFriendshipBetween failed: %v", err)
		}

		if err := store.UpdateFriendshipStatus(ctx, friendship.ID, models.FriendshipAccepted); err != nil {
			t.Fatalf("UpdateFriendshipStatus failed: %v", err)
		}

		for _, userID := range []string{alice.ID, bob.ID} {
			accepted, err := store.ListFriendships(ctx, userID, models.FriendshipAccepted)
			if err != nil {
				t.Fatalf("ListFriendships failed: %v", err)
			}
			if len(accepted) != 1 {
				t.Errorf("Expected 1 accepted friendship for %s, got %d", userID, len(accepted))
			}
		}
	})
}

func TestGroupStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	carol := createTestUser(t, store, "carol@example.com", "Carol")

	group := &models.Group{
		Name: "Trip",
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID},
		},
	}

	t.Run("CreateGroup persists members with role defaults", func(t *testing.T) {
		if err := store.CreateGroup(ctx, group); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		if group.ID == "" {
			t.Error("Expected group ID to be generated")
		}

		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 2 {
			t.Fatalf("Expected 2 members, got %d", len(got.Members))
		}
		roles := map[string]models.GroupRole{}
		for _, m := range got.Members {
			roles[m.UserID] = m.Role
		}
		if roles[alice.ID] != models.RoleAdmin {
			t.Errorf("Expected admin role for creator, got %s", roles[alice.ID])
		}
		if roles[bob.ID] != models.RoleMember {
			t.Errorf("Expected member role default, got %s", roles[bob.ID])
		}
	})

	t.Run("IsGroupMember", func(t *testing.T) {
		ok, err := store.IsGroupMember(ctx, group.ID, bob.ID)
		if err != nil || !ok {
			t.Errorf("Expected bob to be a member: ok=%v err=%v", ok, err)
		}
		ok, err = store.IsGroupMember(ctx, group.ID, carol.ID)
		if err != nil || ok {
			t.Errorf("Expected carol not to be a member: ok=%v err=%v", ok, err)
		}
	})

	t.Run("ListGroupsByUser", func(t *testing.T) {
		groups, err := store.ListGroupsByUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(groups) != 1 || groups[0].ID != group.ID {
			t.Errorf("Unexpected groups: %+v", groups)
		}

		none, err := store.ListGroupsByUser(ctx, carol.ID)
		if err != nil {
			t.Fatalf("ListGroupsByUser failed: %v", err)
		}
		if len(none) != 0 {
			t.Errorf("Expected no groups for carol, got %d", len(none))
		}
	})
}

func TestExpenseStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	group := &models.Group{
		Name: "Flat",
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	newExpense := func(groupID string) *models.Expense {
		return &models.Expense{
			GroupID:     groupID,
			PayerID:     alice.ID,
			Amount:      decimal.RequireFromString("60"),
			Description: "groceries",
			SplitType:   models.SplitEqual,
			Date:        time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			Participants: []models.Participant{
				{UserID: alice.ID, Paid: decimal.RequireFromString("60"), Share: decimal.RequireFromString("30")},
				{UserID: bob.ID, Paid: decimal.Zero, Share: decimal.RequireFromString("30")},
			},
		}
	}

	t.Run("CreateExpense and GetExpense round-trip", func(t *testing.T) {
		expense := newExpense(group.ID)
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.GroupID != group.ID {
			t.Errorf("GroupID mismatch: got %s", got.GroupID)
		}
		if len(got.Participants) != 2 {
			t.Fatalf("Expected 2 participants, got %d", len(got.Participants))
		}
		if !got.Amount.Equal(expense.Amount) {
			t.Errorf("Amount mismatch: got %s", got.Amount)
		}
	})

	t.Run("One-off expense stores null group", func(t *testing.T) {
		expense := newExpense("")
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.IsGrouped() {
			t.Error("Expected one-off expense")
		}
		if _, ok := got.Scope().ExpenseID(); !ok {
			t.Errorf("Expected expense scope, got %s", got.Scope())
		}
	})

	t.Run("UpdateExpense replaces participant set", func(t *testing.T) {
		expense := newExpense(group.ID)
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		expense.Amount = decimal.RequireFromString("90")
		expense.Participants = []models.Participant{
			{UserID: alice.ID, Paid: decimal.RequireFromString("90"), Share: decimal.RequireFromString("45")},
			{UserID: bob.ID, Paid: decimal.Zero, Share: decimal.RequireFromString("45")},
		}
		if err := store.UpdateExpense(ctx, expense); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, expense.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("90")) {
			t.Errorf("Amount mismatch after update: got %s", got.Amount)
		}
		for _, p := range got.Participants {
			if p.UserID == bob.ID && !p.Share.Equal(decimal.RequireFromString("45")) {
				t.Errorf("Share mismatch after update: got %s", p.Share)
			}
		}
	})

	t.Run("DeleteExpense cascades to participants and settlements", func(t *testing.T) {
		expense := newExpense("")
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		scope := models.ExpenseScope(expense.ID)
		settlements := []*models.Settlement{
			{FromUserID: bob.ID, ToUserID: alice.ID, Amount: decimal.RequireFromString("30")},
		}
		if err := store.ReplaceSettlements(ctx, scope, settlements); err != nil {
			t.Fatalf("ReplaceSettlements failed: %v", err)
		}

		if err := store.DeleteExpense(ctx, expense.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}

		_, err := store.GetExpense(ctx, expense.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}

		remaining, err := store.ListSettlements(ctx, scope)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("Expected settlements to cascade, got %d", len(remaining))
		}
	})
}

func TestLedgerStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")

	group := &models.Group{
		Name: "Ski",
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("ApplyBalanceDeltas inserts then increments", func(t *testing.T) {
		first := []models.UserAmount{
			{UserID: alice.ID, Amount: decimal.RequireFromString("30")},
			{UserID: bob.ID, Amount: decimal.RequireFromString("-30")},
		}
		if err := store.ApplyBalanceDeltas(ctx, group.ID, first); err != nil {
			t.Fatalf("ApplyBalanceDeltas failed: %v", err)
		}

		second := []models.UserAmount{
			{UserID: alice.ID, Amount: decimal.RequireFromString("-10.10")},
			{UserID: bob.ID, Amount: decimal.RequireFromString("10.10")},
		}
		if err := store.ApplyBalanceDeltas(ctx, group.ID, second); err != nil {
			t.Fatalf("ApplyBalanceDeltas failed: %v", err)
		}

		balances, err := store.ListGroupBalances(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListGroupBalances failed: %v", err)
		}
		if len(balances) != 2 {
			t.Fatalf("Expected 2 balance rows, got %d", len(balances))
		}

		sum := decimal.Zero
		byUser := map[string]decimal.Decimal{}
		for _, b := range balances {
			byUser[b.UserID] = b.Balance
			sum = sum.Add(b.Balance)
		}
		if !byUser[alice.ID].Equal(decimal.RequireFromString("19.90")) {
			t.Errorf("Alice balance mismatch: got %s", byUser[alice.ID])
		}
		if !byUser[bob.ID].Equal(decimal.RequireFromString("-19.90")) {
			t.Errorf("Bob balance mismatch: got %s", byUser[bob.ID])
		}
		if !sum.IsZero() {
			t.Errorf("Group balances must sum to zero, got %s", sum)
		}
	})

	t.Run("exact decimal accumulation", func(t *testing.T) {
		// 0.1 added ten times must be exactly 1, not 0.9999999999999999.
		fresh := &models.Group{Name: "Cents", Members: []models.GroupMember{{UserID: alice.ID}}}
		if err := store.CreateGroup(ctx, fresh); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		tenth := decimal.RequireFromString("0.1")
		for i := 0; i < 10; i++ {
			deltas := []models.UserAmount{{UserID: alice.ID, Amount: tenth}}
			if err := store.ApplyBalanceDeltas(ctx, fresh.ID, deltas); err != nil {
				t.Fatalf("ApplyBalanceDeltas failed: %v", err)
			}
		}

		balances, err := store.ListGroupBalances(ctx, fresh.ID)
		if err != nil {
			t.Fatalf("ListGroupBalances failed: %v", err)
		}
		if len(balances) != 1 || !balances[0].Balance.Equal(decimal.NewFromInt(1)) {
			t.Errorf("Expected exactly 1, got %+v", balances)
		}
	})
}

func TestSettlementStore(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, store, "alice@example.com", "Alice")
	bob := createTestUser(t, store, "bob@example.com", "Bob")
	carol := createTestUser(t, store, "carol@example.com", "Carol")

	group := &models.Group{
		Name: "House",
		Members: []models.GroupMember{
			{UserID: alice.ID, Role: models.RoleAdmin},
			{UserID: bob.ID},
			{UserID: carol.ID},
		},
	}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	scope := models.GroupScope(group.ID)

	t.Run("ReplaceSettlements wholesale swap", func(t *testing.T) {
		first := []*models.Settlement{
			{FromUserID: bob.ID, ToUserID: alice.ID, Amount: decimal.RequireFromString("30")},
			{FromUserID: carol.ID, ToUserID: alice.ID, Amount: decimal.RequireFromString("30")},
		}
		if err := store.ReplaceSettlements(ctx, scope, first); err != nil {
			t.Fatalf("ReplaceSettlements failed: %v", err)
		}

		second := []*models.Settlement{
			{FromUserID: carol.ID, ToUserID: alice.ID, Amount: decimal.RequireFromString("15")},
		}
		if err := store.ReplaceSettlements(ctx, scope, second); err != nil {
			t.Fatalf("ReplaceSettlements failed: %v", err)
		}

		got, err := store.ListSettlements(ctx, scope)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("Expected 1 settlement after replace, got %d", len(got))
		}
		if got[0].FromUserID != carol.ID || !got[0].Amount.Equal(decimal.RequireFromString("15")) {
			t.Errorf("Unexpected settlement: %+v", got[0])
		}
		if got[0].Status != models.SettlementPending {
			t.Errorf("Expected PENDING status, got %s", got[0].Status)
		}
		if id, ok := got[0].Scope.GroupID(); !ok || id != group.ID {
			t.Errorf("Scope mismatch: %s", got[0].Scope)
		}
	})

	t.Run("MarkSettlementPaid", func(t *testing.T) {
		settlements, err := store.ListSettlements(ctx, scope)
		if err != nil || len(settlements) == 0 {
			t.Fatalf("ListSettlements failed: %v", err)
		}

		if err := store.MarkSettlementPaid(ctx, settlements[0].ID); err != nil {
			t.Fatalf("MarkSettlementPaid failed: %v", err)
		}

		got, err := store.GetSettlement(ctx, settlements[0].ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if got.Status != models.SettlementPaid {
			t.Errorf("Expected PAID status, got %s", got.Status)
		}
	})

	t.Run("MarkSettlementPaid unknown ID", func(t *testing.T) {
		err := store.MarkSettlementPaid(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Expense scope isolated from group scope", func(t *testing.T) {
		expense := &models.Expense{
			PayerID:   alice.ID,
			Amount:    decimal.RequireFromString("40"),
			SplitType: models.SplitEqual,
			Participants: []models.Participant{
				{UserID: alice.ID, Paid: decimal.RequireFromString("40"), Share: decimal.RequireFromString("20")},
				{UserID: bob.ID, Paid: decimal.Zero, Share: decimal.RequireFromString("20")},
			},
		}
		if err := store.CreateExpense(ctx, expense); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		expenseScope := models.ExpenseScope(expense.ID)

		settlements := []*models.Settlement{
			{FromUserID: bob.ID, ToUserID: alice.ID, Amount: decimal.RequireFromString("20")},
		}
		if err := store.ReplaceSettlements(ctx, expenseScope, settlements); err != nil {
			t.Fatalf("ReplaceSettlements failed: %v", err)
		}

		groupSettlements, err := store.ListSettlements(ctx, scope)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		for _, s := range groupSettlements {
			if _, ok := s.Scope.ExpenseID(); ok {
				t.Errorf("Expense-scoped settlement leaked into group listing: %+v", s)
			}
		}

		expenseSettlements, err := store.ListSettlements(ctx, expenseScope)
		if err != nil {
			t.Fatalf("ListSettlements failed: %v", err)
		}
		if len(expenseSettlements) != 1 {
			t.Errorf("Expected 1 expense-scoped settlement, got %d", len(expenseSettlements))
		}
	})
}
