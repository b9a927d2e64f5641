package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/pkg/api"
)

var (
	bob   = api.Member{ID: "bob", Name: "Bob"}
	carol = api.Member{ID: "carol", Name: "Carol"}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	token, userID := env.register(t, "Alice")

	resp, err := env.groups.CreateGroup(context.Background(), withToken(token, &api.CreateGroupRequest{
		Name:     "Roommates",
		Category: "Home",
		Members:  []api.Member{bob, carol, bob, {Name: "Guest"}},
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" || group.Category != "Home" {
		t.Errorf("unexpected group fields: %+v", group)
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
	if len(group.Members) != 4 {
		t.Fatalf("members: expected 4, got %d", len(group.Members))
	}
	if group.Members[0].ID != userID || group.Members[0].Name != "Alice" {
		t.Errorf("expected caller as first member, got %+v", group.Members[0])
	}
	if group.Members[1] != bob || group.Members[2] != carol {
		t.Errorf("expected member order to be kept, got %+v", group.Members)
	}
	if group.Members[3].ID == "" {
		t.Error("expected generated member ID")
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	token, _ := env.register(t, "Alice")
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, withToken(token, &api.CreateGroupRequest{Name: "  "}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, withToken(token, &api.CreateGroupRequest{
		Name:    "Trip",
		Members: []api.Member{{ID: "x"}},
	}))
	assertCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestGetGroup_Access(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	alice, _ := env.register(t, "Alice")
	mallory, _ := env.register(t, "Mallory")
	ctx := context.Background()
	group := env.createGroup(t, alice, bob)

	got, err := env.groups.GetGroup(ctx, withToken(alice, &api.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if len(got.Msg.Group.Members) != 2 {
		t.Errorf("members: expected 2, got %d", len(got.Msg.Group.Members))
	}

	_, err = env.groups.GetGroup(ctx, withToken(mallory, &api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, withToken(alice, &api.GetGroupRequest{GroupID: "nonexistent-id"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(ctx, withToken(alice, &api.GetGroupRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListGroups_OnlyCallersGroups(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	alice, _ := env.register(t, "Alice")
	dave, _ := env.register(t, "Dave")
	env.createGroup(t, alice, bob)
	env.createGroup(t, alice)
	env.createGroup(t, dave)

	resp, err := env.groups.ListGroups(context.Background(), withToken(alice, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 2 {
		t.Errorf("groups: expected 2, got %d", len(resp.Msg.Groups))
	}
}

func TestAddMembers(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	alice, _ := env.register(t, "Alice")
	ctx := context.Background()
	group := env.createGroup(t, alice, bob)

	resp, err := env.groups.AddMembers(ctx, withToken(alice, &api.AddMembersRequest{
		GroupID: group.ID,
		Members: []api.Member{{ID: "bob", Name: "Robert"}, carol},
	}))
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}

	members := resp.Msg.Group.Members
	if len(members) != 3 {
		t.Fatalf("members: expected 3, got %d", len(members))
	}
	if members[1] != bob {
		t.Errorf("existing member changed: %+v", members[1])
	}
	if members[2] != carol {
		t.Errorf("expected carol appended, got %+v", members[2])
	}

	_, err = env.groups.AddMembers(ctx, withToken(alice, &api.AddMembersRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	alice, _ := env.register(t, "Alice")
	ctx := context.Background()
	group := env.createGroup(t, alice)

	if _, err := env.groups.DeleteGroup(ctx, withToken(alice, &api.DeleteGroupRequest{GroupID: group.ID})); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err := env.groups.GetGroup(ctx, withToken(alice, &api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetGroupBalances(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	alice, aliceID := env.register(t, "Alice")
	ctx := context.Background()
	group := env.createGroup(t, alice, bob, carol)

	added, err := env.expenses.AddExpense(ctx, withToken(alice, &api.AddExpenseRequest{
		GroupID:      group.ID,
		Title:        "Dinner",
		Amount:       dec("90"),
		SplitBetween: []api.Split{{MemberID: aliceID}, {MemberID: "bob"}, {MemberID: "carol"}},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}

	resp, err := env.groups.GetGroupBalances(ctx, withToken(alice, &api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}

	want := []struct {
		id     string
		amount string
	}{{aliceID, "60"}, {"bob", "-30"}, {"carol", "-30"}}
	if len(resp.Msg.Balances) != len(want) {
		t.Fatalf("balances: expected %d, got %d", len(want), len(resp.Msg.Balances))
	}
	for i, w := range want {
		b := resp.Msg.Balances[i]
		if b.Member.ID != w.id || !b.Amount.Equal(dec(w.amount)) {
			t.Errorf("balance %d: expected %s %s, got %s %s", i, w.id, w.amount, b.Member.ID, b.Amount)
		}
	}

	settlements := resp.Msg.Settlements
	if len(settlements) != 2 {
		t.Fatalf("settlements: expected 2, got %d", len(settlements))
	}
	if settlements[0].From.Name != "Bob" || settlements[0].To.ID != aliceID || !settlements[0].Amount.Equal(dec("30")) {
		t.Errorf("unexpected first settlement: %+v", settlements[0])
	}
	if settlements[1].From.ID != "carol" || settlements[1].Status != "pending" {
		t.Errorf("unexpected second settlement: %+v", settlements[1])
	}
	if got := testutil.ToFloat64(env.metrics.SettlementsSuggested); got != 2 {
		t.Errorf("settlements metric: expected 2, got %v", got)
	}

	// Settling the only expense clears every balance.
	if _, err := env.expenses.SettleExpense(ctx, withToken(alice, &api.SettleExpenseRequest{ExpenseID: added.Msg.Expense.ID})); err != nil {
		t.Fatalf("SettleExpense failed: %v", err)
	}
	resp, err = env.groups.GetGroupBalances(ctx, withToken(alice, &api.GetGroupBalancesRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	for _, b := range resp.Msg.Balances {
		if !b.Amount.IsZero() {
			t.Errorf("expected zero balance for %s, got %s", b.Member.ID, b.Amount)
		}
	}
	if len(resp.Msg.Settlements) != 0 {
		t.Errorf("expected no settlements, got %d", len(resp.Msg.Settlements))
	}
}

// A payer total one cent over the amount passes validation but leaves a
// residue the reducer cannot match.
func addCentOverExpense(t *testing.T, env *testEnv, token, payerID, groupID string) {
	t.Helper()
	_, err := env.expenses.AddExpense(context.Background(), withToken(token, &api.AddExpenseRequest{
		GroupID:      groupID,
		Title:        "Taxi",
		Amount:       dec("10.00"),
		PaidBy:       []api.Split{{MemberID: payerID, Amount: dec("10.01")}},
		SplitBetween: []api.Split{{MemberID: "bob"}},
	}))
	if err != nil {
		t.Fatalf("AddExpense failed: %v", err)
	}
}

func TestGetGroupBalances_ResidualPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("error policy rejects residue", func(t *testing.T) {
		env := setupTestServer(t, calculator.ReducerConfig{Policy: calculator.ResidualError})
		alice, aliceID := env.register(t, "Alice")
		group := env.createGroup(t, alice, bob)
		addCentOverExpense(t, env, alice, aliceID, group.ID)

		_, err := env.groups.GetGroupBalances(ctx, withToken(alice, &api.GetGroupBalancesRequest{GroupID: group.ID}))
		assertCode(t, err, connect.CodeFailedPrecondition)
		if got := testutil.ToFloat64(env.metrics.ResidueErrors); got != 1 {
			t.Errorf("residue metric: expected 1, got %v", got)
		}
	})

	t.Run("absorb policy folds residue into last settlement", func(t *testing.T) {
		env := setupTestServer(t, calculator.ReducerConfig{Policy: calculator.ResidualAbsorb})
		alice, aliceID := env.register(t, "Alice")
		group := env.createGroup(t, alice, bob)
		addCentOverExpense(t, env, alice, aliceID, group.ID)

		resp, err := env.groups.GetGroupBalances(ctx, withToken(alice, &api.GetGroupBalancesRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetGroupBalances failed: %v", err)
		}
		if len(resp.Msg.Settlements) != 1 || !resp.Msg.Settlements[0].Amount.Equal(dec("10.01")) {
			t.Errorf("expected one settlement of 10.01, got %+v", resp.Msg.Settlements)
		}
	})
}

func TestGetUserBalance(t *testing.T) {
	env := setupTestServer(t, calculator.ReducerConfig{})
	alice, aliceID := env.register(t, "Alice")
	dave, daveID := env.register(t, "Dave")
	ctx := context.Background()

	trip := env.createGroup(t, alice, bob)
	flat := env.createGroup(t, dave, api.Member{ID: aliceID, Name: "Alice"})

	// Alice is owed 20 on the trip and owes 50 in the flat.
	for _, req := range []struct {
		token string
		msg   *api.AddExpenseRequest
	}{
		{alice, &api.AddExpenseRequest{GroupID: trip.ID, Title: "Fuel", Amount: dec("40"), SplitBetween: []api.Split{{MemberID: aliceID}, {MemberID: "bob"}}}},
		{dave, &api.AddExpenseRequest{GroupID: flat.ID, Title: "Rent", Amount: dec("100"), SplitBetween: []api.Split{{MemberID: daveID}, {MemberID: aliceID}}}},
	} {
		if _, err := env.expenses.AddExpense(ctx, withToken(req.token, req.msg)); err != nil {
			t.Fatalf("AddExpense failed: %v", err)
		}
	}

	resp, err := env.groups.GetUserBalance(ctx, withToken(alice, &api.GetUserBalanceRequest{}))
	if err != nil {
		t.Fatalf("GetUserBalance failed: %v", err)
	}
	if resp.Msg.Groups != 2 {
		t.Errorf("groups: expected 2, got %d", resp.Msg.Groups)
	}
	if !resp.Msg.TotalOwed.Equal(dec("50")) {
		t.Errorf("total owed: expected 50, got %s", resp.Msg.TotalOwed)
	}
	if !resp.Msg.TotalOwedToUser.Equal(dec("20")) {
		t.Errorf("total owed to user: expected 20, got %s", resp.Msg.TotalOwedToUser)
	}
	if !resp.Msg.Net.Equal(dec("-30")) {
		t.Errorf("net: expected -30, got %s", resp.Msg.Net)
	}
}
