package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ErrUnknownMember is returned when an expense references someone outside the group.
var ErrUnknownMember = errors.New("member is not part of the group")

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	store   storage.Store
	metrics *metrics.Metrics
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{store: store, metrics: m}
}

// AddExpense records an expense in a group.
//
// Split entries are resolved to amounts with the requested split method
// (equal when unset). Without payers the caller paid the whole amount; a single
// payer without an amount paid the whole amount.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount.String(),
		"split_method", req.Msg.SplitMethod,
		"splits_count", len(req.Msg.SplitBetween),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	userID, _ := callerID(ctx)

	amount := req.Msg.Amount
	if !amount.IsPositive() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", models.ErrInvalidAmount, amount))
	}

	method := models.SplitMethod(req.Msg.SplitMethod)
	if method == "" {
		method = models.SplitEqual
	}
	owed, err := calculator.ResolveSplit(method, amount, api.SplitModels(req.Msg.SplitBetween))
	if err != nil {
		slog.Warn("AddExpense failed - invalid split", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	paid := api.SplitModels(req.Msg.PaidBy)
	switch {
	case len(paid) == 0:
		paid = []models.Split{{MemberID: userID, Amount: amount}}
	case len(paid) == 1 && paid[0].Amount.IsZero():
		paid[0].Amount = amount
	}

	expense := &models.Expense{
		GroupID:      group.ID,
		Title:        strings.TrimSpace(req.Msg.Title),
		Amount:       amount,
		PaidBy:       paid,
		SplitBetween: owed,
		SplitMethod:  method,
		Date:         req.Msg.Date,
		Category:     req.Msg.Category,
		Notes:        req.Msg.Notes,
	}

	for _, id := range expense.Participants() {
		if id != "" && !group.HasMember(id) {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w: %s", ErrUnknownMember, id))
		}
	}
	if expense.Title == "" {
		expense.Title = generateTitle(group, owed)
	}
	if err := expense.Validate(); err != nil {
		slog.Warn("AddExpense failed - validation", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	// Save to storage (generates ID, CreatedAt and Date)
	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", group.ID, "error", err)
		return nil, storeError(err)
	}
	s.metrics.ExpensesAdded.Inc()

	slog.Info("Expense added", "expense_id", expense.ID, "group_id", group.ID, "title", expense.Title)

	return connect.NewResponse(&api.AddExpenseResponse{Expense: api.FromExpense(expense)}), nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.memberExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: api.FromExpense(expense)}), nil
}

// ListGroupExpenses retrieves a group's expenses in the order they were added.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, req *connect.Request[api.ListGroupExpensesRequest]) (*connect.Response[api.ListGroupExpensesResponse], error) {
	slog.Info("ListGroupExpenses request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListGroupExpenses failed", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, expense := range expenses {
		out[i] = api.FromExpense(expense)
	}

	slog.Info("ListGroupExpenses successful", "group_id", group.ID, "count", len(expenses))

	return connect.NewResponse(&api.ListGroupExpensesResponse{Expenses: out}), nil
}

// SettleExpense marks an expense settled so it no longer counts toward
// balances. Settling a settled expense succeeds without changes.
func (s *ExpenseService) SettleExpense(ctx context.Context, req *connect.Request[api.SettleExpenseRequest]) (*connect.Response[api.SettleExpenseResponse], error) {
	slog.Info("SettleExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, err := s.memberExpense(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, err
	}

	if !expense.Settled {
		if err := s.store.MarkExpenseSettled(ctx, expense.ID); err != nil {
			slog.Error("SettleExpense failed", "expense_id", expense.ID, "error", err)
			return nil, storeError(err)
		}
		expense.Settled = true
		s.metrics.ExpensesSettled.Inc()
		slog.Info("Expense settled", "expense_id", expense.ID, "group_id", expense.GroupID)
	}

	return connect.NewResponse(&api.SettleExpenseResponse{Expense: api.FromExpense(expense)}), nil
}

// memberExpense loads an expense whose group the caller belongs to.
func (s *ExpenseService) memberExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	if expenseID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("expense_id required"))
	}
	if _, err := callerID(ctx); err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		slog.Warn("Expense lookup failed", "expense_id", expenseID, "error", err)
		return nil, storeError(err)
	}
	if _, err := memberGroup(ctx, s.store, expense.GroupID); err != nil {
		return nil, err
	}
	return expense, nil
}

// generateTitle names an expense after the members splitting it.
func generateTitle(group *models.Group, splits []models.Split) string {
	var names []string
	for _, split := range splits {
		if m, ok := group.Member(split.MemberID); ok {
			names = append(names, m.Name)
		}
	}
	if len(names) == 0 {
		return fmt.Sprintf("Expense - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
