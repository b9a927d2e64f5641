// Package api defines the request and response messages of the settleup.v1
// Connect services. Messages travel as JSON; money is a decimal string.
package api

import "github.com/shopspring/decimal"

type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Group struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Members     []Member `json:"members"`
	CreatedAt   int64    `json:"createdAt"`
}

// Split is a payer contribution or split obligation. Shares and Percentage are
// only read for the matching split method.
type Split struct {
	MemberID   string          `json:"memberId"`
	Amount     decimal.Decimal `json:"amount"`
	Shares     decimal.Decimal `json:"shares"`
	Percentage decimal.Decimal `json:"percentage"`
}

type Expense struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"groupId"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       []Split         `json:"paidBy"`
	SplitBetween []Split         `json:"splitBetween"`
	SplitMethod  string          `json:"splitMethod"`
	Date         int64           `json:"date"`
	CreatedAt    int64           `json:"createdAt"`
	Category     string          `json:"category,omitempty"`
	Notes        string          `json:"notes,omitempty"`
	Settled      bool            `json:"settled"`
}

// Balance is a member's net position in a group: positive is owed money,
// negative owes.
type Balance struct {
	Member Member          `json:"member"`
	Amount decimal.Decimal `json:"amount"`
}

type Settlement struct {
	ID        string          `json:"id"`
	GroupID   string          `json:"groupId"`
	From      Member          `json:"from"`
	To        Member          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt int64           `json:"createdAt"`
	Status    string          `json:"status"`
}

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

// AuthService

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
}

type RegisterResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// GroupService

type CreateGroupRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Members     []Member `json:"members"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group *Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type AddMembersRequest struct {
	GroupID string   `json:"groupId"`
	Members []Member `json:"members"`
}

type AddMembersResponse struct {
	Group *Group `json:"group"`
}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances    []Balance    `json:"balances"`
	Settlements []Settlement `json:"settlements"`
}

type GetUserBalanceRequest struct{}

type GetUserBalanceResponse struct {
	UserID          string          `json:"userId"`
	TotalOwed       decimal.Decimal `json:"totalOwed"`
	TotalOwedToUser decimal.Decimal `json:"totalOwedToUser"`
	Net             decimal.Decimal `json:"net"`
	Groups          int32           `json:"groups"`
}

// ExpenseService

type AddExpenseRequest struct {
	GroupID      string          `json:"groupId"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       []Split         `json:"paidBy"`
	SplitBetween []Split         `json:"splitBetween"`
	SplitMethod  string          `json:"splitMethod"`
	Date         int64           `json:"date,omitempty"`
	Category     string          `json:"category,omitempty"`
	Notes        string          `json:"notes,omitempty"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListGroupExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type SettleExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type SettleExpenseResponse struct {
	Expense *Expense `json:"expense"`
}
