// Package snapshot reads groups and expenses exported by the mobile app so
// balances can be computed offline.
//
// The file is a JSON object with "groups" and "expenses" arrays. Split entries
// name members by "userId", amounts are JSON numbers and dates are ISO 8601
// strings.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

var ErrMissingID = errors.New("missing id")

type file struct {
	Groups   []group   `json:"groups"`
	Expenses []expense `json:"expenses"`
}

type member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Members     []member  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
}

type split struct {
	UserID     string          `json:"userId"`
	Amount     decimal.Decimal `json:"amount"`
	Shares     decimal.Decimal `json:"shares"`
	Percentage decimal.Decimal `json:"percentage"`
}

type expense struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"groupId"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	PaidBy       []split         `json:"paidBy"`
	SplitBetween []split         `json:"splitBetween"`
	SplitMethod  string          `json:"splitMethod"`
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"createdAt"`
	Category     string          `json:"category"`
	Notes        string          `json:"notes"`
	Settled      bool            `json:"settled"`
}

// Snapshot is a decoded export.
type Snapshot struct {
	Groups   []models.Group
	Expenses []models.Expense
}

// Load reads a snapshot file.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return s, nil
}

// Decode parses a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var raw file
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s := &Snapshot{
		Groups:   make([]models.Group, 0, len(raw.Groups)),
		Expenses: make([]models.Expense, 0, len(raw.Expenses)),
	}
	for i, g := range raw.Groups {
		if g.ID == "" {
			return nil, fmt.Errorf("group %d: %w", i, ErrMissingID)
		}
		s.Groups = append(s.Groups, g.model())
	}
	for i, e := range raw.Expenses {
		if e.ID == "" {
			return nil, fmt.Errorf("expense %d: %w", i, ErrMissingID)
		}
		s.Expenses = append(s.Expenses, e.model())
	}
	return s, nil
}

// Group returns the group with the given ID.
func (s *Snapshot) Group(id string) (models.Group, bool) {
	for _, g := range s.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.Group{}, false
}

// GroupExpenses returns the expenses recorded in a group, in file order.
func (s *Snapshot) GroupExpenses(groupID string) []models.Expense {
	var out []models.Expense
	for _, e := range s.Expenses {
		if e.GroupID == groupID {
			out = append(out, e)
		}
	}
	return out
}

func (g group) model() models.Group {
	out := models.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		CreatedAt:   unix(g.CreatedAt),
	}
	for _, m := range g.Members {
		out.Members = append(out.Members, models.Member{ID: m.ID, Name: m.Name})
	}
	return out
}

func (e expense) model() models.Expense {
	return models.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		Amount:       e.Amount,
		PaidBy:       splits(e.PaidBy),
		SplitBetween: splits(e.SplitBetween),
		SplitMethod:  models.SplitMethod(e.SplitMethod),
		Date:         unix(e.Date),
		CreatedAt:    unix(e.CreatedAt),
		Category:     e.Category,
		Notes:        e.Notes,
		Settled:      e.Settled,
	}
}

func splits(in []split) []models.Split {
	out := make([]models.Split, len(in))
	for i, s := range in {
		out[i] = models.Split{MemberID: s.UserID, Amount: s.Amount, Shares: s.Shares, Percentage: s.Percentage}
	}
	return out
}

func unix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}
