package api

import (
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

func FromMember(m models.Member) Member {
	return Member{ID: m.ID, Name: m.Name}
}

func (m Member) Model() models.Member {
	return models.Member{ID: m.ID, Name: m.Name}
}

func FromGroup(g *models.Group) *Group {
	out := &Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		Members:     make([]Member, len(g.Members)),
		CreatedAt:   g.CreatedAt,
	}
	for i, m := range g.Members {
		out.Members[i] = FromMember(m)
	}
	return out
}

func (g *Group) Model() models.Group {
	out := models.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Category:    g.Category,
		Members:     make([]models.Member, len(g.Members)),
		CreatedAt:   g.CreatedAt,
	}
	for i, m := range g.Members {
		out.Members[i] = m.Model()
	}
	return out
}

func fromSplits(splits []models.Split) []Split {
	out := make([]Split, len(splits))
	for i, s := range splits {
		out[i] = Split{MemberID: s.MemberID, Amount: s.Amount, Shares: s.Shares, Percentage: s.Percentage}
	}
	return out
}

// SplitModels converts wire split entries to model entries.
func SplitModels(splits []Split) []models.Split {
	out := make([]models.Split, len(splits))
	for i, s := range splits {
		out[i] = models.Split{MemberID: s.MemberID, Amount: s.Amount, Shares: s.Shares, Percentage: s.Percentage}
	}
	return out
}

func FromExpense(e *models.Expense) *Expense {
	return &Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		Amount:       e.Amount,
		PaidBy:       fromSplits(e.PaidBy),
		SplitBetween: fromSplits(e.SplitBetween),
		SplitMethod:  string(e.SplitMethod),
		Date:         e.Date,
		CreatedAt:    e.CreatedAt,
		Category:     e.Category,
		Notes:        e.Notes,
		Settled:      e.Settled,
	}
}

func (e *Expense) Model() models.Expense {
	return models.Expense{
		ID:           e.ID,
		GroupID:      e.GroupID,
		Title:        e.Title,
		Amount:       e.Amount,
		PaidBy:       SplitModels(e.PaidBy),
		SplitBetween: SplitModels(e.SplitBetween),
		SplitMethod:  models.SplitMethod(e.SplitMethod),
		Date:         e.Date,
		CreatedAt:    e.CreatedAt,
		Category:     e.Category,
		Notes:        e.Notes,
		Settled:      e.Settled,
	}
}

func FromSettlement(s models.Settlement) Settlement {
	return Settlement{
		ID:        s.ID,
		GroupID:   s.GroupID,
		From:      FromMember(s.From),
		To:        FromMember(s.To),
		Amount:    s.Amount,
		CreatedAt: s.CreatedAt,
		Status:    string(s.Status),
	}
}

// FromBalances lists balances in iteration order. Identifiers that are not
// group members keep the identifier as their name.
func FromBalances(g *models.Group, b *calculator.Balances) []Balance {
	out := make([]Balance, 0, b.Len())
	for _, id := range b.Members() {
		m, ok := g.Member(id)
		if !ok {
			m = models.Member{ID: id, Name: id}
		}
		out = append(out, Balance{Member: FromMember(m), Amount: b.Get(id)})
	}
	return out
}

func FromUser(u *models.User) *User {
	return &User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}
