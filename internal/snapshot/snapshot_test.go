package snapshot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

const weekendTrip = `{
  "groups": [
    {
      "id": "1",
      "name": "Weekend Trip",
      "members": [
        {"id": "1", "name": "John Doe", "email": "john@example.com"},
        {"id": "2", "name": "Jane Smith", "email": "jane@example.com"},
        {"id": "3", "name": "Bob Johnson", "email": "bob@example.com"}
      ],
      "createdAt": "2024-01-15T00:00:00.000Z",
      "description": "Beach weekend getaway",
      "category": "Travel"
    }
  ],
  "expenses": [
    {
      "id": "1",
      "groupId": "1",
      "title": "Hotel Booking",
      "amount": 600,
      "paidBy": [{"userId": "1", "amount": 400}, {"userId": "2", "amount": 200}],
      "splitBetween": [
        {"userId": "1", "amount": 200},
        {"userId": "2", "amount": 200},
        {"userId": "3", "amount": 200}
      ],
      "splitMethod": "equal",
      "date": "2024-01-16T00:00:00.000Z",
      "createdAt": "2024-01-10T00:00:00.000Z",
      "settled": false
    },
    {
      "id": "2",
      "groupId": "1",
      "title": "Dinner",
      "amount": 240,
      "paidBy": [{"userId": "3", "amount": 240}],
      "splitBetween": [
        {"userId": "1", "amount": 80, "shares": 1},
        {"userId": "2", "amount": 80, "shares": 1},
        {"userId": "3", "amount": 80, "shares": 1}
      ],
      "splitMethod": "shares",
      "date": "2024-01-17T00:00:00.000Z",
      "createdAt": "2024-01-17T00:00:00.000Z",
      "category": "Food",
      "settled": true
    }
  ]
}`

func TestDecode(t *testing.T) {
	s, err := Decode(strings.NewReader(weekendTrip))
	require.NoError(t, err)

	require.Len(t, s.Groups, 1)
	g, ok := s.Group("1")
	require.True(t, ok)
	assert.Equal(t, "Weekend Trip", g.Name)
	assert.Equal(t, []string{"1", "2", "3"}, g.MemberIDs())
	assert.Equal(t, int64(1705276800), g.CreatedAt)

	expenses := s.GroupExpenses("1")
	require.Len(t, expenses, 2)
	assert.Equal(t, "Hotel Booking", expenses[0].Title)
	assert.True(t, expenses[0].Amount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, "1", expenses[0].PaidBy[0].MemberID)
	assert.Equal(t, models.SplitShares, expenses[1].SplitMethod)
	assert.True(t, expenses[1].SplitBetween[0].Shares.Equal(decimal.NewFromInt(1)))
	assert.True(t, expenses[1].Settled)
	assert.NoError(t, expenses[0].Validate())

	_, ok = s.Group("missing")
	assert.False(t, ok)
	assert.Empty(t, s.GroupExpenses("missing"))
}

func TestDecode_FeedsCalculator(t *testing.T) {
	s, err := Decode(strings.NewReader(weekendTrip))
	require.NoError(t, err)
	g, _ := s.Group("1")

	// The settled dinner is excluded.
	balances := calculator.ComputeBalances(g, s.GroupExpenses(g.ID))
	assert.Equal(t, "200", balances.Get("1").String())
	assert.Equal(t, "0", balances.Get("2").String())
	assert.Equal(t, "-200", balances.Get("3").String())

	settlements := calculator.ComputeSettlements(g, balances)
	require.Len(t, settlements, 1)
	assert.Equal(t, "Bob Johnson", settlements[0].From.Name)
	assert.Equal(t, "John Doe", settlements[0].To.Name)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode(strings.NewReader("{not json"))
	assert.Error(t, err)

	_, err = Decode(strings.NewReader(`{"groups": [{"name": "No ID"}]}`))
	assert.ErrorIs(t, err, ErrMissingID)

	_, err = Decode(strings.NewReader(`{"expenses": [{"title": "No ID"}]}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte(weekendTrip), 0o600))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Expenses, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
