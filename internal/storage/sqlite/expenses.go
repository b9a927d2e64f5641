package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const (
	rolePaid = "paid"
	roleOwed = "owed"
)

const expenseColumns = "id, group_id, title, amount_cents, split_method, date, created_at, category, notes, settled"

// CreateExpense persists a new expense with its payer and split entries.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	// Generate IDs if not set
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", expense.GroupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: group %s", storage.ErrNotFound, expense.GroupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Title, toCents(expense.Amount), string(expense.SplitMethod),
		expense.Date, expense.CreatedAt, expense.Category, expense.Notes, expense.Settled,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, expense.ID, rolePaid, expense.PaidBy); err != nil {
		return err
	}
	if err := insertSplits(ctx, tx, expense.ID, roleOwed, expense.SplitBetween); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including its payer and split entries.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadSplits(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves a group's expenses in the order they were recorded.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadSplits(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

// MarkExpenseSettled sets the settled flag. It never clears it.
func (s *SQLiteStore) MarkExpenseSettled(ctx context.Context, expenseID string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE expenses SET settled = 1 WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to settle expense: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check settled rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	return nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, expenseID, role string, splits []models.Split) error {
	for i, split := range splits {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO expense_splits (expense_id, role, position, member_id, amount_cents, shares, percentage)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, expenseID, role, i, split.MemberID, toCents(split.Amount), split.Shares.String(), split.Percentage.String())
		if err != nil {
			return fmt.Errorf("failed to insert %s split: %w", role, err)
		}
	}
	return nil
}

func (s *SQLiteStore) loadSplits(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, member_id, amount_cents, shares, percentage
		FROM expense_splits
		WHERE expense_id = ?
		ORDER BY role, position
	`, expense.ID)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			role, shares, percentage string
			cents                    int64
			split                    models.Split
		)
		if err := rows.Scan(&role, &split.MemberID, &cents, &shares, &percentage); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		split.Amount = fromCents(cents)
		if split.Shares, err = decimal.NewFromString(shares); err != nil {
			return fmt.Errorf("invalid shares for expense %s: %w", expense.ID, err)
		}
		if split.Percentage, err = decimal.NewFromString(percentage); err != nil {
			return fmt.Errorf("invalid percentage for expense %s: %w", expense.ID, err)
		}

		switch role {
		case rolePaid:
			expense.PaidBy = append(expense.PaidBy, split)
		case roleOwed:
			expense.SplitBetween = append(expense.SplitBetween, split)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	var (
		expense models.Expense
		cents   int64
		method  string
	)
	err := row.Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.Title,
		&cents,
		&method,
		&expense.Date,
		&expense.CreatedAt,
		&expense.Category,
		&expense.Notes,
		&expense.Settled,
	)
	if err != nil {
		return nil, err
	}
	expense.Amount = fromCents(cents)
	expense.SplitMethod = models.SplitMethod(method)
	return &expense, nil
}
