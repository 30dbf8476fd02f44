package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/daily-budget/backend/internal/models"
)

type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository создает репозиторий финансовых профилей.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByUser возвращает профиль пользователя вместе с фиксированными
// тратами в порядке их сортировки.
func (r *ProfileRepository) GetByUser(ctx context.Context, userID uuid.UUID) (models.FinancialProfile, error) {
	var profile models.FinancialProfile

	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, income_monthly, savings_monthly, investments_monthly, created_at, updated_at
		 FROM financial_profiles
		 WHERE user_id = $1`,
		userID,
	).Scan(&profile.ID, &profile.UserID, &profile.IncomeMonthly, &profile.SavingsMonthly, &profile.InvestmentsMonthly, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile, ErrNotFound
		}
		return profile, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT label, monthly_amount
		 FROM fixed_expenses
		 WHERE profile_id = $1
		 ORDER BY sort_order`,
		profile.ID,
	)
	if err != nil {
		return profile, err
	}
	defer rows.Close()

	expenses := make([]models.FixedExpense, 0)
	for rows.Next() {
		var expense models.FixedExpense
		if err := rows.Scan(&expense.Label, &expense.MonthlyAmount); err != nil {
			return profile, err
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return profile, err
	}

	profile.FixedExpenses = expenses
	return profile, nil
}

// Replace полностью заменяет профиль пользователя: запись профиля
// апсертится, список фиксированных трат перезаписывается целиком в одной
// транзакции. Частичных обновлений не бывает.
func (r *ProfileRepository) Replace(ctx context.Context, userID uuid.UUID, profile models.FinancialProfile) (models.FinancialProfile, error) {
	var saved models.FinancialProfile

	for _, expense := range profile.FixedExpenses {
		if strings.TrimSpace(expense.Label) == "" {
			return saved, ErrInvalid
		}
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return saved, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = tx.QueryRow(ctx,
		`INSERT INTO financial_profiles (user_id, income_monthly, savings_monthly, investments_monthly)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id) DO UPDATE
		 SET income_monthly = EXCLUDED.income_monthly,
		     savings_monthly = EXCLUDED.savings_monthly,
		     investments_monthly = EXCLUDED.investments_monthly,
		     updated_at = NOW()
		 RETURNING id, user_id, income_monthly, savings_monthly, investments_monthly, created_at, updated_at`,
		userID, profile.IncomeMonthly, profile.SavingsMonthly, profile.InvestmentsMonthly,
	).Scan(&saved.ID, &saved.UserID, &saved.IncomeMonthly, &saved.SavingsMonthly, &saved.InvestmentsMonthly, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return saved, err
	}

	_, err = tx.Exec(ctx, `DELETE FROM fixed_expenses WHERE profile_id = $1`, saved.ID)
	if err != nil {
		return saved, err
	}

	for idx, expense := range profile.FixedExpenses {
		_, err = tx.Exec(ctx,
			`INSERT INTO fixed_expenses (id, profile_id, label, monthly_amount, sort_order)
			 VALUES ($1, $2, $3, $4, $5)`,
			uuid.New(), saved.ID, expense.Label, expense.MonthlyAmount, idx,
		)
		if err != nil {
			return saved, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return saved, err
	}

	saved.FixedExpenses = profile.FixedExpenses
	return saved, nil
}
