package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/daily-budget/backend/internal/models"
)

type TransactionRepository struct {
	db *pgxpool.Pool
}

// NewTransactionRepository создает репозиторий операций.
func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// ListByUser возвращает операции пользователя за период по всем items.
func (r *TransactionRepository) ListByUser(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, account_id, amount, date, category, pending
		 FROM transactions
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date DESC, id`,
		userID, start, end,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]models.Transaction, 0)
	for rows.Next() {
		var transaction models.Transaction
		err := rows.Scan(&transaction.ID, &transaction.AccountID, &transaction.Amount, &transaction.Date, &transaction.Category, &transaction.Pending)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return transactions, nil
}

// OutflowTotal возвращает сумму расходов (отрицательных операций) за
// период как положительное число.
func (r *TransactionRepository) OutflowTotal(ctx context.Context, userID uuid.UUID, start, end time.Time) (float64, error) {
	var total float64

	err := r.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(-amount), 0)
		 FROM transactions
		 WHERE user_id = $1 AND amount < 0 AND date >= $2 AND date <= $3`,
		userID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}
