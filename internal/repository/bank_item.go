package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/daily-budget/backend/internal/models"
)

type BankItemRepository struct {
	db *pgxpool.Pool
}

// NewBankItemRepository создает репозиторий банковских подключений.
func NewBankItemRepository(db *pgxpool.Pool) *BankItemRepository {
	return &BankItemRepository{db: db}
}

// Upsert сохраняет item после успешного обмена токена.
func (r *BankItemRepository) Upsert(ctx context.Context, item models.BankLinkItem) (models.BankLinkItem, error) {
	var saved models.BankLinkItem

	err := r.db.QueryRow(ctx,
		`INSERT INTO bank_items (item_id, user_id, institution_name, status)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (item_id) DO UPDATE
		 SET institution_name = EXCLUDED.institution_name,
		     status = EXCLUDED.status,
		     updated_at = NOW()
		 RETURNING item_id, user_id, institution_name, status, created_at, updated_at`,
		item.ItemID, item.UserID, item.InstitutionName, item.Status,
	).Scan(&saved.ItemID, &saved.UserID, &saved.InstitutionName, &saved.Status, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return saved, err
	}

	return saved, nil
}

// Get возвращает item пользователя вместе со счетами.
func (r *BankItemRepository) Get(ctx context.Context, userID uuid.UUID, itemID string) (models.BankLinkItem, error) {
	var item models.BankLinkItem

	err := r.db.QueryRow(ctx,
		`SELECT item_id, user_id, institution_name, status, created_at, updated_at
		 FROM bank_items
		 WHERE item_id = $1 AND user_id = $2`,
		itemID, userID,
	).Scan(&item.ItemID, &item.UserID, &item.InstitutionName, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return item, ErrNotFound
		}
		return item, err
	}

	accounts, err := r.accountsForItem(ctx, item.ItemID)
	if err != nil {
		return item, err
	}

	item.Accounts = accounts
	return item, nil
}

// ListByUser возвращает все items пользователя со счетами.
func (r *BankItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BankLinkItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, user_id, institution_name, status, created_at, updated_at
		 FROM bank_items
		 WHERE user_id = $1
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]models.BankLinkItem, 0)
	for rows.Next() {
		var item models.BankLinkItem
		err := rows.Scan(&item.ItemID, &item.UserID, &item.InstitutionName, &item.Status, &item.CreatedAt, &item.UpdatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		accounts, err := r.accountsForItem(ctx, items[i].ItemID)
		if err != nil {
			return nil, err
		}
		items[i].Accounts = accounts
	}

	return items, nil
}

// UpdateStatus переводит item в новый статус.
func (r *BankItemRepository) UpdateStatus(ctx context.Context, userID uuid.UUID, itemID string, status models.ItemStatus) error {
	if !status.Valid() {
		return ErrInvalid
	}

	cmd, err := r.db.Exec(ctx,
		`UPDATE bank_items
		 SET status = $3, updated_at = NOW()
		 WHERE item_id = $1 AND user_id = $2`,
		itemID, userID, status,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete удаляет item вместе со счетами и операциями.
func (r *BankItemRepository) Delete(ctx context.Context, userID uuid.UUID, itemID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `DELETE FROM transactions WHERE item_id = $1`, itemID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM accounts WHERE item_id = $1`, itemID)
	if err != nil {
		return err
	}

	cmd, err := tx.Exec(ctx,
		`DELETE FROM bank_items WHERE item_id = $1 AND user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

// ReplaceData целиком заменяет счета и операции item одной транзакцией.
// Слияния нет: старые строки удаляются, новые вставляются.
func (r *BankItemRepository) ReplaceData(ctx context.Context, userID uuid.UUID, itemID string, accounts []models.Account, transactions []models.Transaction) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	_, err = tx.Exec(ctx, `DELETE FROM transactions WHERE item_id = $1`, itemID)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `DELETE FROM accounts WHERE item_id = $1`, itemID)
	if err != nil {
		return err
	}

	for _, account := range accounts {
		_, err = tx.Exec(ctx,
			`INSERT INTO accounts (account_id, item_id, name, mask, current_balance)
			 VALUES ($1, $2, $3, $4, $5)`,
			account.AccountID, itemID, account.Name, account.Mask, account.CurrentBalance,
		)
		if err != nil {
			return err
		}
	}

	for _, transaction := range transactions {
		_, err = tx.Exec(ctx,
			`INSERT INTO transactions (id, item_id, user_id, account_id, amount, date, category, pending)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			transaction.ID, itemID, userID, transaction.AccountID, transaction.Amount, transaction.Date, transaction.Category, transaction.Pending,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *BankItemRepository) accountsForItem(ctx context.Context, itemID string) ([]models.Account, error) {
	rows, err := r.db.Query(ctx,
		`SELECT account_id, name, mask, current_balance
		 FROM accounts
		 WHERE item_id = $1
		 ORDER BY account_id`,
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.AccountID, &account.Name, &account.Mask, &account.CurrentBalance); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return accounts, nil
}
