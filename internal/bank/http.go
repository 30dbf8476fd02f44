package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"example.com/daily-budget/backend/internal/models"
)

const dateLayout = "2006-01-02"

// HTTPClient вызывает REST API банковского агрегатора.
type HTTPClient struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
}

type apiError struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type createLinkTokenRequest struct {
	UserID string `json:"user_id"`
}

type exchangeRequest struct {
	PublicToken string `json:"public_token"`
}

type listItemsRequest struct {
	UserID string `json:"user_id"`
}

type itemRequest struct {
	ItemID string `json:"item_id"`
}

type listTransactionsRequest struct {
	ItemID    string `json:"item_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type accountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

type transactionsResponse struct {
	Transactions []wireTransaction `json:"transactions"`
}

type itemsResponse struct {
	Items []ItemStatusRecord `json:"items"`
}

type wireTransaction struct {
	ID        string  `json:"transaction_id"`
	AccountID string  `json:"account_id"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
	Category  string  `json:"category"`
	Pending   bool    `json:"pending"`
}

// NewHTTPClient создает клиент агрегатора с заданным таймаутом.
func NewHTTPClient(baseURL, clientID, secret string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		secret:   secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// CreateLinkToken запрашивает свежий токен для consent-сессии.
func (c *HTTPClient) CreateLinkToken(ctx context.Context, userID string) (LinkToken, error) {
	var token LinkToken
	err := c.post(ctx, "/link/token/create", createLinkTokenRequest{UserID: userID}, &token)
	return token, err
}

// ExchangePublicToken обменивает одноразовый public-токен на запись item.
func (c *HTTPClient) ExchangePublicToken(ctx context.Context, publicToken string) (ItemRecord, error) {
	var record ItemRecord
	err := c.post(ctx, "/item/public_token/exchange", exchangeRequest{PublicToken: publicToken}, &record)
	return record, err
}

// ListItems возвращает items пользователя с актуальными статусами.
func (c *HTTPClient) ListItems(ctx context.Context, userID string) ([]ItemStatusRecord, error) {
	var response itemsResponse
	if err := c.post(ctx, "/items/get", listItemsRequest{UserID: userID}, &response); err != nil {
		return nil, err
	}
	return response.Items, nil
}

// ListAccounts возвращает полный список счетов item.
func (c *HTTPClient) ListAccounts(ctx context.Context, itemID string) ([]models.Account, error) {
	var response accountsResponse
	if err := c.post(ctx, "/accounts/get", itemRequest{ItemID: itemID}, &response); err != nil {
		return nil, err
	}
	return response.Accounts, nil
}

// ListTransactions возвращает операции item за период.
func (c *HTTPClient) ListTransactions(ctx context.Context, itemID string, start, end time.Time) ([]models.Transaction, error) {
	req := listTransactionsRequest{
		ItemID:    itemID,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
	}

	var response transactionsResponse
	if err := c.post(ctx, "/transactions/get", req, &response); err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(response.Transactions))
	for _, wire := range response.Transactions {
		date, err := time.Parse(dateLayout, wire.Date)
		if err != nil {
			return nil, fmt.Errorf("parse transaction date %q: %w", wire.Date, err)
		}
		transactions = append(transactions, models.Transaction{
			ID:        wire.ID,
			AccountID: wire.AccountID,
			Amount:    wire.Amount,
			Date:      date,
			Category:  wire.Category,
			Pending:   wire.Pending,
		})
	}

	return transactions, nil
}

// RemoveItem удаляет item на стороне агрегатора.
func (c *HTTPClient) RemoveItem(ctx context.Context, itemID string) error {
	return c.post(ctx, "/item/remove", itemRequest{ItemID: itemID}, nil)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Aggregator-Client-Id", c.clientID)
	request.Header.Set("Aggregator-Secret", c.secret)

	response, err := c.httpClient.Do(request)
	if err != nil {
		if isTimeout(err) {
			return fmt.Errorf("%w: %s %v", ErrTransient, path, err)
		}
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if response.StatusCode >= 500 {
		return fmt.Errorf("%w: %s returned %d", ErrTransient, path, response.StatusCode)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		var parsed apiError
		if err := json.Unmarshal(raw, &parsed); err == nil && parsed.ErrorCode != "" {
			return fmt.Errorf("aggregator error %s: %s", parsed.ErrorCode, parsed.ErrorMessage)
		}
		return fmt.Errorf("aggregator error: %s returned %d", path, response.StatusCode)
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}

	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
