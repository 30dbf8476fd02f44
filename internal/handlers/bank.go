package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"example.com/daily-budget/backend/internal/auth"
	"example.com/daily-budget/backend/internal/bank"
	"example.com/daily-budget/backend/internal/link"
	"example.com/daily-budget/backend/internal/models"
	"example.com/daily-budget/backend/internal/repository"
	appsync "example.com/daily-budget/backend/internal/sync"
)

const (
	queryDateLayout   = "2006-01-02"
	defaultWindowDays = 30
)

type BankHandler struct {
	Links        *link.Manager
	Items        *repository.BankItemRepository
	Transactions *repository.TransactionRepository
	Syncer       *appsync.Syncer
	Logger       *slog.Logger
}

// NewBankHandler создает обработчик банковских подключений.
func NewBankHandler(links *link.Manager, items *repository.BankItemRepository, transactions *repository.TransactionRepository, syncer *appsync.Syncer, logger *slog.Logger) *BankHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &BankHandler{
		Links:        links,
		Items:        items,
		Transactions: transactions,
		Syncer:       syncer,
		Logger:       logger,
	}
}

type LinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

type ConsentResultRequest struct {
	Outcome     string `json:"outcome" validate:"required,oneof=success exit"`
	PublicToken string `json:"public_token"`
	ErrorCode   string `json:"error_code"`
}

type CompletionResponse struct {
	Linked        bool                 `json:"linked"`
	Item          *models.BankLinkItem `json:"item,omitempty"`
	ExitErrorCode string               `json:"exit_error_code,omitempty"`
	SyncFailed    bool                 `json:"sync_failed,omitempty"`
}

type ItemsResponse struct {
	Items []models.BankLinkItem `json:"items"`
}

type TransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
}

// Connect начинает подключение нового банка и возвращает link-токен.
func (h *BankHandler) Connect(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	token, err := h.Links.Connect(c.Request().Context(), userID)
	if err != nil {
		return h.linkError(c, err)
	}

	return c.JSON(http.StatusOK, LinkTokenResponse{LinkToken: token.Token, Expiration: token.Expiration})
}

// Reconnect начинает восстановление существующего подключения.
func (h *BankHandler) Reconnect(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	token, err := h.Links.Reconnect(c.Request().Context(), userID, c.Param("itemId"))
	if err != nil {
		return h.linkError(c, err)
	}

	return c.JSON(http.StatusOK, LinkTokenResponse{LinkToken: token.Token, Expiration: token.Expiration})
}

// CompleteConsent принимает исход consent-взаимодействия и завершает
// активный handshake — как connect, так и reconnect.
func (h *BankHandler) CompleteConsent(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	var req ConsentResultRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "validation failed")
	}

	result := link.ConsentResult{
		Outcome:     link.ConsentExit,
		PublicToken: req.PublicToken,
		ErrorCode:   req.ErrorCode,
	}
	if req.Outcome == string(link.ConsentSuccess) {
		if req.PublicToken == "" {
			return badRequest(c, "public_token is required on success")
		}
		result.Outcome = link.ConsentSuccess
	}

	completion, err := h.Links.CompleteConsent(c.Request().Context(), userID, result)
	if err != nil {
		return h.linkError(c, err)
	}

	response := CompletionResponse{
		Linked:        completion.Linked,
		ExitErrorCode: completion.ExitErrorCode,
		SyncFailed:    completion.SyncError != nil,
	}
	if completion.Linked {
		response.Item = &completion.Item
	}

	return c.JSON(http.StatusOK, response)
}

// Remove удаляет подключение. Операция разрушительная и требует
// явного подтверждения confirm=true.
func (h *BankHandler) Remove(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if c.QueryParam("confirm") != "true" {
		return badRequest(c, "removal requires confirm=true")
	}

	if err := h.Links.Remove(c.Request().Context(), userID, c.Param("itemId")); err != nil {
		return h.linkError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListItems возвращает подключения пользователя, предварительно
// подтянув статусы из агрегатора. Недоступность агрегатора не мешает
// отдать сохраненное состояние.
func (h *BankHandler) ListItems(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	if err := h.Links.RefreshStatuses(c.Request().Context(), userID); err != nil {
		h.Logger.Warn("status refresh failed", slog.String("error", err.Error()))
	}

	items, err := h.Items.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, ItemsResponse{Items: items})
}

// Sync вручную перезапускает синхронизацию item в статусе healthy.
func (h *BankHandler) Sync(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	itemID := c.Param("itemId")

	item, err := h.Items.Get(c.Request().Context(), userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound(c, "item not found")
		}
		return serverError(c)
	}

	if item.Status != models.ItemStatusHealthy {
		return conflict(c, "item is not healthy")
	}

	if err := h.Syncer.SyncItem(c.Request().Context(), userID, itemID); err != nil {
		if bank.IsTransient(err) {
			return serviceUnavailable(c, "synchronization temporarily unavailable")
		}
		return badGateway(c, "synchronization failed")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListTransactions возвращает синхронизированные операции за период.
// Без параметров отдается окно в 30 дней до сегодняшнего дня.
func (h *BankHandler) ListTransactions(c echo.Context) error {
	userID, ok := auth.UserIDFromContext(c)
	if !ok {
		return unauthorized(c)
	}

	start, end, err := parseWindow(c.QueryParam("start"), c.QueryParam("end"))
	if err != nil {
		return badRequest(c, err.Error())
	}

	transactions, err := h.Transactions.ListByUser(c.Request().Context(), userID, start, end)
	if err != nil {
		return serverError(c)
	}

	return c.JSON(http.StatusOK, TransactionsResponse{Transactions: transactions})
}

func (h *BankHandler) linkError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, link.ErrHandshakeInFlight):
		return conflict(c, "link handshake already in flight")
	case errors.Is(err, link.ErrInvalidTransition):
		return conflict(c, "no consent flow in progress")
	case errors.Is(err, link.ErrNotReconnectable):
		return conflict(c, "item status does not allow reconnect")
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "item not found")
	case errors.Is(err, link.ErrExchangeFailed):
		return badGateway(c, "token exchange failed")
	case bank.IsTransient(err):
		return serviceUnavailable(c, "bank backend temporarily unavailable")
	default:
		h.Logger.Error("link operation failed", slog.String("error", err.Error()))
		return serverError(c)
	}
}

func parseWindow(rawStart, rawEnd string) (time.Time, time.Time, error) {
	end := time.Now()
	if rawEnd != "" {
		parsed, err := time.Parse(queryDateLayout, rawEnd)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("end must be formatted as YYYY-MM-DD")
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -defaultWindowDays)
	if rawStart != "" {
		parsed, err := time.Parse(queryDateLayout, rawStart)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("start must be formatted as YYYY-MM-DD")
		}
		start = parsed
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, errors.New("start must not be after end")
	}

	return start, end, nil
}
