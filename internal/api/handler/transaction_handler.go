package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/transactions-api/internal/api/metrics"
	"github.com/sirpyerre/transactions-api/internal/core/ports"
)

// TransactionHandler handles HTTP requests for transaction operations.
// Ownership checks live in the service; the handler only resolves the actor.
type TransactionHandler struct {
	service ports.TransactionService
}

func NewTransactionHandler(service ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: service}
}

// Create handles POST /transactions.
//
// @Summary      Create a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTransactionRequest  true  "Transaction"
// @Success      201   {object}  transactionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	var req createTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.ObserveTransaction("create", err)
		return err
	}

	tx, err := h.service.Create(c.Request().Context(), actor, toCreateInput(req))
	metrics.ObserveTransaction("create", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// List handles GET /transactions. Admins see every transaction, everyone
// else sees their own, newest first.
//
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   transactionResponse
// @Failure      401  {object}  errorResponse
// @Router       /transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}

	txs, err := h.service.List(c.Request().Context(), actor)
	metrics.ObserveTransaction("list", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionList(txs))
}

// Get handles GET /transactions/:id.
//
// @Summary      Get a transaction
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Transaction ID"
// @Success      200  {object}  transactionResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) Get(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := transactionID(c)
	if err != nil {
		return err
	}

	tx, err := h.service.Get(c.Request().Context(), actor, id)
	metrics.ObserveTransaction("get", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// Update handles PUT /transactions/:id. Only the fields present in the body change.
//
// @Summary      Update a transaction
// @Tags         transactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                       true  "Transaction ID"
// @Param        body  body      updateTransactionRequest  true  "Fields to change"
// @Success      200   {object}  transactionResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := transactionID(c)
	if err != nil {
		return err
	}

	var req updateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	tx, err := h.service.Update(c.Request().Context(), actor, id, toPatch(req))
	metrics.ObserveTransaction("update", err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// Delete handles DELETE /transactions/:id.
//
// @Summary      Delete a transaction
// @Tags         transactions
// @Security     BearerAuth
// @Param        id   path  int  true  "Transaction ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	actor, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := transactionID(c)
	if err != nil {
		return err
	}

	err = h.service.Delete(c.Request().Context(), actor, id)
	metrics.ObserveTransaction("delete", err)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func transactionID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid transaction id")
	}
	return id, nil
}
