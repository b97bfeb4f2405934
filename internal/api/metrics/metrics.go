// Package metrics defines and registers the custom Prometheus metrics of the
// transactions API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry on
// package init; HTTP request metrics live in the echoprometheus middleware.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sirpyerre/transactions-api/internal/core/domain"
)

const namespace = "transactions_api"

// ── Account metrics ───────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful registrations.
// Label:
//   - role: "admin" (bootstrap user) or "user"
var UsersRegisteredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered, by assigned role.",
	},
	[]string{"role"},
)

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success", "failure" (bad credentials) or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRejectionsTotal counts requests refused by the auth middleware.
// Label:
//   - reason: "missing", "invalid" or "unknown_user"
var TokenRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_rejections_total",
		Help:      "Total number of requests rejected for lack of a valid session token.",
	},
	[]string{"reason"},
)

// ── Transaction metrics ───────────────────────────────────────────────────────

// TransactionOperationsTotal counts transaction use-case calls.
// Labels:
//   - operation: create, get, list, update, delete
//   - result: ok, invalid, not_found, forbidden, error
var TransactionOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transaction_operations_total",
		Help:      "Total number of transaction operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// ObserveTransaction records the outcome of a transaction operation.
func ObserveTransaction(operation string, err error) {
	TransactionOperationsTotal.WithLabelValues(operation, Result(err)).Inc()
}

// ObserveLogin records the outcome of a login attempt.
func ObserveLogin(err error) {
	result := "success"
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		result = "failure"
	case err != nil:
		result = "error"
	}
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}

// Result maps an operation error to its metric label.
func Result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, domain.ErrTransactionNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrForbidden):
		return "forbidden"
	default:
		return "error"
	}
}
