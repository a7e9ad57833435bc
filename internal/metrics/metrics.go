// Package metrics defines and registers the custom Prometheus metrics of the
// phonebook service. It is the single source of truth for metric names, labels and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; HTTP request metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "phonebook"

// Flow label values.
const (
	FlowPassword = "password"
	FlowOAuth    = "oauth"
)

// ── Authentication ───────────────────────────────────────────────────────────

// LoginAttemptsTotal counts login attempts.
// Labels:
//   - flow: "password" or "oauth"
//   - result: "success", "invalid_credentials", "not_registered" or "error"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by flow and result.",
	},
	[]string{"flow", "result"},
)

// TokensIssuedTotal counts signed tokens handed out.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of access tokens issued.",
	},
)

// TokenVerificationsTotal counts bearer token checks on protected routes.
// Label:
//   - result: "valid", "invalid" or "missing"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// OAuthUsersProvisionedTotal counts accounts created on first OAuth login.
var OAuthUsersProvisionedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oauth_users_provisioned_total",
		Help:      "Total number of local accounts auto-provisioned from an external identity.",
	},
)
