package service

import (
	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CreditPolicy decides whether a credit sale may raise a client's balance.
type CreditPolicy interface {
	CheckCreditLimit(client *model.Client, newBalance decimal.Decimal) error
}

// NewCreditPolicy returns the policy named by mode: "enforce" blocks sales over
// the limit, anything else only logs them.
func NewCreditPolicy(mode string, log zerolog.Logger) CreditPolicy {
	if mode == "enforce" {
		return enforcingCreditPolicy{}
	}
	return advisoryCreditPolicy{log: log}
}

type advisoryCreditPolicy struct {
	log zerolog.Logger
}

func (p advisoryCreditPolicy) CheckCreditLimit(client *model.Client, newBalance decimal.Decimal) error {
	if overLimit(client, newBalance) {
		p.log.Warn().
			Str("client_id", client.ID.String()).
			Str("balance", newBalance.StringFixed(2)).
			Str("credit_limit", client.CreditLimit.StringFixed(2)).
			Msg("client over credit limit")
	}
	return nil
}

type enforcingCreditPolicy struct{}

func (enforcingCreditPolicy) CheckCreditLimit(client *model.Client, newBalance decimal.Decimal) error {
	if overLimit(client, newBalance) {
		return apperr.Ef(apperr.CreditLimitExceeded,
			"credit limit of %s exceeded for %s", client.CreditLimit.StringFixed(2), client.Name)
	}
	return nil
}

// A zero limit means no limit was set.
func overLimit(client *model.Client, newBalance decimal.Decimal) bool {
	return client.CreditLimit.IsPositive() && newBalance.GreaterThan(client.CreditLimit)
}
