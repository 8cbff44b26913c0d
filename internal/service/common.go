package service

import (
	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/ws"
	"go-pos-ledger/pkg/validator"

	"github.com/shopspring/decimal"
)

// Actor is the operator on whose behalf an event runs.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a Actor) orSystem() Actor {
	if a.ID == "" {
		return Actor{ID: "system", Name: "system"}
	}
	return a
}

// Notifier receives events once their transaction committed.
type Notifier interface {
	Publish(evt ws.Event)
}

type nopNotifier struct{}

func (nopNotifier) Publish(ws.Event) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

var hundred = decimal.NewFromInt(100)

// money rounds an amount to cents.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns base * rate / 100 rounded to cents.
func percentOf(base, rate decimal.Decimal) decimal.Decimal {
	return money(base.Mul(rate).Div(hundred))
}

// validate runs struct validation and turns the first failure into a Validation error.
func validate(op string, req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return &apperr.Error{Kind: apperr.Validation, Op: op, Message: validator.FirstError(errs)}
	}
	return nil
}
