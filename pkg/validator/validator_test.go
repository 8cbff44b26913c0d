package validator

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type line struct {
	ProductID uuid.UUID        `validate:"uuid_required"`
	Quantity  int              `validate:"gt=0"`
	Price     decimal.Decimal  `validate:"dec_gte0"`
	Amount    decimal.Decimal  `validate:"dec_gt0"`
	VATRate   *decimal.Decimal `validate:"omitempty,dec_gte0"`
}

func TestValidateStruct(t *testing.T) {
	good := line{ProductID: uuid.New(), Quantity: 1, Price: decimal.Zero, Amount: decimal.NewFromInt(5)}
	if errs := ValidateStruct(good); len(errs) != 0 {
		t.Fatalf("valid struct rejected: %s", FirstError(errs))
	}

	cases := map[string]struct {
		mutate func(*line)
		tag    string
	}{
		"nil uuid":       {func(l *line) { l.ProductID = uuid.Nil }, "uuid_required"},
		"zero quantity":  {func(l *line) { l.Quantity = 0 }, "gt"},
		"negative price": {func(l *line) { l.Price = decimal.NewFromInt(-1) }, "dec_gte0"},
		"zero amount":    {func(l *line) { l.Amount = decimal.Zero }, "dec_gt0"},
		"negative vat":   {func(l *line) { v := decimal.NewFromInt(-19); l.VATRate = &v }, "dec_gte0"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			l := good
			tc.mutate(&l)
			errs := ValidateStruct(l)
			if len(errs) != 1 || errs[0].Tag != tc.tag {
				t.Fatalf("errors = %+v", errs)
			}
			if !strings.Contains(FirstError(errs), tc.tag) {
				t.Fatalf("message %q", FirstError(errs))
			}
		})
	}
}
