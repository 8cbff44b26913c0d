package service

import (
	"testing"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func post(f *fixture, lines ...JournalLine) (*PostingResult, error) {
	var res *PostingResult
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		res, err = f.deps.Poster.Post(tx, Posting{
			Reference: model.NewReference(model.RefManual, uuid.New()),
			Actor:     "op-1",
			Lines:     lines,
		})
		return err
	})
	return res, err
}

func TestPostUpdatesBalances(t *testing.T) {
	f := newFixture(t)

	res, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("500")},
		JournalLine{AccountCode: "3000", Credit: dec("500")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}
	for _, e := range res.Entries {
		if e.EventID != res.EventID {
			t.Fatalf("entry %s not tagged with event %s", e.ID, res.EventID)
		}
		if !e.EntryDate.Equal(fixedNow) {
			t.Fatalf("entry date %v, want %v", e.EntryDate, fixedNow)
		}
	}
	if got := f.balance(t, "1000"); !got.Equal(dec("500")) {
		t.Fatalf("cash balance = %s", got)
	}
	if got := f.balance(t, "3000"); !got.Equal(dec("-500")) {
		t.Fatalf("capital balance = %s", got)
	}
}

func TestPostRejectsUnbalancedLines(t *testing.T) {
	f := newFixture(t)

	_, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("100")},
		JournalLine{AccountCode: "3000", Credit: dec("99.98")},
	)
	assertKind(t, err, apperr.UnbalancedEntry)

	// within one cent is accepted
	if _, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("100")},
		JournalLine{AccountCode: "3000", Credit: dec("99.99")},
	); err != nil {
		t.Fatalf("tolerance: %v", err)
	}
	if n := f.count(t, &model.JournalEntry{}); n != 2 {
		t.Fatalf("journal rows = %d, want 2", n)
	}
}

func TestPostRejectsNegativeAmounts(t *testing.T) {
	f := newFixture(t)
	_, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("-5")},
		JournalLine{AccountCode: "3000", Debit: dec("5")},
	)
	assertKind(t, err, apperr.Validation)
}

func TestMissingAccountStrict(t *testing.T) {
	f := newFixture(t)

	_, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("50")},
		JournalLine{AccountCode: "9999", Credit: dec("50")},
	)
	assertKind(t, err, apperr.MissingAccountMapping)
	if n := f.count(t, &model.JournalEntry{}); n != 0 {
		t.Fatalf("journal rows = %d after failed post", n)
	}
	if got := f.balance(t, "1000"); !got.IsZero() {
		t.Fatalf("cash balance moved to %s", got)
	}
}

func TestMissingAccountSkip(t *testing.T) {
	f := newFixtureWithPolicy(t, config.MissingAccountSkip)

	// a skipped leg that breaks the balance still fails
	_, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("50")},
		JournalLine{AccountCode: "9999", Credit: dec("50")},
	)
	assertKind(t, err, apperr.UnbalancedEntry)

	// a skipped pair of zero lines leaves a balanced event
	res, err := post(f,
		JournalLine{AccountCode: "1000", Debit: dec("50")},
		JournalLine{AccountCode: "4000", Credit: dec("50")},
		JournalLine{AccountCode: "9998", Debit: dec("0")},
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "9998" {
		t.Fatalf("skipped = %v", res.Skipped)
	}
	if len(res.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(res.Entries))
	}
}

func TestPostUnknownAccountID(t *testing.T) {
	f := newFixtureWithPolicy(t, config.MissingAccountSkip)
	missing := uuid.New()
	_, err := post(f,
		JournalLine{AccountID: &missing, Debit: dec("10")},
		JournalLine{AccountCode: "1000", Credit: dec("10")},
	)
	assertKind(t, err, apperr.AccountNotFound)
}
