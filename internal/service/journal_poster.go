package service

import (
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/config"
	"go-pos-ledger/internal/model"
	"go-pos-ledger/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BalanceTolerance is the largest |Σdebit - Σcredit| accepted for one event.
var BalanceTolerance = decimal.New(1, -2)

// JournalLine targets an account either by id (manual entries) or by chart
// code (lines generated by the orchestrator).
type JournalLine struct {
	AccountID   *uuid.UUID
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Posting is every journal line of one business event.
type Posting struct {
	Date      time.Time
	Reference model.Reference
	Actor     string
	Lines     []JournalLine
}

type PostingResult struct {
	EventID uuid.UUID            `json:"event_id"`
	Entries []model.JournalEntry `json:"entries"`
	Skipped []string             `json:"skipped,omitempty"`
}

type JournalPoster interface {
	Post(tx *gorm.DB, posting Posting) (*PostingResult, error)
}

type journalPoster struct {
	accountRepo repository.AccountRepository
	journalRepo repository.JournalRepository
	policy      config.MissingAccountPolicy
	now         Clock
	log         zerolog.Logger
}

func NewJournalPoster(aRepo repository.AccountRepository, jRepo repository.JournalRepository, policy config.MissingAccountPolicy, clock Clock, log zerolog.Logger) JournalPoster {
	if policy == "" {
		policy = config.MissingAccountStrict
	}
	return &journalPoster{
		accountRepo: aRepo,
		journalRepo: jRepo,
		policy:      policy,
		now:         clock.orDefault(),
		log:         log,
	}
}

// SumLines returns Σdebit and Σcredit.
func SumLines(lines []JournalLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsBalanced reports whether debits equal credits within BalanceTolerance.
func IsBalanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().LessThanOrEqual(BalanceTolerance)
}

func (p *journalPoster) Post(tx *gorm.DB, posting Posting) (*PostingResult, error) {
	const op = "journal.post"

	if len(posting.Lines) == 0 {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "journal entry has no lines"}
	}
	for _, l := range posting.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "debit and credit must not be negative"}
		}
		if l.AccountID == nil && l.AccountCode == "" {
			return nil, &apperr.Error{Kind: apperr.Validation, Op: op, Message: "journal line has no account"}
		}
	}
	if d, c := SumLines(posting.Lines); !IsBalanced(d, c) {
		return nil, &apperr.Error{
			Kind:    apperr.UnbalancedEntry,
			Op:      op,
			Message: "debits (" + d.StringFixed(2) + ") do not equal credits (" + c.StringFixed(2) + ")",
		}
	}

	result := &PostingResult{EventID: uuid.New()}
	date := posting.Date
	if date.IsZero() {
		date = p.now()
	}

	accounts := make(map[uuid.UUID]*model.Account)
	order := make([]uuid.UUID, 0, len(posting.Lines))
	kept := make([]JournalLine, 0, len(posting.Lines))

	for _, line := range posting.Lines {
		account, err := p.resolve(tx, line)
		if err != nil {
			if !apperr.Is(err, apperr.NotFound) {
				return nil, apperr.Wrap(op, err)
			}
			if line.AccountID != nil {
				return nil, &apperr.Error{Kind: apperr.AccountNotFound, Op: op, Message: "account " + line.AccountID.String() + " not found"}
			}
			if p.policy == config.MissingAccountStrict {
				return nil, &apperr.Error{
					Kind:    apperr.MissingAccountMapping,
					Op:      op,
					Message: "account code " + line.AccountCode + " is not in the chart of accounts",
				}
			}
			p.log.Warn().
				Str("account_code", line.AccountCode).
				Str("reference_type", posting.Reference.Type).
				Msg("journal line skipped: account missing")
			result.Skipped = append(result.Skipped, line.AccountCode)
			continue
		}
		if _, seen := accounts[account.ID]; !seen {
			accounts[account.ID] = account
			order = append(order, account.ID)
		}
		id := account.ID
		line.AccountID = &id
		kept = append(kept, line)
	}

	// a skipped leg must not leave a lopsided event behind
	if d, c := SumLines(kept); len(kept) == 0 || !IsBalanced(d, c) {
		return nil, &apperr.Error{
			Kind:    apperr.UnbalancedEntry,
			Op:      op,
			Message: "entry no longer balances after skipping missing accounts",
		}
	}

	createdAt := p.now()
	entries := make([]model.JournalEntry, 0, len(kept))
	for _, line := range kept {
		entry := model.JournalEntry{
			EventID:     result.EventID,
			EntryDate:   date,
			AccountID:   *line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
			Reference:   posting.Reference,
			UserID:      posting.Actor,
		}
		entry.CreatedAt = createdAt
		entries = append(entries, entry)

		account := accounts[*line.AccountID]
		account.Balance = account.Balance.Add(line.Debit).Sub(line.Credit)
	}

	if err := p.journalRepo.CreateBatch(tx, entries); err != nil {
		return nil, apperr.Wrap(op, err)
	}
	for _, id := range order {
		if err := p.accountRepo.UpdateBalance(tx, id, accounts[id].Balance); err != nil {
			return nil, apperr.Wrap(op, err)
		}
	}

	result.Entries = entries
	return result, nil
}

func (p *journalPoster) resolve(tx *gorm.DB, line JournalLine) (*model.Account, error) {
	if line.AccountID != nil {
		return p.accountRepo.LockByID(tx, *line.AccountID)
	}
	return p.accountRepo.LockByCode(tx, line.AccountCode)
}
