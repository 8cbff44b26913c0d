package license

import (
	"context"
	"crypto/rsa"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"

	"github.com/rs/zerolog"
)

// Status is the read-only view handed to the UI shell.
type Status struct {
	IsValid       bool        `json:"isValid"`
	IsTrial       bool        `json:"isTrial"`
	CustomerName  string      `json:"customerName,omitempty"`
	Features      []string    `json:"features"`
	IssueDate     string      `json:"issueDate,omitempty"`
	ExpiresAt     string      `json:"expiresAt,omitempty"`
	DaysRemaining *int        `json:"daysRemaining,omitempty"`
	Error         string      `json:"error,omitempty"`
	ErrorKind     apperr.Kind `json:"errorKind,omitempty"`
}

// AuditRecorder stores activation attempts.
type AuditRecorder interface {
	Create(entry *model.AuditLog) error
}

type Options struct {
	LicensePath   string
	PublicKey     *rsa.PublicKey
	PublicKeyPath string
	AppVersion    string
	Probe         MachineProbe
	Audit         AuditRecorder
	Now           func() time.Time
	Log           zerolog.Logger
}

// Engine validates the local license file and caches the outcome.
type Engine struct {
	path       string
	publicKey  *rsa.PublicKey
	appVersion string
	probe      MachineProbe
	audit      AuditRecorder
	now        func() time.Time
	log        zerolog.Logger

	mu      sync.RWMutex
	status  Status
	license *License
}

// NewEngine builds an engine. A missing or unreadable public key is logged and
// makes every validation fail with InvalidSignature.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		path:       opts.LicensePath,
		publicKey:  opts.PublicKey,
		appVersion: opts.AppVersion,
		probe:      opts.Probe,
		audit:      opts.Audit,
		now:        opts.Now,
		log:        opts.Log,
		status:     trialStatus(""),
	}
	if e.path == "" {
		e.path = "license.json"
	}
	if e.probe == nil {
		e.probe = SystemProbe{AppID: "go-pos-ledger"}
	}
	if e.now == nil {
		e.now = func() time.Time { return time.Now().UTC() }
	}
	if e.publicKey == nil && opts.PublicKeyPath != "" {
		data, err := os.ReadFile(opts.PublicKeyPath)
		if err != nil {
			e.log.Warn().Err(err).Str("path", opts.PublicKeyPath).Msg("public key not found, license validation will fail")
		} else if key, err := ParsePublicKey(data); err != nil {
			e.log.Error().Err(err).Str("path", opts.PublicKeyPath).Msg("public key unreadable")
		} else {
			e.publicKey = key
		}
	}
	return e
}

func trialStatus(msg string) Status {
	return Status{IsValid: false, IsTrial: true, Features: []string{FeatureBasic}, Error: msg}
}

func failedStatus(err error) Status {
	st := trialStatus(apperr.MessageOf(err))
	st.ErrorKind = apperr.KindOf(err)
	return st
}

// MachineInfo reports this machine's binding factors.
func (e *Engine) MachineInfo() MachineInfo {
	return Describe(e.probe)
}

// GenerateRequest builds the activation request for this machine. It writes nothing.
func (e *Engine) GenerateRequest(customerName string) (*Request, error) {
	if customerName == "" {
		return nil, &apperr.Error{Kind: apperr.Validation, Op: "license.request", Message: "customer name is required"}
	}
	info := e.MachineInfo()
	return &Request{
		MACHash:      info.MACHash,
		DeviceID:     info.DeviceID,
		CustomerName: customerName,
		RequestDate:  e.now().UTC().Format(TimeFormat),
		AppVersion:   e.appVersion,
	}, nil
}

// Validate re-reads the license file and refreshes the cached status.
// Checks run in order: file, MAC, device, signature, expiry.
func (e *Engine) Validate() (Status, error) {
	st, lic, err := e.check()
	e.mu.Lock()
	e.status = st
	e.license = lic
	e.mu.Unlock()
	return st, err
}

func (e *Engine) check() (Status, *License, error) {
	const op = "license.validate"

	blob, err := os.ReadFile(e.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = &apperr.Error{Kind: apperr.NoLicenseFile, Op: op, Message: "no license file found"}
		} else {
			err = &apperr.Error{Kind: apperr.PersistenceFailure, Op: op, Message: "license file unreadable", Err: err}
		}
		return failedStatus(err), nil, err
	}
	lic, err := Parse(blob)
	if err != nil {
		return failedStatus(err), nil, err
	}

	info := e.MachineInfo()
	if lic.MACHash != info.MACHash {
		err := &apperr.Error{Kind: apperr.MachineMismatch, Op: op, Message: "license is bound to another network adapter"}
		return failedStatus(err), nil, err
	}
	if lic.DeviceID != info.DeviceID {
		err := &apperr.Error{Kind: apperr.MachineMismatch, Op: op, Message: "license is bound to another device"}
		return failedStatus(err), nil, err
	}
	if err := Verify(lic, e.publicKey); err != nil {
		return failedStatus(err), nil, err
	}

	st := Status{
		IsValid:      true,
		IsTrial:      false,
		CustomerName: lic.CustomerName,
		Features:     lic.Features,
		IssueDate:    lic.IssueDate,
		ExpiresAt:    lic.ExpiresAt,
	}
	if lic.ExpiresAt != "" {
		expiry, err := ParseTime(lic.ExpiresAt)
		if err != nil {
			err := &apperr.Error{Kind: apperr.InvalidLicense, Op: op, Message: "expiry date unreadable", Err: err}
			return failedStatus(err), nil, err
		}
		now := e.now()
		if now.After(expiry) {
			err := &apperr.Error{Kind: apperr.Expired, Op: op, Message: "license expired on " + expiry.Format("2006-01-02")}
			failed := failedStatus(err)
			failed.ExpiresAt = lic.ExpiresAt
			failed.CustomerName = lic.CustomerName
			return failed, nil, err
		}
		days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
		st.DaysRemaining = &days
	}
	return st, lic, nil
}

// Activate writes blob as the license file and validates it. A blob that
// does not validate is removed again.
func (e *Engine) Activate(blob []byte) (Status, error) {
	const op = "license.activate"

	if _, err := Parse(blob); err != nil {
		e.record("license_activation_failed", err.Error())
		return failedStatus(err), err
	}
	if dir := filepath.Dir(e.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			err = &apperr.Error{Kind: apperr.PersistenceFailure, Op: op, Message: "cannot create license directory", Err: err}
			return failedStatus(err), err
		}
	}
	if err := os.WriteFile(e.path, blob, 0o600); err != nil {
		err = &apperr.Error{Kind: apperr.PersistenceFailure, Op: op, Message: "cannot write license file", Err: err}
		return failedStatus(err), err
	}

	st, err := e.Validate()
	if err != nil {
		if rmErr := os.Remove(e.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			e.log.Error().Err(rmErr).Str("path", e.path).Msg("rejected license could not be removed")
		}
		e.log.Warn().Str("kind", string(apperr.KindOf(err))).Msg("license activation rejected")
		e.record("license_activation_failed", string(apperr.KindOf(err)))
		return st, err
	}

	e.log.Info().Str("customer", st.CustomerName).Strs("features", st.Features).Msg("license activated")
	e.record("license_activated", st.CustomerName)
	return st, nil
}

// Deactivate removes the license file and falls back to trial.
func (e *Engine) Deactivate() error {
	if err := os.Remove(e.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &apperr.Error{Kind: apperr.PersistenceFailure, Op: "license.deactivate", Message: "cannot remove license file", Err: err}
	}
	e.mu.Lock()
	e.status = trialStatus("license removed")
	e.license = nil
	e.mu.Unlock()
	e.record("license_deactivated", "")
	return nil
}

// Status returns the cached status of the last validation.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	st := e.status
	st.Features = append([]string(nil), e.status.Features...)
	return st
}

// HasFeature is true when the cached status grants name or "all".
func (e *Engine) HasFeature(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, f := range e.status.Features {
		if f == name || f == FeatureAll {
			return true
		}
	}
	return false
}

// Watch re-validates every interval until ctx is done.
func (e *Engine) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := e.Status().IsValid
			st, err := e.Validate()
			if before && !st.IsValid {
				e.log.Warn().Err(err).Msg("license no longer valid")
			}
		}
	}
}

func (e *Engine) record(action, detail string) {
	if e.audit == nil {
		return
	}
	entry := &model.AuditLog{Action: action, Entity: "license", NewValues: detail}
	entry.CreatedAt = e.now()
	if err := e.audit.Create(entry); err != nil {
		e.log.Warn().Err(err).Msg("audit log write failed")
	}
}
