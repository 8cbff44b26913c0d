package license

import (
	"crypto/rsa"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go-pos-ledger/internal/apperr"
	"go-pos-ledger/internal/model"

	"github.com/rs/zerolog"
)

type fakeProbe struct {
	mac, device string
}

func (p fakeProbe) MACAddress() string { return p.mac }
func (p fakeProbe) DeviceID() string   { return p.device }

type auditSpy struct {
	mu      sync.Mutex
	actions []string
}

func (a *auditSpy) Create(entry *model.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actions = append(a.actions, entry.Action)
	return nil
}

var (
	keyOnce sync.Once
	testKey *rsa.PrivateKey
)

// signingKey generates one 1024-bit key for the whole package.
func signingKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	keyOnce.Do(func() {
		priv, _, err := GenerateKeys(1024)
		if err != nil {
			t.Fatalf("generate keys: %v", err)
		}
		testKey, err = ParsePrivateKey(priv)
		if err != nil {
			t.Fatalf("parse key: %v", err)
		}
	})
	if testKey == nil {
		t.Fatal("no signing key")
	}
	return testKey
}

var issued = time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

func newEngine(t *testing.T, probe MachineProbe, now time.Time, audit AuditRecorder) (*Engine, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "license.json")
	return NewEngine(Options{
		LicensePath: path,
		PublicKey:   &signingKey(t).PublicKey,
		AppVersion:  "1.0.0",
		Probe:       probe,
		Audit:       audit,
		Now:         func() time.Time { return now },
		Log:         zerolog.Nop(),
	}), path
}

func issueFor(t *testing.T, e *Engine, features []string, days int) []byte {
	t.Helper()
	req, err := e.GenerateRequest("Superette El Baraka")
	if err != nil {
		t.Fatal(err)
	}
	lic, err := Issue(*req, signingKey(t), features, days, issued)
	if err != nil {
		t.Fatal(err)
	}
	blob, err := json.Marshal(lic)
	if err != nil {
		t.Fatal(err)
	}
	return blob
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("expected %s, got %s (%v)", kind, got, err)
	}
}

func TestActivateRoundTrip(t *testing.T) {
	probe := fakeProbe{mac: "aa:bb:cc:dd:ee:ff", device: "device-1"}
	audit := &auditSpy{}
	e, path := newEngine(t, probe, issued.AddDate(0, 0, 10), audit)

	st, err := e.Activate(issueFor(t, e, []string{"accounting", "reports"}, 30))
	if err != nil {
		t.Fatal(err)
	}
	if !st.IsValid || st.IsTrial || st.CustomerName != "Superette El Baraka" {
		t.Fatalf("status %+v", st)
	}
	if st.DaysRemaining == nil || *st.DaysRemaining != 20 {
		t.Fatalf("days remaining = %v", st.DaysRemaining)
	}
	if !e.HasFeature("accounting") || e.HasFeature("multi_store") {
		t.Fatal("feature set not applied")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("license file missing: %v", err)
	}
	if len(audit.actions) != 1 || audit.actions[0] != "license_activated" {
		t.Fatalf("audit = %v", audit.actions)
	}

	if err := e.Deactivate(); err != nil {
		t.Fatal(err)
	}
	if e.Status().IsValid || !e.Status().IsTrial || e.HasFeature("accounting") {
		t.Fatalf("status after deactivate %+v", e.Status())
	}
	if !e.HasFeature(FeatureBasic) {
		t.Fatal("trial should keep the basic feature")
	}
}

func TestAllFeatureGrantsEverything(t *testing.T) {
	e, _ := newEngine(t, fakeProbe{mac: "m", device: "d"}, issued, nil)
	if _, err := e.Activate(issueFor(t, e, nil, 0)); err != nil {
		t.Fatal(err)
	}
	if !e.HasFeature("accounting") || !e.HasFeature("anything") {
		t.Fatal("perpetual all-features license should grant every feature")
	}
	if e.Status().DaysRemaining != nil {
		t.Fatal("perpetual license has no remaining days")
	}
}

func TestValidateMachineMismatch(t *testing.T) {
	e, path := newEngine(t, fakeProbe{mac: "aa:aa", device: "device-1"}, issued, nil)
	blob := issueFor(t, e, nil, 0)
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatal(err)
	}

	moved, _ := newEngine(t, fakeProbe{mac: "bb:bb", device: "device-1"}, issued, nil)
	moved.path = path
	_, err := moved.Validate()
	assertKind(t, err, apperr.MachineMismatch)

	cloned, _ := newEngine(t, fakeProbe{mac: "aa:aa", device: "device-2"}, issued, nil)
	cloned.path = path
	_, err = cloned.Validate()
	assertKind(t, err, apperr.MachineMismatch)
	if cloned.Status().IsValid {
		t.Fatal("mismatched machine reported valid")
	}
}

func TestValidateExpired(t *testing.T) {
	probe := fakeProbe{mac: "m", device: "d"}
	e, path := newEngine(t, probe, issued.AddDate(0, 0, 31), nil)
	if err := os.WriteFile(path, issueFor(t, e, nil, 30), 0o600); err != nil {
		t.Fatal(err)
	}
	st, err := e.Validate()
	assertKind(t, err, apperr.Expired)
	if st.IsValid || st.ExpiresAt == "" || st.ErrorKind != apperr.Expired {
		t.Fatalf("status %+v", st)
	}
}

func TestValidateTamperedLicense(t *testing.T) {
	e, path := newEngine(t, fakeProbe{mac: "m", device: "d"}, issued, nil)
	var lic License
	if err := json.Unmarshal(issueFor(t, e, []string{"basic"}, 0), &lic); err != nil {
		t.Fatal(err)
	}
	lic.Features = []string{"all"}
	blob, _ := json.Marshal(lic)
	if err := os.WriteFile(path, blob, 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := e.Validate()
	assertKind(t, err, apperr.InvalidSignature)
}

func TestValidateWithoutLicenseFile(t *testing.T) {
	e, _ := newEngine(t, fakeProbe{mac: "m", device: "d"}, issued, nil)
	st, err := e.Validate()
	assertKind(t, err, apperr.NoLicenseFile)
	if !st.IsTrial || st.IsValid {
		t.Fatalf("status %+v", st)
	}
}

func TestValidateWithoutPublicKey(t *testing.T) {
	signed, path := newEngine(t, fakeProbe{mac: "m", device: "d"}, issued, nil)
	if err := os.WriteFile(path, issueFor(t, signed, nil, 0), 0o600); err != nil {
		t.Fatal(err)
	}
	e := NewEngine(Options{
		LicensePath:   path,
		PublicKeyPath: filepath.Join(t.TempDir(), "missing.pem"),
		Probe:         fakeProbe{mac: "m", device: "d"},
		Log:           zerolog.Nop(),
	})
	_, err := e.Validate()
	assertKind(t, err, apperr.InvalidSignature)
}

func TestActivateRemovesRejectedLicense(t *testing.T) {
	audit := &auditSpy{}
	e, path := newEngine(t, fakeProbe{mac: "m", device: "d"}, issued, audit)
	other, _ := newEngine(t, fakeProbe{mac: "x", device: "y"}, issued, nil)

	_, err := e.Activate(issueFor(t, other, nil, 0))
	assertKind(t, err, apperr.MachineMismatch)
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Fatalf("rejected license left on disk: %v", statErr)
	}

	_, err = e.Activate([]byte("{not json"))
	assertKind(t, err, apperr.InvalidLicense)
	if len(audit.actions) != 2 {
		t.Fatalf("audit = %v", audit.actions)
	}
}

func TestGenerateRequest(t *testing.T) {
	e, _ := newEngine(t, fakeProbe{mac: "aa:bb", device: "dev"}, issued, nil)
	req, err := e.GenerateRequest("Client")
	if err != nil {
		t.Fatal(err)
	}
	if req.MACHash != HashMAC("aa:bb") || req.DeviceID != "dev" || req.AppVersion != "1.0.0" {
		t.Fatalf("request %+v", req)
	}
	if req.RequestDate != "2026-01-10T08:00:00.000Z" {
		t.Fatalf("request date %s", req.RequestDate)
	}
	_, err = e.GenerateRequest("")
	assertKind(t, err, apperr.Validation)
}

func TestCanonicalIgnoresSignature(t *testing.T) {
	l := &License{CustomerID: "c", CustomerName: "n", MACHash: "h", DeviceID: "d", IssueDate: "i"}
	a, err := Canonical(l)
	if err != nil {
		t.Fatal(err)
	}
	l.Signature = "whatever"
	b, _ := Canonical(l)
	if string(a) != string(b) {
		t.Fatal("signature leaked into the signed bytes")
	}
	want := `{"customerId":"c","customerName":"n","macHash":"h","deviceId":"d","features":[],"issueDate":"i"}`
	if string(a) != want {
		t.Fatalf("canonical = %s", a)
	}
}
