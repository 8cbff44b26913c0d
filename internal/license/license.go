package license

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"strings"
	"time"

	"go-pos-ledger/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TimeFormat is the UTC millisecond timestamp used in requests and licenses.
const TimeFormat = "2006-01-02T15:04:05.000Z"

const (
	FeatureAll   = "all"
	FeatureBasic = "basic"
)

// Request is produced on the customer machine and sent to the vendor.
type Request struct {
	MACHash      string `json:"macHash"`
	DeviceID     string `json:"deviceId"`
	CustomerName string `json:"customerName"`
	RequestDate  string `json:"requestDate"`
	AppVersion   string `json:"appVersion"`
}

// License is the signed document written to the license file.
type License struct {
	CustomerID   string   `json:"customerId"`
	CustomerName string   `json:"customerName"`
	MACHash      string   `json:"macHash"`
	DeviceID     string   `json:"deviceId"`
	Features     []string `json:"features"`
	IssueDate    string   `json:"issueDate"`
	ExpiresAt    string   `json:"expiresAt,omitempty"`
	Signature    string   `json:"signature"`
}

// payload fixes the field order of the signed bytes. Do not reorder.
type payload struct {
	CustomerID   string   `json:"customerId"`
	CustomerName string   `json:"customerName"`
	MACHash      string   `json:"macHash"`
	DeviceID     string   `json:"deviceId"`
	Features     []string `json:"features"`
	IssueDate    string   `json:"issueDate"`
	ExpiresAt    string   `json:"expiresAt,omitempty"`
}

// Canonical returns the bytes covered by the signature: every field except
// the signature, in a fixed order, without whitespace.
func Canonical(l *License) ([]byte, error) {
	features := l.Features
	if features == nil {
		features = []string{}
	}
	return json.Marshal(payload{
		CustomerID:   l.CustomerID,
		CustomerName: l.CustomerName,
		MACHash:      l.MACHash,
		DeviceID:     l.DeviceID,
		Features:     features,
		IssueDate:    l.IssueDate,
		ExpiresAt:    l.ExpiresAt,
	})
}

// Sign sets l.Signature to the base64 RS256 signature of Canonical(l).
func Sign(l *License, key *rsa.PrivateKey) error {
	data, err := Canonical(l)
	if err != nil {
		return apperr.Wrap("license.sign", err)
	}
	sig, err := jwt.SigningMethodRS256.Sign(string(data), key)
	if err != nil {
		return &apperr.Error{Kind: apperr.InvalidSignature, Op: "license.sign", Message: "signing failed", Err: err}
	}
	l.Signature = base64.StdEncoding.EncodeToString(sig)
	return nil
}

// Verify checks l.Signature against the public key.
func Verify(l *License, key *rsa.PublicKey) error {
	const op = "license.verify"
	if key == nil {
		return &apperr.Error{Kind: apperr.InvalidSignature, Op: op, Message: "public key not available"}
	}
	sig, err := base64.StdEncoding.DecodeString(l.Signature)
	if err != nil || len(sig) == 0 {
		return &apperr.Error{Kind: apperr.InvalidSignature, Op: op, Message: "malformed signature"}
	}
	data, err := Canonical(l)
	if err != nil {
		return apperr.Wrap(op, err)
	}
	if err := jwt.SigningMethodRS256.Verify(string(data), sig, key); err != nil {
		return &apperr.Error{Kind: apperr.InvalidSignature, Op: op, Message: "signature does not match", Err: err}
	}
	return nil
}

// Issue turns a request into a signed license. expiresInDays <= 0 makes it
// perpetual; no features means all.
func Issue(req Request, key *rsa.PrivateKey, features []string, expiresInDays int, now time.Time) (*License, error) {
	if len(features) == 0 {
		features = []string{FeatureAll}
	}
	cleaned := make([]string, 0, len(features))
	for _, f := range features {
		if f = strings.TrimSpace(f); f != "" {
			cleaned = append(cleaned, f)
		}
	}

	now = now.UTC()
	l := &License{
		CustomerID:   uuid.New().String(),
		CustomerName: req.CustomerName,
		MACHash:      req.MACHash,
		DeviceID:     req.DeviceID,
		Features:     cleaned,
		IssueDate:    now.Format(TimeFormat),
	}
	if expiresInDays > 0 {
		l.ExpiresAt = now.AddDate(0, 0, expiresInDays).Format(TimeFormat)
	}
	if err := Sign(l, key); err != nil {
		return nil, err
	}
	return l, nil
}

// Parse decodes a license blob.
func Parse(blob []byte) (*License, error) {
	var l License
	if err := json.Unmarshal(blob, &l); err != nil {
		return nil, &apperr.Error{Kind: apperr.InvalidLicense, Op: "license.parse", Message: "license is not valid JSON", Err: err}
	}
	if l.MACHash == "" || l.DeviceID == "" || l.Signature == "" {
		return nil, &apperr.Error{Kind: apperr.InvalidLicense, Op: "license.parse", Message: "license is missing required fields"}
	}
	return &l, nil
}

// ParseTime reads a license timestamp, accepting RFC 3339 as well.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// GenerateKeys creates an RSA key pair, PKCS#1 private and PKIX public, PEM encoded.
func GenerateKeys(bits int) (privatePEM, publicPEM []byte, err error) {
	if bits <= 0 {
		bits = 2048
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, err
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	privatePEM = pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicPEM = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	return privatePEM, publicPEM, nil
}

func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	return jwt.ParseRSAPrivateKeyFromPEM(data)
}

func ParsePublicKey(data []byte) (*rsa.PublicKey, error) {
	return jwt.ParseRSAPublicKeyFromPEM(data)
}
