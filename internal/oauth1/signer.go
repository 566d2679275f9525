// Package oauth1 computes OAuth 1.0a HMAC-SHA1 request signatures for a single
// user credential set (consumer key pair plus access token pair).
package oauth1

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/google/uuid"
)

const (
	authorizationPrefix = "OAuth "
	signatureMethod     = "HMAC-SHA1"
	protocolVersion     = "1.0"

	paramConsumerKey     = "oauth_consumer_key"
	paramNonce           = "oauth_nonce"
	paramSignature       = "oauth_signature"
	paramSignatureMethod = "oauth_signature_method"
	paramTimestamp       = "oauth_timestamp"
	paramToken           = "oauth_token"
	paramVersion         = "oauth_version"
)

// Credentials is the four-string credential set of a single-user OAuth 1.0a app.
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
}

// Signer produces Authorization header values. A Signer is safe for
// concurrent use; every call draws its own nonce and timestamp.
type Signer struct {
	creds Credentials
	nonce func() string
	now   func() time.Time
}

// SignerOption customizes a Signer.
type SignerOption func(*Signer)

// WithNonce replaces the nonce source.
func WithNonce(fn func() string) SignerOption {
	return func(s *Signer) {
		if fn != nil {
			s.nonce = fn
		}
	}
}

// WithClock replaces the timestamp source.
func WithClock(fn func() time.Time) SignerOption {
	return func(s *Signer) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewSigner returns a Signer for creds.
func NewSigner(creds Credentials, opts ...SignerOption) *Signer {
	s := &Signer{
		creds: creds,
		nonce: NewNonce,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authorization signs a request with a fresh nonce and the current time.
// baseURL must not carry a query string; params are the query or form
// parameters that take part in the signature.
func (s *Signer) Authorization(method, baseURL string, params url.Values) (string, error) {
	return s.SignAt(method, baseURL, params, s.nonce(), s.now().Unix())
}

// SignAt signs with an explicit nonce and timestamp. The result is a pure
// function of its inputs and the signer's credentials.
func (s *Signer) SignAt(method, baseURL string, params url.Values, nonce string, timestamp int64) (string, error) {
	if method == "" {
		return "", errors.New("oauth1: empty method")
	}
	if strings.Contains(baseURL, "?") {
		return "", fmt.Errorf("oauth1: base URL %q must not contain a query", baseURL)
	}

	oauthParams := s.oauthParams(nonce, timestamp)
	base := BaseString(method, baseURL, mergeParams(params, oauthParams))
	signature, err := Sign(s.creds.ConsumerSecret, s.creds.TokenSecret, base)
	if err != nil {
		return "", err
	}
	oauthParams[paramSignature] = signature
	return formatHeader(oauthParams), nil
}

func (s *Signer) oauthParams(nonce string, timestamp int64) map[string]string {
	return map[string]string{
		paramConsumerKey:     s.creds.ConsumerKey,
		paramNonce:           nonce,
		paramSignatureMethod: signatureMethod,
		paramTimestamp:       strconv.FormatInt(timestamp, 10),
		paramToken:           s.creds.Token,
		paramVersion:         protocolVersion,
	}
}

// BaseString builds the signature base string from already merged parameters.
func BaseString(method, baseURL string, params url.Values) string {
	return strings.ToUpper(method) + "&" + Encode(baseURL) + "&" + Encode(NormalizeParams(params))
}

// NormalizeParams encodes every key and value, sorts by encoded key then
// encoded value, and joins the pairs with '&'.
func NormalizeParams(params url.Values) string {
	pairs := make([][2]string, 0, len(params))
	for key, values := range params {
		encodedKey := Encode(key)
		for _, value := range values {
			pairs = append(pairs, [2]string{encodedKey, Encode(value)})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})

	var b strings.Builder
	for i, pair := range pairs {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(pair[0])
		b.WriteByte('=')
		b.WriteString(pair[1])
	}
	return b.String()
}

// Sign computes base64(HMAC-SHA1(enc(consumerSecret)&enc(tokenSecret), base)).
func Sign(consumerSecret, tokenSecret, base string) (string, error) {
	signer := &oauth1.HMACSigner{ConsumerSecret: Encode(consumerSecret)}
	signature, err := signer.Sign(Encode(tokenSecret), base)
	if err != nil {
		return "", fmt.Errorf("oauth1: sign: %w", err)
	}
	return signature, nil
}

// Encode percent-encodes s per RFC 3986: everything except ALPHA, DIGIT and
// "-._~" is escaped, so a space becomes %20.
func Encode(s string) string {
	return oauth1.PercentEncode(s)
}

// NewNonce returns 32 random alphanumeric characters.
func NewNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func mergeParams(params url.Values, oauthParams map[string]string) url.Values {
	merged := make(url.Values, len(params)+len(oauthParams))
	for key, values := range params {
		merged[key] = append([]string(nil), values...)
	}
	for key, value := range oauthParams {
		merged.Add(key, value)
	}
	return merged
}

func formatHeader(oauthParams map[string]string) string {
	keys := make([]string, 0, len(oauthParams))
	for key := range oauthParams {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, Encode(key), Encode(oauthParams[key])))
	}
	return authorizationPrefix + strings.Join(parts, ", ")
}

// ParseHeader splits an Authorization header value back into its parameters.
// Values are percent-decoded.
func ParseHeader(header string) (map[string]string, error) {
	if !strings.HasPrefix(header, authorizationPrefix) {
		return nil, fmt.Errorf("oauth1: header does not start with %q", strings.TrimSpace(authorizationPrefix))
	}
	out := make(map[string]string)
	for _, part := range strings.Split(strings.TrimPrefix(header, authorizationPrefix), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("oauth1: malformed header parameter %q", part)
		}
		value = strings.Trim(value, `"`)
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return nil, fmt.Errorf("oauth1: decode %s: %w", key, err)
		}
		out[key] = decoded
	}
	return out, nil
}

// Verify recomputes the signature of a request from its parts and reports
// whether it matches the one carried by header. Test servers use it to check
// that a client signed exactly what it sent.
func Verify(creds Credentials, method, baseURL string, params url.Values, header string) (bool, error) {
	parsed, err := ParseHeader(header)
	if err != nil {
		return false, err
	}
	timestamp, err := strconv.ParseInt(parsed[paramTimestamp], 10, 64)
	if err != nil {
		return false, fmt.Errorf("oauth1: bad timestamp: %w", err)
	}
	expected, err := NewSigner(creds).SignAt(method, baseURL, params, parsed[paramNonce], timestamp)
	if err != nil {
		return false, err
	}
	want, err := ParseHeader(expected)
	if err != nil {
		return false, err
	}
	return want[paramSignature] == parsed[paramSignature], nil
}
