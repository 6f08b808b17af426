// Package auth signs gateway requests with OAuth 1.0a (HMAC-SHA1, header
// transport, two-legged: no token).
package auth

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"cardinity-gateway/internal/domain/ports/adapter"

	"github.com/google/uuid"
)

var _ adapter.Signer = (*OAuth1Signer)(nil)

const signatureMethod = "HMAC-SHA1"

// OAuth1Signer implements adapter.Signer. Every call gets a new nonce and
// timestamp. JSON bodies are not part of the signature.
type OAuth1Signer struct {
	consumerKey    string
	consumerSecret string
	now            func() time.Time
	nonce          func() string
}

type Option func(*OAuth1Signer)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *OAuth1Signer) { s.now = now }
}

// WithNonce overrides the nonce source.
func WithNonce(nonce func() string) Option {
	return func(s *OAuth1Signer) { s.nonce = nonce }
}

func NewOAuth1Signer(consumerKey, consumerSecret string, opts ...Option) (*OAuth1Signer, error) {
	if consumerKey == "" {
		return nil, errors.New("consumer key cannot be empty")
	}
	if consumerSecret == "" {
		return nil, errors.New("consumer secret cannot be empty")
	}
	s := &OAuth1Signer{
		consumerKey:    consumerKey,
		consumerSecret: consumerSecret,
		now:            time.Now,
		nonce:          func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Sign returns the value of the Authorization header for one request.
func (s *OAuth1Signer) Sign(method, rawURL string, _ []byte) (string, error) {
	oauth := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_nonce":            s.nonce(),
		"oauth_signature_method": signatureMethod,
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_version":          "1.0",
	}
	base, err := signatureBase(method, rawURL, oauth)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha1.New, []byte(percentEncode(s.consumerSecret)+"&"))
	mac.Write([]byte(base))
	oauth["oauth_signature"] = base64.StdEncoding.EncodeToString(mac.Sum(nil))

	keys := make([]string, 0, len(oauth))
	for k := range oauth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, percentEncode(k), percentEncode(oauth[k])))
	}
	return "OAuth " + strings.Join(parts, ", "), nil
}

// signatureBase builds the RFC 5849 section 3.4.1 base string from the
// method, the normalized URL and the query plus oauth parameters.
func signatureBase(method, rawURL string, oauth map[string]string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", rawURL)
	}

	scheme := strings.ToLower(u.Scheme)
	host := strings.ToLower(u.Hostname())
	if port := u.Port(); port != "" && !(scheme == "http" && port == "80") && !(scheme == "https" && port == "443") {
		host += ":" + port
	}
	baseURL := scheme + "://" + host + u.EscapedPath()

	type pair struct{ k, v string }
	var params []pair
	for k, vs := range u.Query() {
		for _, v := range vs {
			params = append(params, pair{percentEncode(k), percentEncode(v)})
		}
	}
	for k, v := range oauth {
		params = append(params, pair{percentEncode(k), percentEncode(v)})
	}
	sort.Slice(params, func(i, j int) bool {
		if params[i].k == params[j].k {
			return params[i].v < params[j].v
		}
		return params[i].k < params[j].k
	})
	encoded := make([]string, len(params))
	for i, p := range params {
		encoded[i] = p.k + "=" + p.v
	}

	return strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(encoded, "&")), nil
}

// percentEncode applies RFC 3986 encoding: only unreserved characters are
// left as is.
func percentEncode(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('A' <= c && c <= 'Z') || ('a' <= c && c <= 'z') || ('0' <= c && c <= '9') ||
			c == '-' || c == '.' || c == '_' || c == '~' {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}
