package payments

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// VerifyIPNSignature checks the x-nowpayments-sig header against the raw IPN
// body. The expected signature is HMAC-SHA512 over the JSON body re-serialized
// with keys in ascending order, hex encoded.
func VerifyIPNSignature(payload []byte, signatureHeader, ipnSecret string) bool {
	sig := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(ipnSecret)
	if sig == "" || secret == "" {
		return false
	}

	decodedSig, err := hex.DecodeString(strings.ToLower(sig))
	if err != nil {
		return false
	}

	canonical, err := canonicalizeJSON(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(canonical)
	return hmac.Equal(mac.Sum(nil), decodedSig)
}

// canonicalizeJSON re-serializes a JSON object with sorted keys, preserving
// number literals exactly as sent.
func canonicalizeJSON(payload []byte) ([]byte, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(bytes.TrimSpace(raw[k]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
