package gong

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the request signature the upstream expects: HMAC-SHA256 over
// the canonical string METHOD\nPATH\nTIMESTAMP\nPAYLOAD, keyed by the access
// key secret, with the raw digest base64-encoded. PAYLOAD is the JSON
// serialization of the request body when present, else of the query
// parameters, else the empty string; the caller serializes it so the signed
// bytes are exactly the bytes sent.
func Sign(secret []byte, method, path, timestamp, payload string) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(method))
	mac.Write([]byte("\n"))
	mac.Write([]byte(path))
	mac.Write([]byte("\n"))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("\n"))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
