package httpjson

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
)

const apiKeyHeader = "X-API-Key"

// APIKeyAuth checks the X-API-Key request header against a configured set of
// keys. Only hashes are held in memory and comparison is constant time. An
// empty key set disables authentication.
type APIKeyAuth struct {
	hashes [][32]byte
}

func NewAPIKeyAuth(keys []string) *APIKeyAuth {
	a := &APIKeyAuth{}
	for _, k := range keys {
		a.hashes = append(a.hashes, sha256.Sum256([]byte(k)))
	}
	return a
}

func (a *APIKeyAuth) Enabled() bool {
	return len(a.hashes) > 0
}

func (a *APIKeyAuth) CheckAuth(r *http.Request) bool {
	if !a.Enabled() {
		return true
	}

	presented := sha256.Sum256([]byte(r.Header.Get(apiKeyHeader)))

	ok := false
	for _, h := range a.hashes {
		if subtle.ConstantTimeCompare(presented[:], h[:]) == 1 {
			ok = true
		}
	}
	return ok
}
