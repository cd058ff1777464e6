package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	redisx "github.com/kirinyoku/tixmarket/internal/redis"
	redisrepo "github.com/kirinyoku/tixmarket/internal/repository/redis"
)

const idemLockTTL = 60 * time.Second

// fingerprint identifies a request by route and decoded body, so a key
// reused for a different booking or payment is refused.
func fingerprint(c *gin.Context, req any) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	h.Write([]byte(c.Request.Method + " " + c.Request.URL.Path + "\n"))
	h.Write(b)
	return hex.EncodeToString(h.Sum(nil)), nil
}

func writeJSONBytes(c *gin.Context, idemKey string, status int, body []byte) {
	c.Header("Idempotency-Key", idemKey)
	c.Data(status, "application/json; charset=utf-8", body)
}

// idempotent runs op at most once per Idempotency-Key and subject. A retry
// with the same key and request replays the saved response, a retry while
// the first request is still running gets 409, and the same key with a
// different request gets 422. Failed requests release the key.
func idempotent(
	c *gin.Context,
	idem *redisrepo.IdempotencyStore,
	scope, subject string,
	req any,
	op func() (int, any, error),
) {
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idem == nil || idemKey == "" {
		status, resp, err := op()
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(status, resp)
		return
	}

	fp, err := fingerprint(c, req)
	if err != nil {
		respondErr(c, err)
		return
	}

	ctx := c.Request.Context()
	key := redisx.KeyIdem(scope, subject, idemKey)

	state, saved, err := idem.Begin(ctx, key, fp, idemLockTTL)
	if err != nil {
		respondErr(c, err)
		return
	}

	switch state {
	case redisrepo.IdemReplay:
		writeJSONBytes(c, idemKey, saved.Status, saved.Body)
		return
	case redisrepo.IdemInFlight:
		c.Header("Retry-After", "1")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "idempotency key in progress"})
		return
	case redisrepo.IdemMismatch:
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "idempotency key reused with a different request"})
		return
	}

	status, resp, err := op()
	if err != nil {
		_ = idem.Release(ctx, key)
		respondErr(c, err)
		return
	}

	b, err := json.Marshal(resp)
	if err != nil {
		_ = idem.Release(ctx, key)
		respondErr(c, err)
		return
	}

	_ = idem.Complete(ctx, key, status, b)
	writeJSONBytes(c, idemKey, status, b)
}
