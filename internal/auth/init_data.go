package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// MaxInitDataAge bounds how old auth_date may be.
const MaxInitDataAge = 24 * time.Hour

var (
	ErrMissingInitData = errors.New("init data is missing")
	ErrInvalidHash     = errors.New("init data hash mismatch")
	ErrInitDataExpired = errors.New("init data is too old")
	ErrNoUser          = errors.New("init data carries no user")
)

// InitDataValidator checks the initData string a Mini App receives from
// Telegram.
type InitDataValidator struct {
	BotToken string
	MaxAge   time.Duration
	now      func() time.Time
}

func NewInitDataValidator(botToken string) *InitDataValidator {
	return &InitDataValidator{BotToken: botToken, MaxAge: MaxInitDataAge, now: time.Now}
}

// Validate verifies the signature and freshness of initData and returns the
// Telegram user id it was issued for.
func (v *InitDataValidator) Validate(initData string) (int64, error) {
	if strings.TrimSpace(initData) == "" {
		return 0, ErrMissingInitData
	}
	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("parse init data: %w", err)
	}

	hash := values.Get("hash")
	values.Del("hash")
	if !hmac.Equal([]byte(hash), []byte(Sign(values, v.BotToken))) {
		return 0, ErrInvalidHash
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse auth_date: %w", err)
	}
	if v.now().Sub(time.Unix(authDate, 0)) > v.MaxAge {
		return 0, ErrInitDataExpired
	}

	var user struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return 0, ErrNoUser
	}
	return user.ID, nil
}

// Sign computes the WebApp hash of values (which must not contain "hash").
func Sign(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var lines []string
	for _, k := range keys {
		for _, val := range values[k] {
			lines = append(lines, k+"="+val)
		}
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	h := hmac.New(sha256.New, secret.Sum(nil))
	h.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(h.Sum(nil))
}
