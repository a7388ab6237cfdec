package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"

	"momo-telegram/db"

	"golang.org/x/crypto/bcrypt"
)

const (
	generatedLoginLen = 12
	loginSymbols      = "!@#$%&*"
	loginUpper        = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	loginLower        = "abcdefghijkmnopqrstuvwxyz"
	loginDigits       = "23456789"
)

// AdminPassword checks attempts against LOGIN, which may be plain text or a bcrypt hash.
type AdminPassword struct {
	secret string
	hashed bool
}

func NewAdminPassword(login string) AdminPassword {
	login = strings.TrimSpace(login)
	return AdminPassword{secret: login, hashed: isBcryptHash(login)}
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}

func (p AdminPassword) Configured() bool { return p.secret != "" }

func (p AdminPassword) Check(attempt string) bool {
	if p.secret == "" {
		return false
	}
	attempt = strings.TrimSpace(attempt)
	if p.hashed {
		return bcrypt.CompareHashAndPassword([]byte(p.secret), []byte(attempt)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(p.secret), []byte(attempt)) == 1
}

func HashAdminPassword(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// GenerateAdminPassword returns a random password with at least one of each
// character class. Do not log it.
func GenerateAdminPassword() (string, error) {
	randIndex := func(n int) (int, error) {
		v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
		if err != nil {
			return 0, err
		}
		return int(v.Int64()), nil
	}
	classes := []string{loginUpper, loginLower, loginDigits, loginSymbols}
	all := strings.Join(classes, "")
	out := make([]byte, generatedLoginLen)
	for i := range out {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		j, err := randIndex(len(set))
		if err != nil {
			return "", err
		}
		out[i] = set[j]
	}
	for i := len(out) - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", fmt.Errorf("shuffle: %w", err)
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// Admin sessions survive restarts so new-order alerts keep reaching logged-in chats.

func SaveAdminSession(ctx context.Context, chatID, tgUserID int64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO admin_sessions (chat_id, tg_user_id, logged_in_at)
		VALUES ($1, $2, now())
		ON CONFLICT (chat_id) DO UPDATE SET tg_user_id = EXCLUDED.tg_user_id, logged_in_at = now()`,
		chatID, tgUserID,
	)
	return err
}

func DeleteAdminSession(ctx context.Context, chatID int64) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM admin_sessions WHERE chat_id = $1`, chatID)
	return err
}

func ListAdminSessions(ctx context.Context) ([]int64, error) {
	rows, err := db.Pool.Query(ctx, `SELECT chat_id FROM admin_sessions ORDER BY logged_in_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var chats []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		chats = append(chats, id)
	}
	return chats, rows.Err()
}
