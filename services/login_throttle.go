package services

import (
	"context"
	"errors"
	"time"

	"momo-telegram/db"

	"github.com/jackc/pgx/v5"
)

const (
	ThrottleScopeAdmin  = "admin"
	ThrottleCapSeconds  = 30
	throttleMaxExponent = 5
)

// AdminLoginWait returns the seconds left before the user may try the admin
// password again, 0 when no cooldown applies.
func AdminLoginWait(ctx context.Context, tgUserID int64) (int, error) {
	var until *time.Time
	err := db.Pool.QueryRow(ctx, `
		SELECT cooldown_until FROM login_throttle WHERE tg_user_id = $1 AND scope = $2`,
		tgUserID, ThrottleScopeAdmin,
	).Scan(&until)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return secondsUntil(until, time.Now()), nil
}

func secondsUntil(until *time.Time, now time.Time) int {
	if until == nil || !now.Before(*until) {
		return 0
	}
	return int(until.Sub(now).Seconds()) + 1
}

// RecordAdminLoginFailed bumps the failure count and pushes the cooldown to
// CooldownForFailures(fail_count) seconds from now.
func RecordAdminLoginFailed(ctx context.Context, tgUserID int64) error {
	var failCount int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO login_throttle (tg_user_id, scope, fail_count, last_failed_at, updated_at)
		VALUES ($1, $2, 1, now(), now())
		ON CONFLICT (tg_user_id, scope) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			updated_at = now()
		RETURNING fail_count`,
		tgUserID, ThrottleScopeAdmin,
	).Scan(&failCount)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		UPDATE login_throttle SET cooldown_until = now() + make_interval(secs => $3)
		WHERE tg_user_id = $1 AND scope = $2`,
		tgUserID, ThrottleScopeAdmin, float64(CooldownForFailures(failCount)),
	)
	return err
}

func RecordAdminLoginSuccess(ctx context.Context, tgUserID int64) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE login_throttle SET fail_count = 0, last_failed_at = NULL, cooldown_until = NULL, updated_at = now()
		WHERE tg_user_id = $1 AND scope = $2`,
		tgUserID, ThrottleScopeAdmin,
	)
	return err
}

// CooldownForFailures is min(30, 2^n) seconds.
func CooldownForFailures(n int) int {
	if n < 0 {
		n = 0
	}
	if n >= throttleMaxExponent {
		return ThrottleCapSeconds
	}
	s := 1 << n
	if s > ThrottleCapSeconds {
		return ThrottleCapSeconds
	}
	return s
}
