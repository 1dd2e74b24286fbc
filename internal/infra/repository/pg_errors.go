package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgresのエラーコードで判定する。gormはドライバのエラーをそのまま包む。
const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// 同時実行でDBがトランザクションを切った（リトライ可能）
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
