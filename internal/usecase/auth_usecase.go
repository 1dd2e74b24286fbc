package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	repo "shophub/internal/repository"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(adminID int64, email string, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

type AuthUsecase struct {
	admins   repo.AdminUserRepository
	verifier PasswordVerifier
	issuer   AccessTokenIssuer
}

func NewAuthUsecase(admins repo.AdminUserRepository, verifier PasswordVerifier, issuer AccessTokenIssuer) *AuthUsecase {
	return &AuthUsecase{admins: admins, verifier: verifier, issuer: issuer}
}

type AdminDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type LoginOutput struct {
	Token string   `json:"token"`
	Admin AdminDTO `json:"admin"`
}

// 管理者ログイン。emailが存在しない場合もパスワード不一致と同じ
// メッセージを返す（アカウントの有無を漏らさない）。
func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (LoginOutput, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "invalid credentials")
	}

	admin, err := u.admins.FindByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if ok := u.verifier.Verify(password, admin.PasswordHash); !ok {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "invalid credentials")
	}

	token, _, err := u.issuer.Issue(admin.ID, admin.Email, time.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		Token: token,
		Admin: AdminDTO{ID: admin.ID, Email: admin.Email},
	}, nil
}
