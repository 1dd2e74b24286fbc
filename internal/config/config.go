package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（5000）

	JWTSecret string // JWT署名シークレット

	UploadDir string // 商品画像の保存先
	GoEnv     string // dev/prod
	FEURL     string // フロントURL（CORSで使う。空なら全許可）

	LogLevel string // debug/info/warn/error
}

// Loadは環境変数から設定を組み立てる。
// DB接続情報はinfra/dbが直接環境変数を読む。
func Load() (Config, error) {
	cfg := Config{
		Port:      getenv("PORT", "5000"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		UploadDir: getenv("UPLOAD_DIR", "uploads"),
		GoEnv:     getenv("GO_ENV", "dev"),
		FEURL:     os.Getenv("FE_URL"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
