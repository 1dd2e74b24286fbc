package server

import (
	"log/slog"

	"shophub/internal/config"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Newは共通ミドルウェアを積んだechoを返す
func New(cfg config.Config, log *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())

	//CORS（FE_URL未設定なら全許可）
	allowOrigins := []string{"*"}
	if cfg.FEURL != "" {
		allowOrigins = []string{cfg.FEURL}
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: allowOrigins,
	}))

	//アクセスログ。エラーはここで記録するだけで、レスポンスは各handlerが作る
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error.Error())
				log.Error("request", attrs...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	}))

	//アップロード画像の配信
	e.Static("/uploads", cfg.UploadDir)

	return e
}

// Startはサーバーを起動する
func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
