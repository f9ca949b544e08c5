package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-tracker/config"
	_ "task-tracker/docs"
	"task-tracker/internal/handler"
	"task-tracker/internal/repository"
	"task-tracker/internal/security"
	"task-tracker/internal/service"
	"task-tracker/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	httpSwagger "github.com/swaggo/http-swagger"
)

const (
	scopeUsersCreate = "users:create"
	scopeUsersRead   = "users:read"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP сервер",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "путь к yaml-файлу конфигурации (пустая строка: только переменные окружения)")
	return cmd
}

// serve поднимает все зависимости до старта сервера. Ошибка загрузки ключей
// или ключа шифрования прерывает запуск: сервер не начнёт принимать запросы.
func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if err := util.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return err
	}

	keyStore, err := security.NewKeyStore(&cfg.Keys)
	if err != nil {
		return err
	}
	fieldCipher, err := security.NewFieldCipher(cfg.Encryption.Key)
	if err != nil {
		return err
	}
	hasher := security.NewPasswordHasher(security.DefaultArgon2Params)

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		return fmt.Errorf("не удалось подключиться к БД: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("ошибка при закрытии БД")
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		return fmt.Errorf("ошибка подключения к Redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logrus.WithError(err).Warn("ошибка при закрытии Redis")
		}
	}()

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(redisClient)

	jwtService, err := security.NewJWTService(keyStore, sessionRepo, &cfg.JWT)
	if err != nil {
		return err
	}
	authorizer := security.NewScopeAuthorizer(userRepo)

	authService := service.NewAuthenticationService(userRepo, jwtService, hasher)
	userService := service.NewUserService(userRepo, hasher, fieldCipher, sessionRepo)

	authHandler := handler.NewAuthenticationHandler(authService)
	userHandler := handler.NewUserHandler(userService)

	srv, router := config.SetupServer(cfg.ServerAddr)
	router.Use(middleware.RequestID, middleware.Recoverer)

	setupDocsRoutes(router)
	setupAuthRoutes(router, authHandler, jwtService)
	setupUserRoutes(router, userHandler, jwtService, authorizer)

	return runServer(ctx, srv)
}

// setupDocsRoutes отдаёт Swagger UI и doc.json, собранные из аннотаций хендлеров
func setupDocsRoutes(r chi.Router) {
	r.Get("/swagger/*", httpSwagger.WrapHandler)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, jwtService *security.JWTService) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/refresh", h.RefreshToken)
		r.Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(security.JWTMiddleware(jwtService))
			r.Get("/me", h.GetCurrentUser)
			r.Head("/me", h.GetCurrentUser)
		})
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, jwtService *security.JWTService, authorizer *security.ScopeAuthorizer) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(security.JWTMiddleware(jwtService))

		r.With(security.RequireScopes(authorizer, scopeUsersCreate)).Post("/", h.CreateUser)
		r.Put("/me/password", h.UpdatePassword)
		r.With(security.RequireScopes(authorizer, scopeUsersRead)).Get("/{id}", h.GetUser)
	})
}

func runServer(ctx context.Context, server *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		logrus.Info("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChannel)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ошибка работы сервера: %w", err)
		}
		return nil
	case sig := <-signalChannel:
		logrus.Infof("получен сигнал %v остановки работы сервера", sig)
	case <-ctx.Done():
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		return fmt.Errorf("ошибка при остановке сервера: %w", err)
	}
	logrus.Info("сервер успешно остановлен")
	return nil
}
