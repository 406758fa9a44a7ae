package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/hjin-me/libraryms/internal/account"
	accountStore "github.com/hjin-me/libraryms/internal/account/store"
	"github.com/hjin-me/libraryms/internal/book"
	bookStore "github.com/hjin-me/libraryms/internal/book/store"
	"github.com/hjin-me/libraryms/internal/config"
	"github.com/hjin-me/libraryms/internal/database"
	libraryHttp "github.com/hjin-me/libraryms/internal/http"
	authHandler "github.com/hjin-me/libraryms/internal/http/auth"
	bookHandler "github.com/hjin-me/libraryms/internal/http/book"
	"github.com/hjin-me/libraryms/internal/identity"
	"github.com/hjin-me/libraryms/internal/isbn"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	directory, err := identity.NewStaticDirectory(cfg.Auth.Users)
	if err != nil {
		slog.Error("failed to build directory", "error", err)
		os.Exit(1)
	}

	var (
		sessions       = identity.NewSessionManager(cfg.Session.Secret, cfg.Session.TTL)
		accountService = account.NewService(accountStore.New(db))
		bookService    = book.NewService(bookStore.New(db), isbn.NewClient(cfg.ISBN.BaseURL, cfg.ISBN.APIKey))
	)

	var (
		authH = authHandler.NewHandler(directory, sessions, accountService)
		bookH = bookHandler.NewHandler(bookService)
	)

	router := libraryHttp.New(authHandler.Middleware(sessions, accountService), authH, bookH)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "app", cfg.App.Name, "addr", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	if err := server.ListenAndServe(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
