// Package main library rental API.
//
// @title           Library Rental API
// @version         1.0
// @description     library rental service (books, borrows, payments, fines).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"librental/app/echoServer"
	authctrl "librental/app/echoServer/controller/auth"
	bookctrl "librental/app/echoServer/controller/book"
	borrowctrl "librental/app/echoServer/controller/borrow"
	paymentctrl "librental/app/echoServer/controller/payment"
	"librental/app/echoServer/validation"
	"librental/config"
	bookrepo "librental/repository/book"
	borrowrepo "librental/repository/borrow"
	paymentrepo "librental/repository/payment"
	striperepo "librental/repository/stripe"
	telegramrepo "librental/repository/telegram"
	userrepo "librental/repository/user"
	authsvc "librental/service/auth"
	booksvc "librental/service/book"
	borrowsvc "librental/service/borrow"
	overduesvc "librental/service/overdue"
	paymentsvc "librental/service/payment"
	"librental/util/database"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db.DB)
	br := bookrepo.New(db.DB)
	rr := borrowrepo.New(db.DB)
	pr := paymentrepo.New(db.DB)
	gw := striperepo.NewHTTP(cfg.StripeSecretKey)
	tg := telegramrepo.NewHTTP(cfg.TelegramBotToken, cfg.TelegramChatID)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	co := paymentsvc.NewCoordinator(pr, rr, br, gw, tg, log, cfg.BaseURL, cfg.Currency)
	rs := borrowsvc.New(db, br, rr, pr, co, cfg.FineMultiplier)
	co.Bind(rs)

	// overdue scanner
	scanner := overduesvc.New(rr, tg, log)
	overduesvc.NewWorker(scanner, cfg.ScanInterval, 1, log).Start(ctx)

	// controllers
	vd := validation.New()
	v := vd.Raw()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	borrowC := &borrowctrl.Controller{Svc: rs, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: co, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = vd

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Borrow:  borrowC,
		Payment: paymentC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
