package echoServer

import (
	"librental/app/echoServer/controller/auth"
	"librental/app/echoServer/controller/book"
	"librental/app/echoServer/controller/borrow"
	"librental/app/echoServer/controller/payment"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *auth.Controller
	Book      *book.Controller
	Borrow    *borrow.Controller
	Payment   *payment.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/users/register", c.Auth.Register)
	pub.POST("/users/login", c.Auth.Login)

	pub.GET("/books", c.Book.List)
	pub.GET("/books/:id", c.Book.Detail)

	// Gateway redirect targets; the payer's browser lands here, so no JWT.
	pub.GET("/success/payment/:id", c.Payment.Success)
	pub.GET("/cancel/payment/:id", c.Payment.Cancel)
	pub.GET("/success/fine/:id", c.Payment.Success)
	pub.GET("/cancel/fine/:id", c.Payment.Cancel)

	// Auth
	priv := e.Group("/v1")
	priv.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
	}))
	priv.Use(ExtractClaims())

	// Books (staff-only mutations; checked in the controller)
	priv.POST("/books", c.Book.Create)
	priv.PUT("/books/:id", c.Book.Update)
	priv.DELETE("/books/:id", c.Book.Delete)

	// Borrows
	priv.POST("/borrows", c.Borrow.Create)
	priv.GET("/borrows", c.Borrow.List)
	priv.GET("/borrows/:id", c.Borrow.Detail)
	priv.POST("/borrows/:id/return", c.Borrow.Return)

	// Payments
	priv.GET("/payments", c.Payment.List)
	priv.GET("/payments/:id", c.Payment.Detail)
	priv.POST("/payments/:id/session", c.Payment.OpenSession)
}
