package main

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gautambamne/ECom-sub000/internal/apperror"
	"github.com/gautambamne/ECom-sub000/internal/middleware"
	"github.com/gautambamne/ECom-sub000/internal/services"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"verification_code"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"verification_code"`
	NewPassword string `json:"new_password"`
}

// cookieWriter centralizes how the token pair is written to and cleared
// from the client. Cookies are host-only, strict same-site, and marked
// Secure outside development.
type cookieWriter struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func (w cookieWriter) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   w.secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func (w cookieWriter) setPair(c echo.Context, access, refresh string) {
	c.SetCookie(w.cookie(middleware.AccessTokenCookie, access, w.accessTTL))
	c.SetCookie(w.cookie(middleware.RefreshTokenCookie, refresh, w.refreshTTL))
}

func (w cookieWriter) setAccess(c echo.Context, access string) {
	c.SetCookie(w.cookie(middleware.AccessTokenCookie, access, w.accessTTL))
}

func (w cookieWriter) clear(c echo.Context) {
	c.SetCookie(w.cookie(middleware.AccessTokenCookie, "", -time.Second))
	c.SetCookie(w.cookie(middleware.RefreshTokenCookie, "", -time.Second))
}

func refreshCookieValue(c echo.Context) string {
	cookie, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func registerHandler(as *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(registerRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		user, err := as.Register(c.Request().Context(), services.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, echo.Map{
			"message": "Registration successful, please check your email for the verification code",
			"user":    user.Sanitized(),
		})
	}
}

func verifyHandler(as *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(verifyRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		if err := as.Verify(c.Request().Context(), req.Email, req.Code); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully"})
	}
}

func loginHandler(as *services.AuthService, cw cookieWriter) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(loginRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		result, err := as.Login(c.Request().Context(), req.Email, req.Password, c.RealIP(), c.Request().UserAgent())
		if err != nil {
			return err
		}
		cw.setPair(c, result.AccessToken, result.RefreshToken)
		return c.JSON(http.StatusOK, echo.Map{
			"message": "Login successful",
			"user":    result.User.Sanitized(),
		})
	}
}

func refreshHandler(as *services.AuthService, cw cookieWriter) echo.HandlerFunc {
	return func(c echo.Context) error {
		access, err := as.Refresh(c.Request().Context(), refreshCookieValue(c))
		if err != nil {
			return err
		}
		cw.setAccess(c, access)
		return c.JSON(http.StatusOK, echo.Map{"message": "Token refreshed"})
	}
}

func logoutHandler(as *services.AuthService, cw cookieWriter) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := as.Logout(c.Request().Context(), refreshCookieValue(c)); err != nil {
			return err
		}
		cw.clear(c)
		return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
	}
}

func forgotPasswordHandler(as *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(emailRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		if err := as.ForgotPassword(c.Request().Context(), req.Email); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Password reset code sent"})
	}
}

func resendCodeHandler(as *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(emailRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		if err := as.ResendCode(c.Request().Context(), req.Email); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Verification code sent"})
	}
}

func checkCodeHandler(as *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(verifyRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		if err := as.CheckCode(c.Request().Context(), req.Email, req.Code); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Verification code is valid"})
	}
}

func resetPasswordHandler(as *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(resetPasswordRequest)
		if err := c.Bind(req); err != nil {
			return apperror.Validation("Invalid request body", nil)
		}
		if err := as.ResetPassword(c.Request().Context(), req.Email, req.Code, req.NewPassword); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
	}
}

// meHandler answers from the verified claims without touching storage.
func meHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return apperror.Unauthorized("Invalid or expired token")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"id":    claims.UserID,
			"name":  claims.Name,
			"email": claims.Email,
			"roles": claims.Roles,
		})
	}
}

func registerAuthRoutes(g *echo.Group, as *services.AuthService, authn echo.MiddlewareFunc, cw cookieWriter) {
	auth := g.Group("/auth")

	auth.POST("/register", registerHandler(as))
	auth.POST("/verify", verifyHandler(as))
	auth.POST("/login", loginHandler(as, cw))
	auth.POST("/refresh-token", refreshHandler(as, cw))
	auth.POST("/logout", logoutHandler(as, cw))
	auth.POST("/forgot-password", forgotPasswordHandler(as))
	auth.POST("/resend-verification-code", resendCodeHandler(as))
	auth.POST("/check-verification-code", checkCodeHandler(as))
	auth.POST("/reset-password", resetPasswordHandler(as))

	protected := auth.Group("")
	protected.Use(authn)
	protected.GET("/me", meHandler())
}
