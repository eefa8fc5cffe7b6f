package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/metro-ticketing/internal/middleware"
    "github.com/iliyamo/metro-ticketing/internal/model"
    "github.com/iliyamo/metro-ticketing/internal/service"
    "github.com/iliyamo/metro-ticketing/internal/utils"
)

// AuthHandler bundles dependencies for account endpoints.
type AuthHandler struct {
    Accounts     *service.AccountService
    JWTSecret    string
    SecureCookie bool
    Timeout      time.Duration
}

func NewAuthHandler(accounts *service.AccountService, secret string, secureCookie bool, timeout time.Duration) *AuthHandler {
    return &AuthHandler{Accounts: accounts, JWTSecret: secret, SecureCookie: secureCookie, Timeout: timeout}
}

// ----- DTOs -----

type registerReq struct {
    FirstName string `json:"firstName" form:"firstName"`
    LastName  string `json:"lastName" form:"lastName"`
    Email     string `json:"email" form:"email"`
    Password  string `json:"password" form:"password"`
}
type loginReq struct {
    Email    string `json:"email" form:"email"`
    Password string `json:"password" form:"password"`
}
type resetPasswordReq struct {
    NewPassword string `json:"newPassword"`
    Legacy      string `json:"newpassword"` // older clients
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type loginResp struct {
    User    model.User `json:"user"`
    Session tokenPart  `json:"session"`
    Access  tokenPart  `json:"access"` // bearer JWT carrying the session token
}

// Register: create a normal-role user.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    u, err := h.Accounts.Register(ctx, service.RegisterInput{
        FirstName: req.FirstName,
        LastName:  req.LastName,
        Email:     req.Email,
        Password:  req.Password,
    })
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusCreated, u)
}

// Login: open a session, set the cookie and return both tokens.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    sess, u, err := h.Accounts.Login(ctx, req.Email, req.Password)
    if err != nil {
        return writeError(c, err)
    }
    access, err := utils.NewSessionJWT(h.JWTSecret, sess.Token, u.ID, u.RoleName, sess.ExpiresAt)
    if err != nil {
        return writeError(c, err)
    }
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    sess.Token,
        Path:     "/",
        Expires:  sess.ExpiresAt,
        HttpOnly: true,
        Secure:   h.SecureCookie,
        SameSite: http.SameSiteLaxMode,
    })
    return c.JSON(http.StatusOK, loginResp{
        User:    u,
        Session: tokenPart{Token: sess.Token, Expires: sess.ExpiresAt},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// Logout: delete the session and expire the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Accounts.Logout(ctx, middleware.SessionToken(c)); err != nil {
        return writeError(c, err)
    }
    c.SetCookie(&http.Cookie{
        Name:     middleware.SessionCookie,
        Value:    "",
        Path:     "/",
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.SecureCookie,
    })
    return message(c, http.StatusOK, "logged out")
}

// GetUser returns the caller's profile.
func (h *AuthHandler) GetUser(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    profile, err := h.Accounts.Profile(ctx, u.ID)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, profile)
}

// ResetPassword replaces the caller's password.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
    u, err := caller(c)
    if err != nil {
        return writeError(c, err)
    }
    var req resetPasswordReq
    if err := bind(c, &req); err != nil {
        return writeError(c, err)
    }
    pw := req.NewPassword
    if pw == "" {
        pw = req.Legacy
    }
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    if err := h.Accounts.ResetPassword(ctx, u, pw); err != nil {
        return writeError(c, err)
    }
    return message(c, http.StatusOK, "password updated")
}

// ListUsers is the admin view of every account.
func (h *AuthHandler) ListUsers(c echo.Context) error {
    ctx, cancel := requestCtx(c, h.Timeout)
    defer cancel()

    users, err := h.Accounts.ListUsers(ctx)
    if err != nil {
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, users)
}
