package controller

import (
	"context"
	"sync"

	"chat-client/internal/api"
	"chat-client/internal/logger"
	"chat-client/internal/view"

	"go.uber.org/zap"
)

// Page destinations after a successful login.
const (
	DestChat  = "/chat"
	DestAdmin = "/admin"
	DestLogin = "/"
)

// User-facing fallback messages. Server-supplied text takes precedence.
const (
	msgConnectionError  = "Connection error"
	msgLoginFailed      = "Login failed"
	msgRegisterFailed   = "Registration failed"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordTooShort = "Password must be at least 3 characters"
	msgRegisterSuccess  = "Registration successful! You can now log in."
)

// Tab identifies the visible auth form.
type Tab string

const (
	TabLogin    Tab = "login"
	TabRegister Tab = "register"
)

// LoginForm holds the login tab's entered values.
type LoginForm struct {
	Username string
	Password string
}

// RegisterForm holds the register tab's entered values.
type RegisterForm struct {
	Username        string
	Password        string
	ConfirmPassword string
}

// AuthController drives the login/register page. Switching tabs keeps the
// hidden form's values; a successful registration pre-fills the login tab.
type AuthController struct {
	client *api.Client
	view   view.Renderer

	mu        sync.Mutex
	activeTab Tab
	login     LoginForm
	register  RegisterForm
}

// NewAuthController creates the controller with the login tab active.
func NewAuthController(client *api.Client, v view.Renderer) *AuthController {
	return &AuthController{
		client:    client,
		view:      v,
		activeTab: TabLogin,
	}
}

// SwitchTab changes the visible form. Both forms keep their values.
func (a *AuthController) SwitchTab(tab Tab) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.activeTab = tab
}

// ActiveTab returns the currently visible form.
func (a *AuthController) ActiveTab() Tab {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeTab
}

// SetLoginForm updates the login tab's entered values.
func (a *AuthController) SetLoginForm(form LoginForm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.login = form
}

// LoginForm returns the login tab's current values.
func (a *AuthController) LoginForm() LoginForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.login
}

// SetRegisterForm updates the register tab's entered values.
func (a *AuthController) SetRegisterForm(form RegisterForm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.register = form
}

// RegisterForm returns the register tab's current values.
func (a *AuthController) RegisterForm() RegisterForm {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.register
}

// Login submits the login form. On success it returns the destination page
// for the returned role; on failure it shows the server message (or a
// generic fallback) inline and returns an empty destination.
func (a *AuthController) Login(ctx context.Context) string {
	a.mu.Lock()
	form := a.login
	a.mu.Unlock()

	resp, err := a.client.Login(ctx, form.Username, form.Password)
	if err != nil {
		logger.Warn("login request failed", zap.Error(err))
		a.view.ShowError("login", msgConnectionError)
		return ""
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = msgLoginFailed
		}
		a.view.ShowError("login", msg)
		return ""
	}
	if resp.Role == "ADMIN" {
		return DestAdmin
	}
	return DestChat
}

// Register validates the form client-side, then submits it. Validation
// failures never reach the network. On success the login tab becomes active
// with the username pre-filled.
func (a *AuthController) Register(ctx context.Context) bool {
	a.mu.Lock()
	form := a.register
	a.mu.Unlock()

	if form.Password != form.ConfirmPassword {
		a.view.ShowError("register", msgPasswordMismatch)
		return false
	}
	if len(form.Password) < 3 {
		a.view.ShowError("register", msgPasswordTooShort)
		return false
	}

	resp, err := a.client.Register(ctx, form.Username, form.Password)
	if err != nil {
		logger.Warn("register request failed", zap.Error(err))
		a.view.ShowError("register", msgConnectionError)
		return false
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = msgRegisterFailed
		}
		a.view.ShowError("register", msg)
		return false
	}

	a.view.ShowInfo("register", msgRegisterSuccess)
	a.mu.Lock()
	a.activeTab = TabLogin
	a.login.Username = form.Username
	a.mu.Unlock()
	return true
}
