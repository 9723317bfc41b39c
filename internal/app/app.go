package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chat-client/internal/api"
	"chat-client/internal/config"
	"chat-client/internal/controller"
	"chat-client/internal/logger"
	"chat-client/internal/metrics"
	"chat-client/internal/view"

	"go.uber.org/zap"
)

// Run wires the client together and drives the page flow: auth page until a
// session exists, then the chat or admin page depending on the role.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(cfg.MetricsAddr); err != nil {
				logger.Warn("metrics listener failed", zap.Error(err))
			}
		}()
	}

	client, err := api.NewClient(cfg.BaseURL, cfg.HTTPTimeout)
	if err != nil {
		logger.Error("create client", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel everything on Ctrl-C; pollers stop with the context.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Println("\nShutting down...")
		cancel()
	}()

	a := &appState{
		cfg:      cfg,
		client:   client,
		renderer: view.NewTermRenderer(os.Stdout),
		input:    bufio.NewScanner(os.Stdin),
	}

	for ctx.Err() == nil {
		dest := a.resolveDestination(ctx)
		switch dest {
		case controller.DestChat:
			dest = a.runChatPage(ctx)
		case controller.DestAdmin:
			dest = a.runAdminPage(ctx)
		default:
			dest = a.runAuthPage(ctx)
		}
		if dest == "" {
			return
		}
	}
}

type appState struct {
	cfg      *config.Config
	client   *api.Client
	renderer *view.TermRenderer
	input    *bufio.Scanner
}

// resolveDestination checks the existing session, mirroring the server-side
// page guards: no session means the login page, admins land on the admin
// page, everyone else on chat.
func (a *appState) resolveDestination(ctx context.Context) string {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			logger.Warn("session probe failed", zap.Error(err))
		}
		return controller.DestLogin
	}
	if user.IsAdmin() {
		return controller.DestAdmin
	}
	return controller.DestChat
}

// readLine prompts and reads one line. Returns false when stdin closes.
func (a *appState) readLine(prompt string) (string, bool) {
	fmt.Print(prompt)
	if !a.input.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.input.Text()), true
}

// confirm asks a yes/no question; only an explicit "y" counts as yes.
func (a *appState) confirm(question string) bool {
	answer, ok := a.readLine(question + " [y/N] ")
	return ok && strings.EqualFold(answer, "y")
}

// runAuthPage drives the login/register tabs until a login succeeds or the
// user quits. Returns the destination page, or "" to exit.
func (a *appState) runAuthPage(ctx context.Context) string {
	auth := controller.NewAuthController(a.client, a.renderer)

	for ctx.Err() == nil {
		line, ok := a.readLine("[auth] login | register | quit > ")
		if !ok {
			return ""
		}
		switch line {
		case "login":
			auth.SwitchTab(controller.TabLogin)
			form := auth.LoginForm()
			username, ok := a.readLine(promptWithDefault("username", form.Username))
			if !ok {
				return ""
			}
			if username == "" {
				// Keep the pre-filled value from a successful registration.
				username = form.Username
			}
			password, ok := a.readLine("password: ")
			if !ok {
				return ""
			}
			auth.SetLoginForm(controller.LoginForm{Username: username, Password: password})
			if dest := auth.Login(ctx); dest != "" {
				return dest
			}
		case "register":
			auth.SwitchTab(controller.TabRegister)
			username, ok := a.readLine("username: ")
			if !ok {
				return ""
			}
			password, ok := a.readLine("password: ")
			if !ok {
				return ""
			}
			confirm, ok := a.readLine("confirm password: ")
			if !ok {
				return ""
			}
			auth.SetRegisterForm(controller.RegisterForm{
				Username:        username,
				Password:        password,
				ConfirmPassword: confirm,
			})
			auth.Register(ctx)
		case "quit", "exit":
			return ""
		case "":
		default:
			fmt.Println("unknown command")
		}
	}
	return ""
}

func promptWithDefault(label, def string) string {
	if def == "" {
		return label + ": "
	}
	return fmt.Sprintf("%s [%s]: ", label, def)
}
