package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"chat-client/internal/api"
	"chat-client/internal/logger"
	"chat-client/internal/metrics"
	"chat-client/internal/models"
	"chat-client/internal/poller"
	"chat-client/internal/view"

	"go.uber.org/zap"
)

// Validation errors raised before any request is issued.
var (
	ErrNoDecision   = errors.New("no decision selected")
	ErrBadDecision  = errors.New("unknown decision")
	ErrDaysRequired = errors.New("temporary block requires a positive day count")
)

var validDecisions = map[string]bool{
	models.DecisionDismiss:        true,
	models.DecisionWarn:           true,
	models.DecisionBlockTemporary: true,
	models.DecisionBlockPermanent: true,
}

// AdminController owns the moderation page: the report queue and the user
// list, both re-fetched on a timer and after every decision.
type AdminController struct {
	client   *api.Client
	view     view.Renderer
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	admin   *models.User
	reports []models.Report
	users   []models.User

	poll *poller.Poller
}

// NewAdminController creates the controller; nothing is fetched until Start.
func NewAdminController(client *api.Client, v view.Renderer, pollInterval time.Duration) *AdminController {
	return &AdminController{
		client:   client,
		view:     v,
		interval: pollInterval,
		now:      time.Now,
	}
}

// Start verifies the session and role before fetching any admin data, then
// loads both lists and begins polling. A non-empty redirect means the caller
// must leave the page without loading anything.
func (a *AdminController) Start(ctx context.Context) (redirect string, err error) {
	redirect = a.CheckSession(ctx)
	if redirect != "" {
		return redirect, nil
	}
	a.LoadReports(ctx)
	a.LoadUsers(ctx)

	a.poll = poller.New(a.interval, a.refreshCycle)
	a.poll.Start(ctx)
	return "", nil
}

// Stop ends the polling loop.
func (a *AdminController) Stop() {
	if a.poll != nil {
		a.poll.Stop()
	}
}

// CheckSession fetches the current user and gates the page on the admin
// role: an absent session redirects to login, a non-admin session to the
// chat page. No admin data is fetched in either case.
func (a *AdminController) CheckSession(ctx context.Context) (redirect string) {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		if !errors.Is(err, api.ErrUnauthorized) {
			logger.Warn("admin session check failed", zap.Error(err))
		}
		return DestLogin
	}
	if !user.IsAdmin() {
		return DestChat
	}
	a.mu.Lock()
	a.admin = user
	a.mu.Unlock()
	a.view.ShowCurrentUser(user.Username)
	return ""
}

func (a *AdminController) refreshCycle(ctx context.Context) {
	a.LoadReports(ctx)
	a.LoadUsers(ctx)
	metrics.PollCyclesTotal.WithLabelValues("admin").Inc()
}

// LoadReports re-fetches the report queue and re-renders it.
func (a *AdminController) LoadReports(ctx context.Context) {
	reports, err := a.client.AdminReports(ctx)
	if err != nil {
		logger.Warn("load reports failed", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.reports = reports
	a.mu.Unlock()
	a.view.RenderReports(view.BuildReportViews(reports))
}

// LoadUsers re-fetches the user list and re-renders it. Blocked state is
// derived from the wall clock on every render, so an expired temporary block
// shows as active without any server change.
func (a *AdminController) LoadUsers(ctx context.Context) {
	users, err := a.client.AdminUsers(ctx)
	if err != nil {
		logger.Warn("load users failed", zap.Error(err))
		return
	}
	a.mu.Lock()
	a.users = users
	a.mu.Unlock()
	a.view.RenderUsers(view.BuildUserRows(users, a.now()))
}

// Reports returns the cached report list.
func (a *AdminController) Reports() []models.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reports
}

// DecideReport submits a resolution. Exactly one known decision is required
// and a temporary block needs a positive day count; violations are reported
// inline and never reach the network. On success both lists refresh (a block
// changes user state); on failure the caller keeps the modal open for retry.
func (a *AdminController) DecideReport(ctx context.Context, reportID int, decision string, days int) error {
	if decision == "" {
		a.view.ShowError("decision", "Select a decision")
		return ErrNoDecision
	}
	if !validDecisions[decision] {
		a.view.ShowError("decision", "Select a decision")
		return ErrBadDecision
	}
	if decision == models.DecisionBlockTemporary && days < 1 {
		a.view.ShowError("decision", "Enter the number of days for the block")
		return ErrDaysRequired
	}

	if err := a.client.DecideReport(ctx, reportID, decision, days); err != nil {
		logger.Warn("decide report failed", zap.Int("report_id", reportID), zap.Error(err))
		a.view.ShowError("decision", "Failed to process the report")
		return err
	}
	a.LoadReports(ctx)
	a.LoadUsers(ctx)
	return nil
}

// FilterUsers applies a case-insensitive substring filter to the cached user
// list, with no server round-trip. An empty query restores the full list.
func (a *AdminController) FilterUsers(query string) {
	a.mu.Lock()
	users := a.users
	a.mu.Unlock()

	if strings.TrimSpace(query) == "" {
		a.view.RenderUsers(view.BuildUserRows(users, a.now()))
		return
	}

	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]models.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Username), q) {
			filtered = append(filtered, u)
		}
	}
	a.view.RenderUsers(view.BuildUserRows(filtered, a.now()))
}

// UnblockUser lifts a block after explicit confirmation; without it no
// request is made. On success the user list refreshes.
func (a *AdminController) UnblockUser(ctx context.Context, userID int, confirmed bool) error {
	if !confirmed {
		return nil
	}
	if err := a.client.UnblockUser(ctx, userID); err != nil {
		logger.Warn("unblock failed", zap.Int("user_id", userID), zap.Error(err))
		a.view.ShowError("users", "Failed to unblock the user")
		return err
	}
	a.LoadUsers(ctx)
	return nil
}

// BlockUser blocks an account directly, mirroring the decision flow: either
// permanent or temporary with a mandatory positive day count.
func (a *AdminController) BlockUser(ctx context.Context, userID int, permanent bool, days int) error {
	if !permanent && days < 1 {
		a.view.ShowError("users", "Enter the number of days for the block")
		return ErrDaysRequired
	}
	if err := a.client.BlockUser(ctx, userID, permanent, days); err != nil {
		logger.Warn("block failed", zap.Int("user_id", userID), zap.Error(err))
		a.view.ShowError("users", "Failed to block the user")
		return err
	}
	a.LoadUsers(ctx)
	return nil
}

// Logout stops polling and ends the session.
func (a *AdminController) Logout(ctx context.Context) {
	a.Stop()
	if err := a.client.Logout(ctx); err != nil {
		logger.Warn("logout failed", zap.Error(err))
	}
}
