// Package apitest provides an in-process messenger server for exercising the
// client. It speaks the same HTTP contract as the real backend over an
// in-memory store and records every request so tests can assert which calls
// were (or were not) made.
package apitest

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"chat-client/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const sessionCookie = "session"

// Server is the fake messenger backend.
type Server struct {
	App     *fiber.App
	BaseURL string

	store  *store
	secret []byte
	ln     net.Listener

	reqMu    sync.Mutex
	requests []string
}

// NewServer builds the app with all routes registered. Call Start to listen.
func NewServer() *Server {
	s := &Server{
		store:  newStore(),
		secret: []byte(uuid.New().String()),
	}

	// Immutable copies request data out of fasthttp's pooled buffers; the
	// store keeps form values past the handler's lifetime.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	// Request log for test assertions.
	app.Use(func(c *fiber.Ctx) error {
		s.reqMu.Lock()
		s.requests = append(s.requests, c.Method()+" "+c.Path())
		s.reqMu.Unlock()
		return c.Next()
	})

	// Logout redirects here.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("login page")
	})

	api := app.Group("/api")

	api.Post("/register", s.handleRegister)
	api.Post("/login", s.handleLogin)
	api.Post("/logout", s.handleLogout)
	api.Get("/user/current", s.handleCurrentUser)

	api.Get("/chats", s.requireUser(s.handleChats))
	api.Get("/chat/:id/messages", s.requireUser(s.handleMessages))
	api.Post("/chat/private", s.requireUser(s.handlePrivateChat))
	api.Post("/chat/group", s.requireUser(s.handleGroupChat))
	api.Post("/message", s.requireUser(s.handleSendMessage))
	api.Delete("/message/:id", s.requireUser(s.handleDeleteMessage))
	api.Get("/users/search", s.requireUser(s.handleSearchUsers))
	api.Get("/contacts", s.requireUser(s.handleContacts))
	api.Post("/report", s.requireUser(s.handleReport))

	api.Post("/friend-request", s.requireUser(s.handleFriendRequest))
	api.Get("/friend-requests/incoming", s.requireUser(s.handleIncomingRequests))
	api.Post("/friend-requests/:id/accept", s.requireUser(s.handleAcceptRequest))
	api.Post("/friend-requests/:id/reject", s.requireUser(s.handleRejectRequest))

	admin := api.Group("/admin", s.requireAdmin)
	admin.Get("/reports", s.handleAdminReports)
	admin.Get("/users", s.handleAdminUsers)
	admin.Post("/reports/:id/decide", s.handleDecideReport)
	admin.Post("/users/:id/unblock", s.handleUnblockUser)
	admin.Post("/users/:id/block", s.handleBlockUser)

	s.App = app
	return s
}

// Start listens on a random local port and serves until Close.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln
	s.BaseURL = "http://" + ln.Addr().String()
	go func() {
		_ = s.App.Listener(ln)
	}()
	return nil
}

// Close shuts the server down. The listener is closed directly as well:
// Shutdown alone can race the goroutine in Start that hands the listener to
// the app, leaving it serving.
func (s *Server) Close() {
	_ = s.App.Shutdown()
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

// Requests returns the methods and paths seen so far, in order.
func (s *Server) Requests() []string {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()
	return append([]string(nil), s.requests...)
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()
	s.requests = nil
}

// ---- session handling ----

func (s *Server) issueToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(72 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Server) sessionUser(c *fiber.Ctx) *models.User {
	cookie := c.Cookies(sessionCookie)
	if cookie == "" {
		return nil
	}
	token, err := jwt.Parse(cookie, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}
	idf, ok := claims["user_id"].(float64)
	if !ok {
		return nil
	}
	return s.store.user(int(idf))
}

func (s *Server) requireUser(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := s.sessionUser(c)
		if user == nil {
			return c.Status(401).JSON(fiber.Map{"error": "Not authenticated"})
		}
		c.Locals("user", user)
		return h(c)
	}
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	user := s.sessionUser(c)
	if user == nil || user.Role != models.RoleAdmin {
		return c.Status(403).JSON(fiber.Map{"error": "Access denied"})
	}
	c.Locals("user", user)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *models.User {
	return c.Locals("user").(*models.User)
}

// ---- auth ----

func (s *Server) handleRegister(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.JSON(fiber.Map{"success": false, "message": "All fields are required"})
	}
	if len(username) < 3 {
		return c.JSON(fiber.Map{"success": false, "message": "Username must be at least 3 characters"})
	}
	if len(password) < 3 {
		return c.JSON(fiber.Map{"success": false, "message": "Password must be at least 3 characters"})
	}
	if _, ok := s.store.createUser(username, password, models.RoleUser); !ok {
		return c.JSON(fiber.Map{"success": false, "message": "Username already taken"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Registration successful! You can now log in."})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.JSON(fiber.Map{"success": false, "message": "All fields are required"})
	}
	user := s.store.authenticate(username, password)
	if user == nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid username or password"})
	}
	if user.IsCurrentlyBlocked(time.Now()) {
		return c.JSON(fiber.Map{"success": false, "message": "Account is blocked"})
	}
	token, err := s.issueToken(user)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "failed to create session"})
	}
	c.Cookie(&fiber.Cookie{Name: sessionCookie, Value: token, HTTPOnly: true})
	return c.JSON(fiber.Map{"success": true, "role": user.Role})
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{Name: sessionCookie, Value: "", Expires: time.Now().Add(-time.Hour), HTTPOnly: true})
	return c.Redirect("/")
}

func (s *Server) handleCurrentUser(c *fiber.Ctx) error {
	user := s.sessionUser(c)
	if user == nil {
		return c.Status(401).JSON(fiber.Map{"error": "Not authenticated"})
	}
	return c.JSON(user)
}

// ---- chat ----

func (s *Server) handleChats(c *fiber.Ctx) error {
	return c.JSON(s.store.chatsFor(currentUser(c).ID))
}

func (s *Server) handleMessages(c *fiber.Ctx) error {
	chatID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid chat id"})
	}
	if !s.store.chatMember(chatID, currentUser(c).ID) {
		return c.Status(404).JSON(fiber.Map{"error": "Chat not found"})
	}
	return c.JSON(s.store.chatMessages(chatID))
}

func (s *Server) handlePrivateChat(c *fiber.Ctx) error {
	otherID, err := strconv.Atoi(c.FormValue("otherUserId"))
	if err != nil || otherID == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "otherUserId required"})
	}
	if s.store.user(otherID) == nil {
		return c.Status(404).JSON(fiber.Map{"error": "User not found"})
	}
	me := currentUser(c).ID
	if id := s.store.findPrivateChat(me, otherID); id != 0 {
		return c.JSON(fiber.Map{"chatId": id})
	}
	id := s.store.createChat("", false, me, []int{me, otherID})
	return c.JSON(fiber.Map{"chatId": id})
}

func (s *Server) handleGroupChat(c *fiber.Ctx) error {
	var req models.CreateGroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request"})
	}
	if req.Name == "" || len(req.ParticipantIDs) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Name and participants required"})
	}
	me := currentUser(c).ID
	participants := append([]int{me}, req.ParticipantIDs...)
	id := s.store.createChat(req.Name, true, me, participants)
	return c.JSON(fiber.Map{"chatId": id})
}

func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	chatID, err := strconv.Atoi(c.FormValue("chatId"))
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid chat id"})
	}
	content := c.FormValue("content")
	if content == "" {
		return c.JSON(fiber.Map{"success": false, "message": "Message is empty"})
	}
	user := currentUser(c)
	if user.IsCurrentlyBlocked(time.Now()) {
		return c.JSON(fiber.Map{"success": false, "message": "Account is blocked"})
	}
	if !s.store.chatMember(chatID, user.ID) {
		return c.JSON(fiber.Map{"success": false, "message": "Chat not found"})
	}
	s.store.addMessage(chatID, user.ID, content)
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleDeleteMessage(c *fiber.Ctx) error {
	messageID, err := c.ParamsInt("id")
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid message id"})
	}
	if !s.store.deleteMessage(messageID, currentUser(c).ID) {
		return c.JSON(fiber.Map{"success": false, "message": "Cannot delete this message"})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (s *Server) handleSearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.JSON([]models.User{})
	}
	return c.JSON(s.store.searchUsers(query))
}

func (s *Server) handleContacts(c *fiber.Ctx) error {
	return c.JSON(s.store.userContacts(currentUser(c).ID))
}

func (s *Server) handleReport(c *fiber.Ctx) error {
	messageID, err := strconv.Atoi(c.FormValue("messageId"))
	if err != nil {
		return c.JSON(fiber.Map{"success": false, "message": "Invalid message id"})
	}
	reason := c.FormValue("reason")
	if reason == "" {
		return c.JSON(fiber.Map{"success": false, "message": "Reason required"})
	}
	if s.store.message(messageID) == nil {
		return c.JSON(fiber.Map{"success": false, "message": "Message not found"})
	}
	s.store.createReport(messageID, currentUser(c).ID, reason)
	return c.JSON(fiber.Map{"success": true})
}

// ---- friend requests ----

func (s *Server) handleFriendRequest(c *fiber.Ctx) error {
	toID, err := strconv.Atoi(c.FormValue("toUserId"))
	if err != nil || s.store.user(toID) == nil {
		return c.JSON(fiber.Map{"success": false, "message": "User not found"})
	}
	me := currentUser(c).ID
	if s.store.isContact(me, toID) {
		return c.JSON(fiber.Map{"success": false, "message": "User is already a contact"})
	}
	if _, ok := s.store.createFriendRequest(me, toID); !ok {
		return c.JSON(fiber.Map{"success": false, "message": "Request already sent"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Request sent"})
}

func (s *Server) handleIncomingRequests(c *fiber.Ctx) error {
	return c.JSON(s.store.incomingRequests(currentUser(c).ID))
}

func (s *Server) handleAcceptRequest(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || !s.store.resolveFriendRequest(id, currentUser(c).ID, true) {
		return c.JSON(fiber.Map{"success": false, "message": "Request not found"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Request accepted"})
}

func (s *Server) handleRejectRequest(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || !s.store.resolveFriendRequest(id, currentUser(c).ID, false) {
		return c.JSON(fiber.Map{"success": false, "message": "Request not found"})
	}
	return c.JSON(fiber.Map{"success": true, "message": "Request rejected"})
}

// ---- admin ----

func (s *Server) handleAdminReports(c *fiber.Ctx) error {
	return c.JSON(s.store.allReports())
}

func (s *Server) handleAdminUsers(c *fiber.Ctx) error {
	return c.JSON(s.store.allUsers())
}

func (s *Server) handleDecideReport(c *fiber.Ctx) error {
	reportID, err := c.ParamsInt("id")
	if err != nil {
		return c.JSON(fiber.Map{"success": false})
	}
	decision := c.FormValue("decision")
	days, _ := strconv.Atoi(c.FormValue("days"))
	if decision == models.DecisionBlockTemporary && days < 1 {
		return c.JSON(fiber.Map{"success": false})
	}
	return c.JSON(fiber.Map{"success": s.store.decideReport(reportID, decision, days)})
}

func (s *Server) handleUnblockUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.JSON(fiber.Map{"success": false})
	}
	return c.JSON(fiber.Map{"success": s.store.unblockUser(userID)})
}

func (s *Server) handleBlockUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("id")
	if err != nil {
		return c.JSON(fiber.Map{"success": false})
	}
	permanent := c.FormValue("permanent") == "true"
	days, _ := strconv.Atoi(c.FormValue("days"))
	if !permanent && days < 1 {
		return c.JSON(fiber.Map{"success": false})
	}
	return c.JSON(fiber.Map{"success": s.store.blockUser(userID, permanent, days)})
}

// ---- seed helpers ----

// SeedUser creates an account directly in the store.
func (s *Server) SeedUser(username, password string) *models.User {
	u, _ := s.store.createUser(username, password, models.RoleUser)
	return u
}

// SeedAdmin creates an admin account.
func (s *Server) SeedAdmin(username, password string) *models.User {
	u, _ := s.store.createUser(username, password, models.RoleAdmin)
	return u
}

// SeedPrivateChat creates a 1:1 chat between two users.
func (s *Server) SeedPrivateChat(a, b int) int {
	return s.store.createChat("", false, a, []int{a, b})
}

// SeedGroupChat creates a group chat.
func (s *Server) SeedGroupChat(name string, createdBy int, participants ...int) int {
	return s.store.createChat(name, true, createdBy, participants)
}

// SeedMessage adds a message to a chat.
func (s *Server) SeedMessage(chatID, senderID int, content string) *models.Message {
	return s.store.addMessage(chatID, senderID, content)
}

// SeedReport files a report against a message.
func (s *Server) SeedReport(messageID, reporterID int, reason string) *models.Report {
	return s.store.createReport(messageID, reporterID, reason)
}

// SeedContact records a mutual contact pair, making both users eligible for
// each other's groups.
func (s *Server) SeedContact(a, b int) {
	s.store.addContact(a, b)
}

// SeedBlock blocks a user directly. A nil until means permanent.
func (s *Server) SeedBlock(userID int, until *time.Time) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if u, ok := s.store.users[userID]; ok {
		u.IsBlocked = true
		u.BlockedUntil = until
	}
}
