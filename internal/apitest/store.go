package apitest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"chat-client/internal/models"

	"golang.org/x/crypto/bcrypt"
)

// store is the fake server's in-memory state. All access goes through the
// mutex; handlers never hold references into the maps across requests.
type store struct {
	mu sync.Mutex

	nextUserID    int
	nextChatID    int
	nextMessageID int
	nextReportID  int
	nextRequestID int

	users    map[int]*models.User
	hashes   map[int]string
	chats    map[int]*chatRecord
	messages map[int]*models.Message
	reports  map[int]*models.Report
	requests map[int]*models.FriendRequest
	contacts map[[2]int]bool
}

// chatRecord keeps participant ids instead of expanded users; expansion
// happens at response time so renames are reflected.
type chatRecord struct {
	ID           int
	Name         string
	IsGroup      bool
	CreatedBy    int
	Participants []int
	CreatedAt    time.Time
}

func newStore() *store {
	return &store{
		users:    make(map[int]*models.User),
		hashes:   make(map[int]string),
		chats:    make(map[int]*chatRecord),
		messages: make(map[int]*models.Message),
		reports:  make(map[int]*models.Report),
		requests: make(map[int]*models.FriendRequest),
		contacts: make(map[[2]int]bool),
	}
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func (s *store) createUser(username, password, role string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return nil, false
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, false
	}
	s.nextUserID++
	u := &models.User{
		ID:        s.nextUserID,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now(),
	}
	s.users[u.ID] = u
	s.hashes[u.ID] = string(hash)
	return copyUser(u), true
}

func (s *store) authenticate(username, password string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if u.Username == username {
			if bcrypt.CompareHashAndPassword([]byte(s.hashes[id]), []byte(password)) == nil {
				return copyUser(u)
			}
			return nil
		}
	}
	return nil
}

func (s *store) user(id int) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return copyUser(u)
	}
	return nil
}

func (s *store) allUsers() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) searchUsers(query string) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(query)
	var out []models.User
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), q) {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) userContacts(userID int) []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.User
	for _, u := range s.users {
		if u.ID != userID && s.contacts[pairKey(userID, u.ID)] {
			out = append(out, *copyUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) addContact(a, b int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts[pairKey(a, b)] = true
}

func (s *store) isContact(a, b int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contacts[pairKey(a, b)]
}

func (s *store) createChat(name string, isGroup bool, createdBy int, participants []int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextChatID++
	s.chats[s.nextChatID] = &chatRecord{
		ID:           s.nextChatID,
		Name:         name,
		IsGroup:      isGroup,
		CreatedBy:    createdBy,
		Participants: append([]int(nil), participants...),
		CreatedAt:    time.Now(),
	}
	return s.nextChatID
}

// findPrivateChat returns the existing 1:1 chat for the pair, 0 if none.
// This is what makes private chat creation idempotent.
func (s *store) findPrivateChat(a, b int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.chats {
		if c.IsGroup || len(c.Participants) != 2 {
			continue
		}
		if (c.Participants[0] == a && c.Participants[1] == b) ||
			(c.Participants[0] == b && c.Participants[1] == a) {
			return c.ID
		}
	}
	return 0
}

func (s *store) chatsFor(userID int) []models.Chat {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Chat
	for _, c := range s.chats {
		member := false
		for _, p := range c.Participants {
			if p == userID {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		out = append(out, s.expandChatLocked(c))
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt, out[j].CreatedAt
		if out[i].LastMessage != nil {
			ti = out[i].LastMessage.CreatedAt
		}
		if out[j].LastMessage != nil {
			tj = out[j].LastMessage.CreatedAt
		}
		return ti.After(tj)
	})
	return out
}

func (s *store) expandChatLocked(c *chatRecord) models.Chat {
	chat := models.Chat{
		ID:        c.ID,
		Name:      c.Name,
		IsGroup:   c.IsGroup,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
	if creator, ok := s.users[c.CreatedBy]; ok {
		chat.CreatedByName = creator.Username
	}
	for _, pid := range c.Participants {
		if u, ok := s.users[pid]; ok {
			chat.Participants = append(chat.Participants, models.User{ID: u.ID, Username: u.Username})
		}
	}
	var last *models.Message
	for _, m := range s.messages {
		if m.ChatID != c.ID {
			continue
		}
		if last == nil || m.CreatedAt.After(last.CreatedAt) || (m.CreatedAt.Equal(last.CreatedAt) && m.ID > last.ID) {
			last = m
		}
	}
	if last != nil {
		cp := *last
		chat.LastMessage = &cp
	}
	return chat
}

func (s *store) chatMember(chatID, userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.chats[chatID]
	if !ok {
		return false
	}
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

func (s *store) addMessage(chatID, senderID int, content string) *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMessageID++
	m := &models.Message{
		ID:        s.nextMessageID,
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if u, ok := s.users[senderID]; ok {
		m.SenderName = u.Username
	}
	s.messages[m.ID] = m
	return m
}

func (s *store) chatMessages(chatID int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (s *store) message(id int) *models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.messages[id]; ok {
		cp := *m
		return &cp
	}
	return nil
}

// deleteMessage tombstones the message; the entry is never purged.
func (s *store) deleteMessage(id, senderID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok || m.SenderID != senderID || m.IsDeleted {
		return false
	}
	m.IsDeleted = true
	return true
}

func (s *store) createReport(messageID, reporterID int, reason string) *models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReportID++
	r := &models.Report{
		ID:         s.nextReportID,
		MessageID:  messageID,
		ReporterID: reporterID,
		Reason:     reason,
		Status:     models.ReportPending,
		CreatedAt:  time.Now(),
	}
	if u, ok := s.users[reporterID]; ok {
		r.ReporterName = u.Username
	}
	s.reports[r.ID] = r
	return r
}

func (s *store) allReports() []models.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Report, 0, len(s.reports))
	for _, r := range s.reports {
		cp := *r
		if m, ok := s.messages[r.MessageID]; ok {
			mc := *m
			cp.Message = &mc
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// decideReport applies a resolution and, for block decisions, blocks the
// reported message's sender. Mirrors the server's semantics: dismiss rejects
// the report, anything else approves it.
func (s *store) decideReport(reportID int, decision string, days int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok || r.Status != models.ReportPending {
		return false
	}
	switch decision {
	case models.DecisionDismiss:
		r.Status = models.ReportRejected
		r.AdminDecision = "Report dismissed"
	case models.DecisionWarn:
		r.Status = models.ReportApproved
		r.AdminDecision = "User warned"
	case models.DecisionBlockTemporary, models.DecisionBlockPermanent:
		r.Status = models.ReportApproved
		m, ok := s.messages[r.MessageID]
		if !ok {
			return false
		}
		target, ok := s.users[m.SenderID]
		if !ok {
			return false
		}
		target.IsBlocked = true
		if decision == models.DecisionBlockPermanent {
			target.BlockedUntil = nil
			r.AdminDecision = "User blocked permanently"
		} else {
			until := time.Now().Add(time.Duration(days) * 24 * time.Hour)
			target.BlockedUntil = &until
			r.AdminDecision = "User blocked temporarily"
		}
	default:
		return false
	}
	return true
}

func (s *store) blockUser(userID int, permanent bool, days int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.IsBlocked = true
	if permanent {
		u.BlockedUntil = nil
	} else {
		until := time.Now().Add(time.Duration(days) * 24 * time.Hour)
		u.BlockedUntil = &until
	}
	return true
}

func (s *store) unblockUser(userID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false
	}
	u.IsBlocked = false
	u.BlockedUntil = nil
	return true
}

func (s *store) createFriendRequest(fromID, toID int) (*models.FriendRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r.FromUserID == fromID && r.ToUserID == toID && r.Status == "PENDING" {
			return nil, false
		}
	}
	s.nextRequestID++
	r := &models.FriendRequest{
		ID:         s.nextRequestID,
		FromUserID: fromID,
		ToUserID:   toID,
		Status:     "PENDING",
		CreatedAt:  time.Now(),
	}
	if u, ok := s.users[fromID]; ok {
		r.FromUsername = u.Username
	}
	s.requests[r.ID] = r
	return r, true
}

func (s *store) incomingRequests(userID int) []models.FriendRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.FriendRequest
	for _, r := range s.requests {
		if r.ToUserID == userID && r.Status == "PENDING" {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// resolveFriendRequest accepts or rejects a pending request addressed to the
// user. Accepting records the contact pair.
func (s *store) resolveFriendRequest(requestID, userID int, accept bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[requestID]
	if !ok || r.ToUserID != userID || r.Status != "PENDING" {
		return false
	}
	if accept {
		r.Status = "ACCEPTED"
		s.contacts[pairKey(r.FromUserID, r.ToUserID)] = true
	} else {
		r.Status = "REJECTED"
	}
	return true
}

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.BlockedUntil != nil {
		until := *u.BlockedUntil
		cp.BlockedUntil = &until
	}
	return &cp
}
