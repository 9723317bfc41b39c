package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"chat-client/internal/api"
	"chat-client/internal/apitest"
	"chat-client/internal/view"

	"github.com/stretchr/testify/require"
)

// fakeRenderer records everything a controller asks it to show.
type fakeRenderer struct {
	mu sync.Mutex

	currentUser   string
	chatLists     [][]view.ChatListItem
	conversations []view.Conversation
	searchResults [][]view.SearchResult
	searchCleared int
	contacts      [][]view.ContactOption
	friendReqs    [][]view.FriendRequestView
	reports       [][]view.ReportView
	users         [][]view.UserRow
	infos         []string
	errors        []string
}

func (f *fakeRenderer) ShowCurrentUser(username string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentUser = username
}

func (f *fakeRenderer) RenderChatList(items []view.ChatListItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatLists = append(f.chatLists, items)
}

func (f *fakeRenderer) RenderConversation(conv view.Conversation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conversations = append(f.conversations, conv)
}

func (f *fakeRenderer) RenderSearchResults(results []view.SearchResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchResults = append(f.searchResults, results)
}

func (f *fakeRenderer) ClearSearchResults() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCleared++
}

func (f *fakeRenderer) RenderContacts(contacts []view.ContactOption) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contacts = append(f.contacts, contacts)
}

func (f *fakeRenderer) RenderFriendRequests(reqs []view.FriendRequestView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.friendReqs = append(f.friendReqs, reqs)
}

func (f *fakeRenderer) RenderReports(reports []view.ReportView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, reports)
}

func (f *fakeRenderer) RenderUsers(users []view.UserRow) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = append(f.users, users)
}

func (f *fakeRenderer) ShowInfo(scope, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infos = append(f.infos, scope+": "+text)
}

func (f *fakeRenderer) ShowError(scope, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors = append(f.errors, scope+": "+text)
}

func (f *fakeRenderer) lastChatList() []view.ChatListItem {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.chatLists) == 0 {
		return nil
	}
	return f.chatLists[len(f.chatLists)-1]
}

func (f *fakeRenderer) lastConversation() *view.Conversation {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.conversations) == 0 {
		return nil
	}
	return &f.conversations[len(f.conversations)-1]
}

func (f *fakeRenderer) lastUsers() []view.UserRow {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.users) == 0 {
		return nil
	}
	return f.users[len(f.users)-1]
}

func (f *fakeRenderer) lastReports() []view.ReportView {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reports) == 0 {
		return nil
	}
	return f.reports[len(f.reports)-1]
}

func newTestServer(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer()
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *apitest.Server) *api.Client {
	t.Helper()
	client, err := api.NewClient(srv.BaseURL, 5*time.Second)
	require.NoError(t, err)
	return client
}

func loginAs(t *testing.T, client *api.Client, username, password string) {
	t.Helper()
	resp, err := client.Login(context.Background(), username, password)
	require.NoError(t, err)
	require.True(t, resp.Success)
}

// testInterval keeps background polling out of the way so tests only observe
// the requests they trigger.
const testInterval = time.Hour
