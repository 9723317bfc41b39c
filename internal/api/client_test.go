package api

import (
	"context"
	"testing"
	"time"

	"chat-client/internal/apitest"
	"chat-client/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *apitest.Server {
	t.Helper()
	srv := apitest.NewServer()
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *apitest.Server) *Client {
	t.Helper()
	client, err := NewClient(srv.BaseURL, 5*time.Second)
	require.NoError(t, err)
	return client
}

func login(t *testing.T, client *Client, username, password string) {
	t.Helper()
	resp, err := client.Login(context.Background(), username, password)
	require.NoError(t, err)
	require.True(t, resp.Success)
}

func TestCurrentUser_WithoutSession(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)

	_, err := client.CurrentUser(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	resp, err := client.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// Duplicate username is an application-level failure, not an HTTP error.
	resp, err = client.Register(ctx, "alice", "other")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)

	resp, err = client.Login(ctx, "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, resp.Success)

	resp, err = client.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, models.RoleUser, resp.Role)

	user, err := client.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestLogin_BlockedAccountRejected(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)

	u := srv.SeedUser("mallory", "pw3")
	srv.SeedBlock(u.ID, nil)

	resp, err := client.Login(context.Background(), "mallory", "pw3")
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestCreatePrivateChat_Idempotent(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")
	login(t, client, "alice", "pw1")

	first, err := client.CreatePrivateChat(ctx, bob.ID)
	require.NoError(t, err)
	second, err := client.CreatePrivateChat(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSendAndFetchMessages(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	alice := srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")
	chatID := srv.SeedPrivateChat(alice.ID, bob.ID)
	login(t, client, "alice", "pw1")

	require.NoError(t, client.SendMessage(ctx, chatID, "hello bob"))

	messages, err := client.Messages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello bob", messages[0].Content)
	assert.Equal(t, "alice", messages[0].SenderName)

	chats, err := client.Chats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.NotNil(t, chats[0].LastMessage)
	assert.Equal(t, "hello bob", chats[0].LastMessage.Content)
}

func TestDeleteMessage_OnlySenderMay(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	alice := srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")
	chatID := srv.SeedPrivateChat(alice.ID, bob.ID)
	msg := srv.SeedMessage(chatID, bob.ID, "from bob")

	client := newTestClient(t, srv)
	login(t, client, "alice", "pw1")

	err := client.DeleteMessage(ctx, msg.ID)
	var apiErr *Error
	assert.ErrorAs(t, err, &apiErr)

	// The sender can, and the message becomes a tombstone.
	bobClient := newTestClient(t, srv)
	login(t, bobClient, "bob", "pw2")
	require.NoError(t, bobClient.DeleteMessage(ctx, msg.ID))

	messages, err := client.Messages(ctx, chatID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsDeleted)
}

func TestCreateGroupChat(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")
	carol := srv.SeedUser("carol", "pw3")
	login(t, client, "alice", "pw1")

	chatID, err := client.CreateGroupChat(ctx, "team", []int{bob.ID, carol.ID})
	require.NoError(t, err)
	require.NotZero(t, chatID)

	chats, err := client.Chats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.True(t, chats[0].IsGroup)
	assert.Equal(t, "team", chats[0].Name)
	assert.Len(t, chats[0].Participants, 3)
}

func TestSearchUsers(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)

	srv.SeedUser("anna", "pw1")
	srv.SeedUser("annette", "pw2")
	srv.SeedUser("bob", "pw3")
	login(t, client, "anna", "pw1")

	users, err := client.SearchUsers(context.Background(), "ANN")
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestReportMessage(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	alice := srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")
	chatID := srv.SeedPrivateChat(alice.ID, bob.ID)
	msg := srv.SeedMessage(chatID, bob.ID, "spam")
	login(t, client, "alice", "pw1")

	require.NoError(t, client.ReportMessage(ctx, msg.ID, "unsolicited ads"))

	srv.SeedAdmin("root", "pw4")
	adminClient := newTestClient(t, srv)
	login(t, adminClient, "root", "pw4")

	reports, err := adminClient.AdminReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "alice", reports[0].ReporterName)
	assert.Equal(t, "unsolicited ads", reports[0].Reason)
	assert.True(t, reports[0].IsPending())
	require.NotNil(t, reports[0].Message)
	assert.Equal(t, "spam", reports[0].Message.Content)
}

func TestAdminEndpoints_RequireAdminRole(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)

	srv.SeedUser("alice", "pw1")
	login(t, client, "alice", "pw1")

	_, err := client.AdminReports(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.AdminUsers(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestDecideReport_BlocksSender(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	alice := srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")
	srv.SeedAdmin("root", "pw4")
	chatID := srv.SeedPrivateChat(alice.ID, bob.ID)
	msg := srv.SeedMessage(chatID, bob.ID, "spam")
	report := srv.SeedReport(msg.ID, alice.ID, "spam")

	client := newTestClient(t, srv)
	login(t, client, "root", "pw4")

	require.NoError(t, client.DecideReport(ctx, report.ID, models.DecisionBlockTemporary, 3))

	reports, err := client.AdminReports(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, reports[0].IsResolved())
	assert.NotEmpty(t, reports[0].AdminDecision)

	users, err := client.AdminUsers(ctx)
	require.NoError(t, err)
	for _, u := range users {
		if u.ID == bob.ID {
			assert.True(t, u.IsCurrentlyBlocked(time.Now()))
		}
	}
}

func TestUnblockUser(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	bob := srv.SeedUser("bob", "pw2")
	srv.SeedAdmin("root", "pw4")
	srv.SeedBlock(bob.ID, nil)

	client := newTestClient(t, srv)
	login(t, client, "root", "pw4")

	require.NoError(t, client.UnblockUser(ctx, bob.ID))

	users, err := client.AdminUsers(ctx)
	require.NoError(t, err)
	for _, u := range users {
		if u.ID == bob.ID {
			assert.False(t, u.IsCurrentlyBlocked(time.Now()))
		}
	}
}

func TestBlockUser_Direct(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	bob := srv.SeedUser("bob", "pw2")
	srv.SeedAdmin("root", "pw4")

	client := newTestClient(t, srv)
	login(t, client, "root", "pw4")

	require.NoError(t, client.BlockUser(ctx, bob.ID, false, 2))

	users, err := client.AdminUsers(ctx)
	require.NoError(t, err)
	blocked := false
	for _, u := range users {
		if u.ID == bob.ID {
			blocked = u.IsCurrentlyBlocked(time.Now())
		}
	}
	assert.True(t, blocked)
}

func TestFriendRequestFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	srv.SeedUser("alice", "pw1")
	bob := srv.SeedUser("bob", "pw2")

	aliceClient := newTestClient(t, srv)
	login(t, aliceClient, "alice", "pw1")

	resp, err := aliceClient.SendFriendRequest(ctx, bob.ID)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// Sending the same request twice is rejected.
	resp, err = aliceClient.SendFriendRequest(ctx, bob.ID)
	require.NoError(t, err)
	assert.False(t, resp.Success)

	bobClient := newTestClient(t, srv)
	login(t, bobClient, "bob", "pw2")

	incoming, err := bobClient.IncomingFriendRequests(ctx)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, "alice", incoming[0].FromUsername)

	resp, err = bobClient.AcceptFriendRequest(ctx, incoming[0].ID)
	require.NoError(t, err)
	assert.True(t, resp.Success)

	// Accepted requests disappear from the queue and create a contact.
	incoming, err = bobClient.IncomingFriendRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	contacts, err := bobClient.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "alice", contacts[0].Username)
}

func TestLogout_EndsSession(t *testing.T) {
	srv := newTestServer(t)
	client := newTestClient(t, srv)
	ctx := context.Background()

	srv.SeedUser("alice", "pw1")
	login(t, client, "alice", "pw1")

	require.NoError(t, client.Logout(ctx))

	_, err := client.CurrentUser(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
