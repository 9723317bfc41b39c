package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"chat-client/internal/api"
	"chat-client/internal/controller"
	"chat-client/internal/models"
)

const chatHelp = `commands:
  chats                     show chat list
  open <chatId>             switch to a chat
  send <text>               send to the active chat
  search <query>            search users (empty clears)
  with <userId>             start a private chat
  contacts                  list group-eligible contacts
  group <name> <id> [id..]  create a group chat
  delete <messageId>        delete own message (asks to confirm)
  report <messageId> <why>  report a message
  friends                   show incoming friend requests
  friend <userId>           send a friend request
  accept <requestId>        accept a friend request
  reject <requestId>        reject a friend request
  logout | quit`

// runChatPage owns the chat page lifetime: session check, initial load,
// background polling, then the command loop. Returns the next destination,
// or "" to exit.
func (a *appState) runChatPage(ctx context.Context) string {
	chat := controller.NewChatController(a.client, a.renderer, a.cfg.ChatPollInterval)
	if err := chat.Start(ctx); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return controller.DestLogin
		}
		fmt.Println("failed to load the chat page:", err)
		return controller.DestLogin
	}
	defer chat.Stop()

	fmt.Println(chatHelp)
	for ctx.Err() == nil {
		line, ok := a.readLine("[chat] > ")
		if !ok {
			return ""
		}
		cmd, arg := splitCommand(line)
		switch cmd {
		case "chats":
			chat.RefreshChats(ctx)
		case "open":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: open <chatId>")
				continue
			}
			if err := chat.SelectChat(ctx, id); err != nil {
				fmt.Println("no such chat")
			}
		case "send":
			if err := chat.SendMessage(ctx, arg); err != nil && errors.Is(err, controller.ErrNoChatSelected) {
				fmt.Println("open a chat first")
			}
		case "search":
			chat.SearchUsers(ctx, arg)
		case "with":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: with <userId>")
				continue
			}
			_ = chat.StartPrivateChat(ctx, id)
		case "contacts":
			_ = chat.LoadContacts(ctx)
		case "group":
			name, ids, err := parseGroupArgs(arg)
			if err != nil {
				fmt.Println("usage: group <name> <userId> [userId...]")
				continue
			}
			_ = chat.CreateGroup(ctx, name, ids)
		case "delete":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: delete <messageId>")
				continue
			}
			confirmed := a.confirm("Delete this message?")
			if err := chat.DeleteMessage(ctx, id, confirmed); errors.Is(err, controller.ErrNotAllowed) {
				fmt.Println("you can only delete your own messages")
			}
		case "report":
			id, reason, err := parseIDAndText(arg)
			if err != nil {
				fmt.Println("usage: report <messageId> <reason>")
				continue
			}
			_ = chat.ReportMessage(ctx, id, reason)
		case "friends":
			_ = chat.LoadFriendRequests(ctx)
		case "friend":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: friend <userId>")
				continue
			}
			_ = chat.SendFriendRequest(ctx, id)
		case "accept":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: accept <requestId>")
				continue
			}
			_ = chat.AcceptFriendRequest(ctx, id)
		case "reject":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: reject <requestId>")
				continue
			}
			_ = chat.RejectFriendRequest(ctx, id)
		case "logout":
			chat.Logout(ctx)
			return controller.DestLogin
		case "quit", "exit":
			return ""
		case "help":
			fmt.Println(chatHelp)
		case "":
		default:
			fmt.Println("unknown command (try: help)")
		}
	}
	return ""
}

const adminHelp = `commands:
  reports                       show report queue
  users                         show user list
  filter <query>                filter users by name (empty shows all)
  decide <reportId> <decision> [days]
                                decisions: dismiss, warn, block_temporary, block_permanent
  block <userId> forever        block permanently
  block <userId> <days>         block temporarily
  unblock <userId>              unblock (asks to confirm)
  logout | quit`

// runAdminPage owns the admin page lifetime. The role check happens before
// any moderation data is fetched; a non-admin session is sent back to the
// chat page.
func (a *appState) runAdminPage(ctx context.Context) string {
	admin := controller.NewAdminController(a.client, a.renderer, a.cfg.AdminPollInterval)
	redirect, err := admin.Start(ctx)
	if err != nil {
		fmt.Println("failed to load the admin page:", err)
		return controller.DestLogin
	}
	if redirect != "" {
		return redirect
	}
	defer admin.Stop()

	fmt.Println(adminHelp)
	for ctx.Err() == nil {
		line, ok := a.readLine("[admin] > ")
		if !ok {
			return ""
		}
		cmd, arg := splitCommand(line)
		switch cmd {
		case "reports":
			admin.LoadReports(ctx)
		case "users":
			admin.LoadUsers(ctx)
		case "filter":
			admin.FilterUsers(arg)
		case "decide":
			id, rest, err := parseIDAndText(arg)
			if err != nil {
				fmt.Println("usage: decide <reportId> <decision> [days]")
				continue
			}
			fields := strings.Fields(rest)
			decision := ""
			days := 0
			if len(fields) > 0 {
				decision = fields[0]
			}
			if len(fields) > 1 {
				days, _ = strconv.Atoi(fields[1])
			}
			if decision == models.DecisionBlockTemporary && days == 0 {
				answer, ok := a.readLine("days to block: ")
				if !ok {
					return ""
				}
				days, _ = strconv.Atoi(answer)
			}
			_ = admin.DecideReport(ctx, id, decision, days)
		case "block":
			id, rest, err := parseIDAndText(arg)
			if err != nil {
				fmt.Println("usage: block <userId> <forever|days>")
				continue
			}
			if rest == "forever" {
				_ = admin.BlockUser(ctx, id, true, 0)
				continue
			}
			days, convErr := strconv.Atoi(rest)
			if convErr != nil {
				fmt.Println("usage: block <userId> <forever|days>")
				continue
			}
			_ = admin.BlockUser(ctx, id, false, days)
		case "unblock":
			id, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Println("usage: unblock <userId>")
				continue
			}
			confirmed := a.confirm("Unblock this user?")
			_ = admin.UnblockUser(ctx, id, confirmed)
		case "logout":
			admin.Logout(ctx)
			return controller.DestLogin
		case "quit", "exit":
			return ""
		case "help":
			fmt.Println(adminHelp)
		case "":
		default:
			fmt.Println("unknown command (try: help)")
		}
	}
	return ""
}

func splitCommand(line string) (cmd, arg string) {
	parts := strings.SplitN(line, " ", 2)
	cmd = parts[0]
	if len(parts) > 1 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg
}

// parseIDAndText splits "<id> <rest...>" style arguments.
func parseIDAndText(arg string) (int, string, error) {
	parts := strings.SplitN(arg, " ", 2)
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, "", err
	}
	rest := ""
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}
	return id, rest, nil
}

// parseGroupArgs splits "<name> <id> [id...]" for group creation.
func parseGroupArgs(arg string) (string, []int, error) {
	fields := strings.Fields(arg)
	if len(fields) < 2 {
		return "", nil, errors.New("name and at least one participant required")
	}
	name := fields[0]
	ids := make([]int, 0, len(fields)-1)
	for _, f := range fields[1:] {
		id, err := strconv.Atoi(f)
		if err != nil {
			return "", nil, err
		}
		ids = append(ids, id)
	}
	return name, ids, nil
}
