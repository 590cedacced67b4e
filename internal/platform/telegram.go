package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramClient talks to the Telegram Bot API. It implements
// SubscriptionChecker, Notifier and InviteIssuer.
type TelegramClient struct {
	token         string
	publicChannel string
	httpClient    *http.Client
}

func NewTelegramClient(token, publicChannel string) *TelegramClient {
	return &TelegramClient{
		token:         token,
		publicChannel: publicChannel,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

type chatMember struct {
	Status string `json:"status"`
}

type chatInviteLink struct {
	InviteLink string `json:"invite_link"`
}

// IsSubscribed reports whether the user is a member, administrator or owner
// of the configured public channel.
func (c *TelegramClient) IsSubscribed(ctx context.Context, userID int64) (bool, error) {
	params := url.Values{}
	params.Set("chat_id", c.publicChannel)
	params.Set("user_id", strconv.FormatInt(userID, 10))

	var member chatMember
	if err := c.call(ctx, "getChatMember", params, &member); err != nil {
		return false, err
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	}
	return false, nil
}

// SendMessage delivers a plain-text message to the user's private chat.
func (c *TelegramClient) SendMessage(ctx context.Context, userID int64, text string) error {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(userID, 10))
	params.Set("text", text)

	return c.call(ctx, "sendMessage", params, nil)
}

// CreateInviteLink creates a single-use (member limit 1) invite link for the
// given chat.
func (c *TelegramClient) CreateInviteLink(ctx context.Context, chatID int64, name string) (string, error) {
	params := url.Values{}
	params.Set("chat_id", strconv.FormatInt(chatID, 10))
	params.Set("member_limit", "1")
	params.Set("name", name)

	var link chatInviteLink
	if err := c.call(ctx, "createChatInviteLink", params, &link); err != nil {
		return "", err
	}
	return link.InviteLink, nil
}

func (c *TelegramClient) call(ctx context.Context, method string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/bot%s/%s", telegramAPIBase, c.token, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}

	if !apiResp.OK {
		return c.apiError(method, apiResp)
	}

	if out != nil {
		if err := json.Unmarshal(apiResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}

// apiError maps Bot API failures onto the error classes callers branch on.
// A 403 on sendMessage means the recipient blocked the bot; a 403 elsewhere
// means the bot lacks rights in the chat.
func (c *TelegramClient) apiError(method string, resp apiResponse) error {
	if resp.ErrorCode == http.StatusForbidden {
		if method == "sendMessage" && strings.Contains(strings.ToLower(resp.Description), "blocked") {
			return ErrRecipientBlocked
		}
		return fmt.Errorf("%w: %s", ErrForbidden, resp.Description)
	}
	return fmt.Errorf("%s: telegram error %d: %s", method, resp.ErrorCode, resp.Description)
}
