package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioNotifier sends SMS through the Twilio Messages REST endpoint.
type TwilioNotifier struct {
	// AccountSID and AuthToken authenticate via HTTP basic auth.
	AccountSID string
	AuthToken  string
	// From is the sending phone number in E.164 form.
	From string
	// BaseURL is the API root; overridable for tests.
	BaseURL string
	// Client is the HTTP client; a timeout-bounded default is used when nil.
	Client *http.Client
}

// NewTwilioNotifier constructs a notifier with a 10s request timeout.
func NewTwilioNotifier(accountSID, authToken, from, baseURL string) *TwilioNotifier {
	return &TwilioNotifier{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		BaseURL:    baseURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message. Any non-2xx provider response is an error; the
// response body is folded into the error for log context.
func (t *TwilioNotifier) Send(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.BaseURL, t.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.AccountSID, t.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}
