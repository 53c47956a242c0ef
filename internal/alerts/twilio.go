package alerts

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioNotifier delivers alerts as SMS through the Twilio REST API.
// SMS is reserved for critical alerts; the multi notifier handles the
// routing.
type TwilioNotifier struct {
	accountSID string
	authToken  string
	from       string
	to         string
	client     *http.Client
}

// NewTwilioNotifier creates a notifier for the given Twilio account.
func NewTwilioNotifier(accountSID, authToken, from, to string) *TwilioNotifier {
	return &TwilioNotifier{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// SendAlert sends an alert with the specified level and message.
func (t *TwilioNotifier) SendAlert(level, message string) error {
	apiURL := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", t.accountSID)

	data := url.Values{}
	data.Set("From", t.from)
	data.Set("To", t.to)
	data.Set("Body", message)

	req, err := http.NewRequest(http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("twilio API returned status %d", resp.StatusCode)
	}

	return nil
}
