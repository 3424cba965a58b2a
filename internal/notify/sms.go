package notify

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"backend-qms/internal/models"
)

const (
	defaultTemplate = "Your token number is: {{TOKEN}}. Please wait for your turn."
	defaultOrgName  = "Clinic QMS"
)

// SMSSender delivers token notifications through the Twilio REST API.
// Credentials and the message template live in the settings table so the
// admin console can change them without a restart. Delivery is
// best-effort: every failure is logged and swallowed, never surfaced to
// the ticket-creation path.
type SMSSender struct {
	db     *sql.DB
	client *http.Client
}

func NewSMSSender(db *sql.DB) *SMSSender {
	return &SMSSender{
		db:     db,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// SendTokenSMS renders the configured template and posts it to Twilio.
// Missing credentials skip the send with a warning.
func (s *SMSSender) SendTokenSMS(ctx context.Context, displayID, serviceName, phone string) {
	sid := s.lookupSetting(ctx, models.SettingTwilioSID)
	token := s.lookupSetting(ctx, models.SettingTwilioToken)
	from := s.lookupSetting(ctx, models.SettingTwilioFrom)

	if sid == "" || token == "" || from == "" {
		log.Println("[sms] missing Twilio credentials, message skipped")
		return
	}

	template := s.lookupSetting(ctx, models.SettingSMSTemplate)
	org := s.lookupSetting(ctx, models.SettingOrganizationName)
	body := RenderTemplate(template, displayID, serviceName, org)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", sid)
	form := url.Values{}
	form.Set("To", phone)
	form.Set("From", from)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("[sms] build request: %v", err)
		return
	}
	req.SetBasicAuth(sid, token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("[sms] send to %s: %v", phone, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		log.Printf("[sms] Twilio rejected message for %s: %s %s", phone, resp.Status, detail)
		return
	}

	log.Printf("[sms] token %s queued for %s", displayID, phone)
}

// RenderTemplate substitutes the {{TOKEN}}, {{SERVICE}} and {{ORG}}
// placeholders. Empty template and organization fall back to defaults.
func RenderTemplate(template, displayID, serviceName, orgName string) string {
	if template == "" {
		template = defaultTemplate
	}
	if orgName == "" {
		orgName = defaultOrgName
	}

	msg := strings.ReplaceAll(template, "{{TOKEN}}", displayID)
	msg = strings.ReplaceAll(msg, "{{SERVICE}}", serviceName)
	msg = strings.ReplaceAll(msg, "{{ORG}}", orgName)
	return msg
}

func (s *SMSSender) lookupSetting(ctx context.Context, key string) string {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT `value` FROM settings WHERE `key` = ?", key).Scan(&value)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[sms] read setting %s: %v", key, err)
		}
		return ""
	}
	return value
}
