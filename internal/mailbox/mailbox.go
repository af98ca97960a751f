// Package mailbox is the single gateway to the external mail account:
// unread inbound mail over IMAP, outbound mail over SMTP.
package mailbox

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	imap "github.com/BrianLeishman/go-imap"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"ReachPilot/internal/models"
)

const snippetLen = 140

// Config carries the account credentials for both directions.
type Config struct {
	IMAPHost     string
	IMAPPort     int
	IMAPUser     string
	IMAPPassword string
	IMAPFolder   string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
}

// Client implements the engine's Mailbox interface. The IMAP session
// is held open between sweeps and re-dialed after a failure; sends
// dial SMTP per message, as gomail does.
type Client struct {
	cfg Config
	log *zap.Logger

	mu     sync.Mutex
	dialer *imap.Dialer
}

// New connects to the IMAP account once so a dead mailbox is caught at
// startup instead of mid-sweep.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.IMAPFolder == "" {
		cfg.IMAPFolder = "INBOX"
	}

	c := &Client{cfg: cfg, log: log}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.conn(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close drops the IMAP session.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drop()
}

// conn returns the live IMAP session, dialing if needed. Callers hold mu.
func (c *Client) conn() (*imap.Dialer, error) {
	if c.dialer != nil {
		return c.dialer, nil
	}

	d, err := imap.New(c.cfg.IMAPUser, c.cfg.IMAPPassword, c.cfg.IMAPHost, c.cfg.IMAPPort)
	if err != nil {
		return nil, fmt.Errorf("imap connect: %w", err)
	}
	c.dialer = d
	return d, nil
}

// drop discards the session so the next call re-dials. Callers hold mu.
func (c *Client) drop() {
	if c.dialer != nil {
		if err := c.dialer.Close(); err != nil {
			c.log.Warn("imap close failed", zap.Error(err))
		}
		c.dialer = nil
	}
}

// ListUnread fetches up to max unseen messages, oldest UIDs first.
func (c *Client) ListUnread(ctx context.Context, max int) ([]models.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.conn()
	if err != nil {
		return nil, err
	}

	if err := d.SelectFolder(c.cfg.IMAPFolder); err != nil {
		c.drop()
		return nil, fmt.Errorf("select %s: %w", c.cfg.IMAPFolder, err)
	}

	uids, err := d.GetUIDs("UNSEEN")
	if err != nil {
		c.drop()
		return nil, fmt.Errorf("search unseen: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}

	sort.Ints(uids)
	if max > 0 && len(uids) > max {
		uids = uids[:max]
	}

	emails, err := d.GetEmails(uids...)
	if err != nil {
		c.drop()
		return nil, fmt.Errorf("fetch emails: %w", err)
	}

	msgs := make([]models.Message, 0, len(emails))
	for _, uid := range uids {
		e := emails[uid]
		if e == nil {
			continue
		}
		msgs = append(msgs, toMessage(e))
	}
	return msgs, nil
}

// MarkRead flags one message seen by its UID.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	uid, err := strconv.Atoi(id)
	if err != nil {
		return fmt.Errorf("bad message id %q: %w", id, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.conn()
	if err != nil {
		return err
	}
	if err := d.MarkSeen(uid); err != nil {
		c.drop()
		return fmt.Errorf("mark seen %d: %w", uid, err)
	}
	return nil
}

// Send delivers one HTML message over SMTP. When ThreadID is set the
// reply is stitched into the original thread via In-Reply-To.
func (c *Client) Send(ctx context.Context, out models.Outbound) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", c.cfg.From)
	m.SetHeader("To", out.To)
	m.SetHeader("Subject", out.Subject)
	if out.ThreadID != "" {
		m.SetHeader("In-Reply-To", out.ThreadID)
		m.SetHeader("References", out.ThreadID)
	}
	m.SetBody("text/html", out.Body)

	d := gomail.NewDialer(c.cfg.SMTPHost, c.cfg.SMTPPort, c.cfg.SMTPUser, c.cfg.SMTPPassword)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}

func toMessage(e *imap.Email) models.Message {
	var sender, name string
	for addr, n := range e.From {
		sender, name = addr, n
		break
	}

	body := e.Text
	if strings.TrimSpace(body) == "" {
		body = e.HTML
	}

	return models.Message{
		ID:          strconv.Itoa(e.UID),
		ThreadID:    e.MessageID,
		SenderEmail: sender,
		Name:        name,
		Subject:     e.Subject,
		Body:        body,
		Date:        e.Sent,
		Snippet:     snippet(body),
	}
}

func snippet(body string) string {
	s := strings.Join(strings.Fields(body), " ")
	if len(s) > snippetLen {
		s = s[:snippetLen]
	}
	return s
}
