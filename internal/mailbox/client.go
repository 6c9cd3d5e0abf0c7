// Package mailbox folds procurement notification emails into the
// inbox. Some deployments deliver approval and order events by mail
// only; when configured, recent messages with recognizable subjects
// are ingested as local notification records.
package mailbox

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"
)

// Message holds the parts of a fetched email the parser cares about.
type Message struct {
	UID      uint32
	Subject  string
	From     string
	Date     time.Time
	Seen     bool
	TextBody string
}

// Client wraps go-imap v2 for connecting to and querying IMAP servers.
type Client struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	folder   string
}

// NewClient creates a new IMAP client configuration.
func NewClient(host, port, username, password string, tls bool, folder string) *Client {
	if folder == "" {
		folder = "INBOX"
	}
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		tls:      tls,
		folder:   folder,
	}
}

// connect establishes a connection to the IMAP server and
// authenticates. The caller is responsible for calling Logout on the
// returned client.
func (c *Client) connect(_ context.Context) (*imapclient.Client, error) {
	addr := c.host + ":" + c.port

	var client *imapclient.Client
	var err error

	if c.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.username, c.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, fmt.Errorf("IMAP authentication failed for %s: %w", c.username, err)
	}

	return client, nil
}

// FetchRecent connects, selects the configured folder, and returns up
// to limit messages received since the given time, with their
// text/plain bodies parsed.
func (c *Client) FetchRecent(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]Message, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select(c.folder, nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", c.folder, err)
	}

	criteria := &imap.SearchCriteria{Since: since}
	searchData, err := client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}

	// Take the most recent UIDs.
	if limit > 0 && len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSetNum(uids...)

	bodySection := &imap.FetchItemBodySection{Peek: true}
	fetchOpts := &imap.FetchOptions{
		Envelope:    true,
		Flags:       true,
		UID:         true,
		BodySection: []*imap.FetchItemBodySection{bodySection},
	}

	fetchCmd := client.Fetch(uidSet, fetchOpts)

	var messages []Message
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}

		buf, err := msg.Collect()
		if err != nil {
			continue
		}

		m := messageFromBuffer(buf)
		if raw := buf.FindBodySection(bodySection); raw != nil {
			m.TextBody = textBody(raw)
		}
		messages = append(messages, m)
	}

	if err := fetchCmd.Close(); err != nil {
		return messages, fmt.Errorf("fetching messages: %w", err)
	}

	return messages, nil
}

// messageFromBuffer extracts a Message from a FetchMessageBuffer.
func messageFromBuffer(buf *imapclient.FetchMessageBuffer) Message {
	m := Message{
		UID: uint32(buf.UID),
	}

	if buf.Envelope != nil {
		m.Subject = buf.Envelope.Subject
		m.Date = buf.Envelope.Date

		if len(buf.Envelope.From) > 0 {
			from := buf.Envelope.From[0]
			if from.Name != "" {
				m.From = from.Name
			} else {
				m.From = from.Addr()
			}
		}
	}

	for _, flag := range buf.Flags {
		if flag == imap.FlagSeen {
			m.Seen = true
		}
	}

	return m
}

// textBody parses a raw RFC 2822 message with go-message and extracts
// the first text/plain part. Falls back to the raw bytes when the MIME
// structure can't be parsed.
func textBody(raw []byte) string {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return string(raw)
	}
	defer mr.Close()

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		if h, ok := part.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := h.ContentType()
			if contentType == "text/plain" {
				body, err := io.ReadAll(part.Body)
				if err == nil {
					return string(body)
				}
			}
		}
	}

	return ""
}
