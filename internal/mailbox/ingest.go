package mailbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/procurehq/console/internal/model"
)

// lookback bounds how far back the ingest searches for messages.
const lookback = 7 * 24 * time.Hour

// fetchLimit caps the number of messages examined per cycle.
const fetchLimit = 50

// Ingest adapts the IMAP client to the poller's secondary source
// interface.
type Ingest struct {
	client *Client
	logger *zap.Logger
}

// NewIngest creates a mail ingest from the mailbox configuration and
// the password held in the keyring.
func NewIngest(cfg model.MailboxConfig, password string, logger *zap.Logger) *Ingest {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingest{
		client: NewClient(
			cfg.Host, cfg.Port, cfg.Username, password, cfg.TLS, cfg.Folder,
		),
		logger: logger,
	}
}

// Fetch retrieves recent messages and converts the recognizable ones
// into notification records.
func (i *Ingest) Fetch(ctx context.Context) ([]model.Notification, error) {
	messages, err := i.client.FetchRecent(ctx, time.Now().Add(-lookback), fetchLimit)
	if err != nil {
		return nil, err
	}

	var notifications []model.Notification
	skipped := 0
	for _, msg := range messages {
		n, ok := ParseNotification(msg)
		if !ok {
			skipped++
			continue
		}
		notifications = append(notifications, n)
	}

	i.logger.Debug("mailbox ingest complete",
		zap.Int("matched", len(notifications)),
		zap.Int("skipped", skipped))

	return notifications, nil
}
