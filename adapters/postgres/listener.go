package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// Listener turns NOTIFY messages on a channel into evaluation boundaries, so
// writers can tell open views that a table changed.
type Listener struct {
	dsn     string
	channel string
	logger  *zap.Logger
}

// NewListener creates a listener for channel on the database at dsn
func NewListener(dsn, channel string, logger *zap.Logger) *Listener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{dsn: dsn, channel: channel, logger: logger}
}

// Run calls onNotify for every notification until ctx is done. A reconnect
// also counts as a notification since messages may have been missed.
func (l *Listener) Run(ctx context.Context, onNotify func(context.Context)) error {
	listener := pq.NewListener(l.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Warn("listener event", zap.Int("event", int(ev)), zap.Error(err))
		}
	})
	defer listener.Close()

	if err := listener.Listen(l.channel); err != nil {
		return fmt.Errorf("failed to listen on %s: %w", l.channel, err)
	}
	l.logger.Info("listening for notifications", zap.String("channel", l.channel))

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n != nil {
				l.logger.Debug("notification", zap.String("channel", n.Channel), zap.String("payload", n.Extra))
			}
			onNotify(ctx)
		case <-time.After(90 * time.Second):
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn("listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}
