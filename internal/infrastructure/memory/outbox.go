package memory

import (
	"context"
	"sync"

	"github.com/electroworld/auth-service/internal/application/auth"
)

// Outbox is a NotificationSender that keeps every message in memory.
// Tests read the plaintext reset code from it.
type Outbox struct {
	mu   sync.Mutex
	msgs []auth.Notification
	fail error
}

func NewOutbox() *Outbox { return &Outbox{} }

func (o *Outbox) Send(ctx context.Context, n auth.Notification) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.fail != nil {
		return o.fail
	}
	o.msgs = append(o.msgs, n)
	return nil
}

// FailWith makes subsequent sends return err; nil restores delivery.
func (o *Outbox) FailWith(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fail = err
}

func (o *Outbox) Messages() []auth.Notification {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]auth.Notification, len(o.msgs))
	copy(out, o.msgs)
	return out
}

// Last returns the most recent message sent to recipient.
func (o *Outbox) Last(recipient string) (auth.Notification, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.msgs) - 1; i >= 0; i-- {
		if o.msgs[i].Recipient == recipient {
			return o.msgs[i], true
		}
	}
	return auth.Notification{}, false
}
