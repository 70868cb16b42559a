package notifysvc

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/notification"
)

const ConsoleChannelName = "console"

// ConsoleChannel writes messages to a writer instead of sending them; used in debug mode.
type ConsoleChannel struct {
	mu  sync.Mutex
	out io.Writer

	// every message written, for inspection in tests
	Sent []string
}

var _ notification.Channel = (*ConsoleChannel)(nil)

func NewConsoleChannel(out io.Writer) *ConsoleChannel {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleChannel{out: out}
}

func (ch *ConsoleChannel) Name() string {
	return ConsoleChannelName
}

func (ch *ConsoleChannel) Deliver(_ context.Context, acc account.Account, message string) (bool, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	_, _ = fmt.Fprintf(ch.out, "[%s] To: %s <%s>\r\n%s\r\n\r\n", time.Now().Format(time.RFC1123Z), acc.Name, acc.Email, message)
	ch.Sent = append(ch.Sent, message)
	return true, nil
}
