package notification

import (
	"context"
	"fmt"
	"sync"

	"github.com/trezcool/taskbell/core/account"
)

// Channel is a messaging backend able to deliver a text message to an account.
//
// Deliver returns (false, nil) when the account cannot currently receive messages on the channel
// (e.g. it never linked it), an error when the backend call failed, and (true, nil) only once the
// backend confirmed it accepted the message.
type Channel interface {
	// Name is the stable lowercase identifier used for lookups and stamped on delivery records.
	Name() string
	Deliver(ctx context.Context, acc account.Account, message string) (bool, error)
}

// ConfigurationError is returned by a Channel missing a required setting.
type ConfigurationError struct {
	Channel string
	Setting string
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("%s channel: %s is not configured", err.Channel, err.Setting)
}

// Registry holds the available channels by name.
// The first channel registered is the default one, used when no name is given.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
	order    []string
}

func NewRegistry(channels ...Channel) *Registry {
	r := &Registry{channels: make(map[string]Channel, len(channels))}
	for _, ch := range channels {
		r.Register(ch)
	}
	return r
}

// Register stores ch under ch.Name(). Registering a name again replaces the channel
// but keeps its original position.
func (r *Registry) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := ch.Name()
	if _, ok := r.channels[name]; !ok {
		r.order = append(r.order, name)
	}
	r.channels[name] = ch
}

// Resolve looks name up exactly; an empty name resolves to the default channel.
func (r *Registry) Resolve(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		if len(r.order) == 0 {
			return nil, false
		}
		name = r.order[0]
	}
	ch, ok := r.channels[name]
	return ch, ok
}

// Names lists the registered channel names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}
