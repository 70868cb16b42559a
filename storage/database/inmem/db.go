// Package inmemdb is a process-local store backing the notification service unit tests.
// It ignores the DBExecutor arguments: every write is immediately visible.
package inmemdb

import (
	"sync"

	"github.com/trezcool/taskbell/core/account"
	"github.com/trezcool/taskbell/core/notification"
)

type (
	DB struct {
		account  *accountTable
		delivery *deliveryTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}

	deliveryTable struct {
		sync.RWMutex
		table []notification.DeliveryRecord
	}
)

func Open() *DB {
	return &DB{
		account:  &accountTable{table: make(map[string]*account.Account)},
		delivery: &deliveryTable{},
	}
}
