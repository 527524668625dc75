//go:build !tinygo

package ranger

import (
	sync "github.com/sasha-s/go-deadlock"
)

type rwMutex struct {
	sync.RWMutex
}
