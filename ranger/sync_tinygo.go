//go:build tinygo

package ranger

import (
	"sync"
)

type rwMutex struct {
	sync.RWMutex
}
