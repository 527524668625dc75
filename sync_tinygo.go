//go:build tinygo

package sonar

import (
	"sync"
)

type rwMutex struct {
	sync.RWMutex
}

type mutex struct {
	sync.Mutex
}
