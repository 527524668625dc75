//go:build !tinygo

package sonar

import (
	sync "github.com/sasha-s/go-deadlock"
)

type rwMutex struct {
	sync.RWMutex
}

type mutex struct {
	sync.Mutex
}
