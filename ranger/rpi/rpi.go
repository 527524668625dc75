//go:build linux && !tinygo

// Package rpi drives an HC-SR04 ranger and an LED from Raspberry Pi GPIO.
// Pins are BCM numbers.
package rpi

import (
	"fmt"
	"time"

	"github.com/merliot/sonar/ranger"
	"github.com/stianeikeland/go-rpio/v4"
)

// HardStop bounds each busy-wait on the echo pin
const HardStop = 1000000

// MaxCm is the sensor's rated range; anything longer reads as invalid
const MaxCm = 400.0

// Open maps GPIO memory.  Call once before using pins, and Close on exit.
func Open() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("open gpio: %w", err)
	}
	return nil
}

func Close() error {
	return rpio.Close()
}

// HCSR04 is an HC-SR04 ultrasonic ranger
type HCSR04 struct {
	TriggerPin rpio.Pin
	EchoPin    rpio.Pin
}

func NewHCSR04(trigger, echo int) *HCSR04 {
	return &HCSR04{
		TriggerPin: rpio.Pin(trigger),
		EchoPin:    rpio.Pin(echo),
	}
}

func (h *HCSR04) Configure() error {
	h.TriggerPin.Output()
	h.TriggerPin.Low()
	h.EchoPin.Input()
	return nil
}

// DistanceCm strobes the trigger and times the echo pulse
func (h *HCSR04) DistanceCm() float64 {
	h.TriggerPin.Low()
	delayUs(2)
	h.TriggerPin.High()
	delayUs(10)
	h.TriggerPin.Low()

	// wait for the echo pulse to start
	for i := 0; h.EchoPin.Read() != rpio.High; i++ {
		if i >= HardStop {
			return ranger.Invalid
		}
	}
	start := time.Now()
	for i := 0; h.EchoPin.Read() != rpio.Low; i++ {
		if i >= HardStop {
			return ranger.Invalid
		}
	}
	pulse := time.Since(start)

	// sound travels 0.0343 cm/us, there and back
	cm := float64(pulse.Microseconds()) * 0.0343 / 2
	if cm > MaxCm {
		return ranger.Invalid
	}
	return cm
}

func delayUs(us int) {
	time.Sleep(time.Duration(us) * time.Microsecond)
}

// LED is an LED on an output pin
type LED struct {
	Pin rpio.Pin
}

func NewLED(pin int) *LED {
	return &LED{Pin: rpio.Pin(pin)}
}

func (l *LED) Configure() error {
	l.Pin.Output()
	return nil
}

func (l *LED) Set(on bool) {
	if on {
		l.Pin.High()
	} else {
		l.Pin.Low()
	}
}

// Hardware opens GPIO and returns the ranger hardware on the configured pins,
// with the host's network link (optionally restricted to iface)
func Hardware(pins ranger.PinConfig, iface string) (ranger.Hardware, error) {
	if err := Open(); err != nil {
		return ranger.Hardware{}, err
	}
	return ranger.Hardware{
		Sensor:    NewHCSR04(pins.Trigger, pins.Echo),
		Indicator: NewLED(pins.LED),
		Link:      ranger.NewHostLink(iface),
	}, nil
}
