// Time abstraction for the processing loop.
//
// The processor never reads the wall clock or starts timers directly; it goes
// through Clock so tests can drive ticks and skip sleeps deterministically.
package services

import "time"

// Ticker is the minimal recurring-timer surface the processor needs.
type Ticker interface {
	// C delivers ticks.
	C() <-chan time.Time
	// Stop releases the ticker. It does not close the channel.
	Stop()
}

// Clock supplies the current time, sleeping, and recurring timers.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
	NewTicker(d time.Duration) Ticker
}

// RealClock returns the wall-clock implementation used in production.
func RealClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now().UTC() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
