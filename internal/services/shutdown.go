package services

import (
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	apperrors "apptrack/internal/infrastructure/errors"

	"go.uber.org/atomic"
)

// ShutdownFlag is set once by a signal and polled by the tracking loop
type ShutdownFlag struct {
	stopped atomic.Bool

	mu        sync.Mutex
	installed bool
	signals   chan os.Signal
	done      chan struct{}
	wg        sync.WaitGroup

	notify func(c chan<- os.Signal, sig ...os.Signal)
	reset  func(c chan<- os.Signal)
}

// NewShutdownFlag creates an unset flag with no handler installed
func NewShutdownFlag() *ShutdownFlag {
	return &ShutdownFlag{
		notify: signal.Notify,
		reset:  signal.Stop,
	}
}

// Trigger sets the flag. Safe from any goroutine.
func (f *ShutdownFlag) Trigger() {
	f.stopped.Store(true)
}

// IsSet reports whether shutdown was requested
func (f *ShutdownFlag) IsSet() bool {
	return f.stopped.Load()
}

// Install routes the given signals (interrupt and SIGTERM by default) to the
// flag. The handler goroutine only stores the flag.
func (f *ShutdownFlag) Install(sigs ...os.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.installed {
		return &apperrors.SignalSetupError{Err: errors.New("handler already installed")}
	}
	if f.notify == nil {
		return &apperrors.SignalSetupError{Err: errors.New("signal notification unavailable")}
	}
	if len(sigs) == 0 {
		sigs = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}

	f.signals = make(chan os.Signal, 1)
	f.done = make(chan struct{})
	f.notify(f.signals, sigs...)
	f.installed = true

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for {
			select {
			case <-f.signals:
				f.Trigger()
			case <-f.done:
				return
			}
		}
	}()
	return nil
}

// Stop uninstalls the handler and waits for its goroutine to exit
func (f *ShutdownFlag) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.installed {
		return
	}
	if f.reset != nil {
		f.reset(f.signals)
	}
	close(f.done)
	f.wg.Wait()
	f.installed = false
}
