// Cinematch - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"errors"
	"sync/atomic"
)

// ErrNotReady is returned by callers that need an engine before the first
// one has been published.
var ErrNotReady = errors.New("recommendation engine not ready")

// Publisher hands the current Engine to readers. Publishing swaps a pointer,
// so a reader sees either the previous engine or the new one, never a mix.
type Publisher struct {
	current atomic.Pointer[Engine]
}

// NewPublisher returns an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish installs e and returns the engine it replaced, if any.
func (p *Publisher) Publish(e *Engine) *Engine {
	return p.current.Swap(e)
}

// Current returns the published engine or ErrNotReady.
func (p *Publisher) Current() (*Engine, error) {
	e := p.current.Load()
	if e == nil {
		return nil, ErrNotReady
	}
	return e, nil
}

// Ready reports whether an engine has been published.
func (p *Publisher) Ready() bool {
	return p.current.Load() != nil
}
