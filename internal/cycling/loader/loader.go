// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package loader selects a cycling system by mode name.
package loader

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/cyclegrid/internal/cycling"
	"github.com/specialistvlad/cyclegrid/internal/cycling/integer"
	"github.com/specialistvlad/cyclegrid/internal/cycling/isodate"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 4096

type options struct {
	cacheSize int
}

// Option configures New.
type Option func(*options)

// WithCacheSize sets the number of parsed points kept in memory. Zero or a
// negative size disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// ParseMode maps a configured cycling mode name, including its aliases, to
// a Mode. The empty string selects integer cycling.
func ParseMode(name string) (cycling.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "integer":
		return cycling.ModeInteger, nil
	case "gregorian", "iso8601", "datetime":
		return cycling.ModeGregorian, nil
	}
	return "", fmt.Errorf("unknown cycling mode %q", name)
}

// New returns the cycling system for mode.
func New(mode string, opts ...Option) (cycling.System, error) {
	o := options{cacheSize: defaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	var sys cycling.System
	switch m {
	case cycling.ModeGregorian:
		sys = isodate.New()
	default:
		sys = integer.New()
	}

	if o.cacheSize <= 0 {
		return sys, nil
	}
	cache, err := lru.New[string, cycling.Point](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create point cache: %w", err)
	}
	return &cachedSystem{System: sys, points: cache}, nil
}

// cachedSystem memoises successful point parses. Workflows parse the same
// handful of cycle point strings over and over while resolving triggers.
type cachedSystem struct {
	cycling.System
	points *lru.Cache[string, cycling.Point]
}

func (c *cachedSystem) ParsePoint(s string) (cycling.Point, error) {
	if p, ok := c.points.Get(s); ok {
		return p, nil
	}
	p, err := c.System.ParsePoint(s)
	if err != nil {
		return nil, err
	}
	c.points.Add(s, p)
	return p, nil
}

func (c *cachedSystem) RelativePoint(expr string, context cycling.Point) (cycling.Point, error) {
	trimmed := strings.TrimSpace(expr)
	if strings.HasPrefix(trimmed, "+") || strings.HasPrefix(trimmed, "-P") {
		return c.System.RelativePoint(expr, context)
	}
	return c.ParsePoint(trimmed)
}
