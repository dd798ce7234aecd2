// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package reactor

import "time"

// defaultBufferSize is the BufferedReader segment size used absent
// WithBufferSize, matching the 65536-byte array original_source/bufferedreader.cpp
// reads into.
const defaultBufferSize = 64 * 1024

// defaultConnectTimeout is the Connect/ConnectUnix deadline absent
// WithConnectTimeout, matching the 5000ms waitForWritable() call in
// original_source/socketnonblocking.cpp's connect(domain, addr, addrLen).
const defaultConnectTimeout = 5 * time.Second

// keepAliveParams holds the TCP_KEEPIDLE/TCP_KEEPINTVL/TCP_KEEPCNT triple
// applied by setSocketOptions. Defaults differ per platform: Linux values
// come from original_source/socketnonblocking.cpp directly (idle=12s,
// interval=3s, count=2); the Windows default is 1s/1s/10. On Linux/Darwin
// all three values are applied. On Windows only count is used, to switch
// SO_KEEPALIVE on (count > 0) or off; idle and interval are not applied, so
// the system's keep-alive timing stays in effect.
type keepAliveParams struct {
	idle     time.Duration
	interval time.Duration
	count    int
}

// reactorOptions holds configuration applied at Reactor construction.
type reactorOptions struct {
	logger *Logger
}

// ReactorOption configures a Reactor instance.
type ReactorOption interface {
	applyReactor(*reactorOptions)
}

type reactorOptionFunc func(*reactorOptions)

func (f reactorOptionFunc) applyReactor(o *reactorOptions) { f(o) }

// WithLogger injects a structured logger. Absent this option, the package
// default (stderr, JSON, level Info) is used.
func WithLogger(l *Logger) ReactorOption {
	return reactorOptionFunc(func(o *reactorOptions) { o.logger = l })
}

func resolveReactorOptions(opts []ReactorOption) *reactorOptions {
	cfg := &reactorOptions{logger: defaultLogger()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyReactor(cfg)
	}
	return cfg
}

// socketOptions holds configuration applied at Socket/Acceptor construction.
type socketOptions struct {
	bufferSize     int
	connectTimeout time.Duration
	keepAlive      keepAliveParams
	logger         *Logger
}

// SocketOption configures a Socket or the sockets an Acceptor produces.
type SocketOption interface {
	applySocket(*socketOptions)
}

type socketOptionFunc func(*socketOptions)

func (f socketOptionFunc) applySocket(o *socketOptions) { f(o) }

// WithBufferSize sets the BufferedReader segment size. Must be positive;
// non-positive values are ignored (the default is retained).
func WithBufferSize(n int) SocketOption {
	return socketOptionFunc(func(o *socketOptions) {
		if n > 0 {
			o.bufferSize = n
		}
	})
}

// WithConnectTimeout sets the deadline Connect/ConnectUnix wait for the
// nonblocking connect to become writable. Non-positive values are ignored.
func WithConnectTimeout(d time.Duration) SocketOption {
	return socketOptionFunc(func(o *socketOptions) {
		if d > 0 {
			o.connectTimeout = d
		}
	})
}

// WithKeepAlive overrides the TCP keep-alive idle/interval/probe-count
// triple applied to connected sockets. A zero count disables keep-alive.
// On Windows idle and interval are ignored (see keepAliveParams).
func WithKeepAlive(idle, interval time.Duration, count int) SocketOption {
	return socketOptionFunc(func(o *socketOptions) {
		o.keepAlive = keepAliveParams{idle: idle, interval: interval, count: count}
	})
}

// WithSocketLogger injects a structured logger for a Socket/Acceptor,
// independent of the Reactor's own logger.
func WithSocketLogger(l *Logger) SocketOption {
	return socketOptionFunc(func(o *socketOptions) { o.logger = l })
}

func resolveSocketOptions(opts []SocketOption) *socketOptions {
	cfg := &socketOptions{
		bufferSize:     defaultBufferSize,
		connectTimeout: defaultConnectTimeout,
		keepAlive:      defaultKeepAliveParams(),
		logger:         defaultLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applySocket(cfg)
	}
	return cfg
}
