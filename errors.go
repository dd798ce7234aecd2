package reactor

import "errors"

// Sentinel errors for the configuration-error and resource-exhaustion classes
// of §7's error taxonomy. Retryable syscall errors (EWOULDBLOCK, EINTR) are
// never surfaced as these, nor as a syscall.Errno: the send paths retry them
// internally, and Receive reports them as a zero-byte read with a nil error.
var (
	// ErrClosed is returned by RegisterRead/RegisterWrite once the Reactor
	// has been closed with Close.
	ErrClosed = errors.New("reactor: closed")

	// ErrSourceAlreadyRegistered is not returned by RegisterRead or
	// RegisterWrite: a second registration for the same source replaces the
	// handler instead of failing.
	ErrSourceAlreadyRegistered = errors.New("reactor: source already registered")

	// ErrSourceNotRegistered is returned by UnregisterRead/UnregisterWrite
	// for a source with no active handler of the requested kind.
	ErrSourceNotRegistered = errors.New("reactor: source not registered")

	// ErrNoCallback is returned by Acceptor.Start* and Socket handler setup
	// when a required callback argument is nil.
	ErrNoCallback = errors.New("reactor: callback must not be nil")

	// ErrEmptyBuffer is returned by SendBlocks/SendBlock/Send when there are
	// no bytes to send.
	ErrEmptyBuffer = errors.New("reactor: empty buffer")

	// ErrConnectTimeout is returned by Connect/ConnectUnix when the connect
	// does not complete within the configured timeout.
	ErrConnectTimeout = errors.New("reactor: connect timed out")

	// ErrReceiveTimeout is returned by Socket.ReceiveComplete when the
	// timeout expires before the requested byte count is delivered.
	ErrReceiveTimeout = errors.New("reactor: receive timed out")

	// ErrUnsupportedAddress is returned when a socket address cannot be
	// used: an empty local-domain path, any AF_UNIX address on Windows, or a
	// peer address of a family other than IPv4/IPv6.
	ErrUnsupportedAddress = errors.New("reactor: unsupported address")

	// ErrInvalidPeriod is returned by Timer.Set for a zero period.
	ErrInvalidPeriod = errors.New("reactor: timer period must be non-zero")
)
