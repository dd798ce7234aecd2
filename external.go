package reactor

// This file declares narrow interfaces for the concerns spec.md places
// explicitly out of scope for this library: IP-address validation/subnet
// arithmetic, host network-adapter enumeration, JSON-RPC error taxonomy,
// generic string utilities, PID-file creation, NTP<->Unix time conversion,
// child-process execution, and CLI example tools. None are implemented
// here; an embedder that needs one supplies its own and wires it in at the
// call site (PeerMatches, Acceptor construction) rather than this package
// depending on it.

// AddressValidator is the seam for IP-address-string validation/subnet
// membership, used nowhere in this package but named for a caller that
// wants to pre-filter PeerMatches callers or StartTCP bind targets.
type AddressValidator interface {
	// Valid reports whether addr is a syntactically valid IP address.
	Valid(addr string) bool
	// InSubnet reports whether addr falls within cidr.
	InSubnet(addr, cidr string) (bool, error)
}

// AdapterLister is the seam for host network-adapter enumeration
// (original_source's isFirewire()/netadapter machinery); this package never
// needs to know what physical interface a Socket's local address resolves
// to.
type AdapterLister interface {
	// Adapters returns the names of the host's network adapters.
	Adapters() ([]string, error)
}
