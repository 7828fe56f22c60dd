// Package credentials holds the process-wide username → password table
// with register-on-first-login semantics.
package credentials

import "fmt"

// Result is the outcome of an Authenticate call.
type Result int

const (
	Rejected      Result = iota // known user, wrong password
	Registered                  // unseen user, password stored
	Authenticated               // known user, password matched
)

func (r Result) String() string {
	switch r {
	case Rejected:
		return "rejected"
	case Registered:
		return "registered"
	case Authenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Store is the credential table. Implementations must make the
// check-and-register step of Authenticate atomic. Entries are never
// deleted.
type Store interface {
	// Authenticate registers username with password if it is unseen,
	// otherwise compares password with the stored one.
	Authenticate(username, password string) (Result, error)

	// Count returns the number of registered usernames.
	Count() (int, error)

	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open returns the store for the named backend.
func Open(backend string) (Store, error) {
	switch backend {
	case BackendMemory, "":
		return NewMemory(), nil
	case BackendSQLite:
		return NewSQL()
	default:
		return nil, fmt.Errorf("credentials: unknown backend %q (valid: %s, %s)", backend, BackendMemory, BackendSQLite)
	}
}

// Compile-time checks.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLStore)(nil)
)
