package runtime

import "fmt"

// The three failure modes of the evaluation core. All of them travel through
// the resumable raise channel: a handler may substitute a recovery value and
// continue, or let the enclosing evaluation abort. The core itself never
// catches its own raises.

// TypeError reports an elimination operation applied to a value whose shape
// does not match.
type TypeError struct {
	Op   string
	Have Kind
	Want string
}

func (e TypeError) Error() string {
	return fmt.Sprintf("type error: %s expects %s, got %s", e.Op, e.Want, e.Have)
}

// EnvironmentError reports an unbound name, or a member lookup against a
// receiver with no scoped environment carrying the name.
type EnvironmentError struct {
	Name string
}

func (e EnvironmentError) Error() string {
	return fmt.Sprintf("environment error: unbound name %q", e.Name)
}

// AddressError reports a dereference of an address that was never allocated
// or never initialized.
type AddressError struct {
	Addr Address
}

func (e AddressError) Error() string {
	return fmt.Sprintf("address error: %s is not initialized", e.Addr)
}
