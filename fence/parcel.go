package fence

// Wire is the on-the-wire representation of a Fence: a validity flag
// plus the descriptor. Fences serialize as a single fd with a
// validity flag; the descriptor field is meaningless when Valid is
// false.
type Wire struct {
	Valid bool
	FD    int
}

// ToWire captures f's wire representation. The caller is responsible
// for transferring FD across the IPC boundary (duplicating it) so
// neither side closes a descriptor the other still needs.
func (f Fence) ToWire() Wire {
	if !f.Valid() {
		return Wire{}
	}
	return Wire{Valid: true, FD: f.fd}
}

// FromWire reconstructs a Fence from a Wire value using drv as the
// fence driver for the now-local descriptor w.FD. The receiver owns
// w.FD and must eventually Close it.
func FromWire(drv Driver, w Wire, name string) Fence {
	if !w.Valid {
		return Invalid
	}
	return New(drv, w.FD, name)
}
