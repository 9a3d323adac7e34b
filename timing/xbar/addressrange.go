package xbar

// An AddressRange is a half-open interval [Base, Base+Size) of the physical
// address space served by one downstream channel.
type AddressRange struct {
	Base uint64
	Size uint64
}

// End returns the first address above the range.
func (r AddressRange) End() uint64 {
	return r.Base + r.Size
}

// Contains reports whether addr falls inside the range.
func (r AddressRange) Contains(addr uint64) bool {
	return addr >= r.Base && addr < r.End()
}

// Overlaps reports whether the two ranges share at least one address.
func (r AddressRange) Overlaps(other AddressRange) bool {
	return r.Base < other.End() && other.Base < r.End()
}
