package metadata

// AccessType tells the allocator which side is allowed to touch a
// buffer's pixels directly once the buffer's usage asks for both CPU
// and hardware access: a compressed, hardware-only layout is cheaper
// but unreadable from the CPU, so a buffer that genuinely needs both
// has to pick one mapping strategy for the allocator to honor.
type AccessType uint8

const (
	// AccessHWOnly tags a buffer whose compressed, hardware-only
	// layout is kept; the CPU side of a dual-access request is
	// expected to go through an explicit decompress step instead.
	AccessHWOnly AccessType = iota
	// AccessCPU tags a buffer allocated in a layout the CPU can read
	// and write directly, trading away the hardware-only compression.
	AccessCPU
)

// SetAccessType stores t on acc at KeyAccessType.
func SetAccessType(acc Accessor, t AccessType) error {
	return acc.SetMetadata(KeyAccessType, []byte{byte(t)})
}

// GetAccessType retrieves the AccessType stored by SetAccessType.
func GetAccessType(acc Accessor) (AccessType, error) {
	b, err := acc.GetMetadata(KeyAccessType)
	if err != nil {
		return 0, err
	}
	if len(b) < 1 {
		return 0, errShortMetadata("GetAccessType")
	}
	return AccessType(b[0]), nil
}
