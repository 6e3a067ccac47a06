package probing

// TableFull is returned when a probe sequence visits every slot without
// finding the key or a free slot.
type TableFull struct {
	msg string
}

func (e TableFull) Error() string {
	if e.msg == "" {
		return "probe sequence exhausted"
	}
	return e.msg
}
