package kernel

// Error describes a kernel error. Kernel errors are declared as package-level
// pointers to Error so they can be returned and compared by identity without
// touching the Go allocator.
type Error struct {
	// The module that reported the error.
	Module string

	// The error message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
