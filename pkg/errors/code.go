package errors

// Service codes (AA).
const (
	// ServiceCommon is for errors shared by every component.
	ServiceCommon = 0

	// ServiceSBS is for the SBS query service.
	ServiceSBS = 30
)

// Category codes (BB).
const (
	CategorySuccess  = 0
	CategoryRequest  = 1
	CategoryResource = 4
	CategoryInternal = 7
	CategoryDatabase = 8
)

// MakeCode builds an AABBCCC code.
func MakeCode(service, category, sequence int) int {
	return service*100000 + category*1000 + sequence
}

// ParseCode splits an AABBCCC code.
func ParseCode(code int) (service, category, sequence int) {
	return code / 100000, code / 1000 % 100, code % 1000
}

// IsClientError reports whether code blames the caller.
func IsClientError(code int) bool {
	_, category, _ := ParseCode(code)
	return category == CategoryRequest || category == CategoryResource
}
