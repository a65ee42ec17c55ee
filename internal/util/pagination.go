package util

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Window is a normalized 1-based page of a list query.
type Window struct {
	Page   int
	Size   int
	Offset int
}

func Paginate(page, size int) Window {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Window{Page: page, Size: size, Offset: (page - 1) * size}
}
