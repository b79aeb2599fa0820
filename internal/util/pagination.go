package util

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Paginate normalizes page and size and returns the row offset for them.
// Pages start at 1; a size outside 1..MaxPageSize falls back to the default.
func Paginate(page, size int) (normPage, normSize, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return page, size, (page - 1) * size
}
