package util

import "errors"

const DefaultPageSize = 50

var ErrInvalidPage = errors.New("page_size and page_number must be at least 1")

// Calculate turns a 1-based page number and page size into offset and limit.
func Calculate(page, size int) (offset, limit int, err error) {
	if page < 1 || size < 1 {
		return 0, 0, ErrInvalidPage
	}
	return (page - 1) * size, size, nil
}
