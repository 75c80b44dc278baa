package tracker

import "errors"

var (
	// ErrConfig means one or both sheet URLs are missing.
	ErrConfig = errors.New("please provide URLs for both Products and Stores sheets")

	// ErrEmptySheet means a sheet was fetched but held no data rows.
	ErrEmptySheet = errors.New("sheet was fetched but appears to be empty or incorrectly formatted")
)
