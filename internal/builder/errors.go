package builder

import "errors"

var (
	// ErrContentUnreadable indicates the content tree could not be walked.
	ErrContentUnreadable = errors.New("content tree unreadable")

	// ErrOutputUnwritable indicates the output tree could not be prepared or written.
	ErrOutputUnwritable = errors.New("output tree unwritable")

	// ErrLayout indicates a layout failed to render.
	ErrLayout = errors.New("layout rendering failed")

	// ErrOutputCollision marks an item whose output path is taken by a
	// generated file or by an earlier item.
	ErrOutputCollision = errors.New("output path collision")
)
