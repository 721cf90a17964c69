package importer

import "fmt"

// ImportError is a file or row that could not be imported. Row is the
// 1-based row in the source file (the header is row 1); it is 0 when the
// failure concerns the whole file.
type ImportError struct {
	File string
	Row  int
	Err  error
}

func NewImportError(file string, row int, err error) *ImportError {
	return &ImportError{File: file, Row: row, Err: err}
}

func (e *ImportError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("import %s: row %d: %v", e.File, e.Row, e.Err)
	}
	return fmt.Sprintf("import %s: %v", e.File, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
