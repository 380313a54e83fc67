package converter

import "fmt"

// FileNotFoundError is returned when the input path does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("файл не найден: %s", e.Path)
}

// UnsupportedFormatError is returned for extensions no parser handles.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("неподдерживаемый формат файла %q: %s", e.Ext, e.Path)
}

// EmptyDataError is returned when the first worksheet has no rows.
type EmptyDataError struct {
	Path string
}

func (e *EmptyDataError) Error() string {
	return fmt.Sprintf("файл пуст или не содержит данных: %s", e.Path)
}

// EncodingError reports a cell that cannot be represented in the output
// encoding. Row and Column are 0-based positions in the final table.
type EncodingError struct {
	Row    int
	Column int
	Value  string
	Err    error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("ячейка (строка %d, столбец %d) %q не может быть записана в windows-1251: %v",
		e.Row+1, e.Column+1, e.Value, e.Err)
}

func (e *EncodingError) Unwrap() error { return e.Err }
