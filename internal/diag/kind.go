package diag

import "errors"

// Kind classifies a compile failure.
type Kind uint8

const (
	// KindNone means no error.
	KindNone Kind = iota
	// KindCompiler is an opaque compiler failure without location.
	KindCompiler
	// KindParse is a located syntax error.
	KindParse
	// KindStorage is a cache read or write failure.
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindCompiler:
		return "compiler"
	case KindParse:
		return "parse"
	case KindStorage:
		return "storage"
	}
	return "unknown"
}

// KindOf tags err.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return KindParse
	}
	var se *StorageError
	if errors.As(err, &se) {
		return KindStorage
	}
	return KindCompiler
}
