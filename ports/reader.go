package ports

import (
	"io"

	"datapulse/domain/table"
)

// TableReader parses spreadsheet bytes into a RawTable. The analysis
// pipeline itself never touches file bytes; reading is an external concern.
type TableReader interface {
	// Read parses the named file from disk
	Read(path string) (*table.RawTable, error)

	// ReadFrom parses an in-memory upload; name selects csv vs xlsx handling
	ReadFrom(r io.Reader, name string) (*table.RawTable, error)
}
