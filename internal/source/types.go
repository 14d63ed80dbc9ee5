package source

type (
	// FileID indexes a FileSet; spans and diagnostics refer to files by it.
	FileID uint32
	// FileFlags records how the content of a .ys file was obtained.
	FileFlags uint8
)

const (
	// FileVirtual: content came from memory (tests, fuzzers), not from disk.
	// diagfmt never shortens the paths of such files.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source. Offsets in Span and LineIdx are byte offsets
// into Content after BOM removal and CRLF normalization.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // смещения всех '\n'
	// Hash is the sha256 of Content; the driver keys its disk cache by it.
	Hash  [32]byte
	Flags FileFlags
}

// LineCol is a 1-based position as printed in diagnostics.
type LineCol struct {
	Line uint32
	Col  uint32 // в байтах, не в рунах
}
