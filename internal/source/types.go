package source

type (
	// FileID uniquely identifies a document within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about how a document was obtained.
	FileFlags uint8
)

const (
	// FileVirtual indicates the document was added from memory (stdin, test).
	FileVirtual FileFlags = 1 << iota
	// FileHadBOM indicates a UTF-8 BOM was stripped on load.
	FileHadBOM
	// FileNormalizedCRLF indicates CRLF line endings were normalized to LF.
	FileNormalizedCRLF
	// FileExtracted indicates the content went through rich-text extraction.
	FileExtracted
)

// File captures metadata and content for a single analyzed document.
// Content is the buffer all spans of the document index into.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a human-readable position in a document, both 1-based.
type LineCol struct {
	Line uint32
	Col  uint32
}
