package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mergelint/internal/diag"
	"mergelint/internal/project"
	"mergelint/internal/source"
)

// Increment when the Payload format changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores analysis results on disk keyed by content hash, so
// repeated runs over unchanged documents skip the scan and check phases.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the serialized analysis result for one document.
type Payload struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	Diagnostics []CachedDiagnostic
}

// CachedDiagnostic is a diagnostic with its span flattened to offsets; the
// file identity is re-bound on restore.
type CachedDiagnostic struct {
	Code     uint16
	Severity uint8
	Start    uint32
	End      uint32
	Msg      string
	Notes    []CachedNote
	Fixes    []CachedFix
}

type CachedNote struct {
	Start uint32
	End   uint32
	Msg   string
}

type CachedFix struct {
	Title string
	Edits []CachedEdit
}

type CachedEdit struct {
	Start   uint32
	End     uint32
	NewText string
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt initializes a disk cache rooted at dir (tests, custom
// locations).
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key project.Digest, payload *Payload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key project.Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey binds the document content hash to the option fields that change
// the produced diagnostics.
func cacheKey(content project.Digest, opts Options) project.Digest {
	h := sha256.New()
	_, _ = h.Write([]byte(opts.Stage))
	if opts.Gated {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(opts.MaxDiagnostics))
	_, _ = h.Write(buf[:])

	var optsDigest project.Digest
	copy(optsDigest[:], h.Sum(nil))
	return project.Combine(content, optsDigest)
}

func buildPayload(res *Result) *Payload {
	payload := &Payload{
		Schema:      diskCacheSchemaVersion,
		Diagnostics: make([]CachedDiagnostic, 0, res.Bag.Len()),
	}
	for _, d := range res.Bag.Items() {
		entry := CachedDiagnostic{
			Code:     uint16(d.Code),
			Severity: uint8(d.Severity),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
			Msg:      d.Message,
		}
		for _, n := range d.Notes {
			entry.Notes = append(entry.Notes, CachedNote{Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		for _, fix := range d.Fixes {
			cached := CachedFix{Title: fix.Title}
			for _, e := range fix.Edits {
				cached.Edits = append(cached.Edits, CachedEdit{Start: e.Span.Start, End: e.Span.End, NewText: e.NewText})
			}
			entry.Fixes = append(entry.Fixes, cached)
		}
		payload.Diagnostics = append(payload.Diagnostics, entry)
	}
	return payload
}

// restoreInto rebinds the cached diagnostics to res.FileID. Returns false
// when the payload comes from an incompatible schema.
func (p *Payload) restoreInto(res *Result) bool {
	if p.Schema != diskCacheSchemaVersion {
		return false
	}
	span := func(start, end uint32) source.Span {
		return source.Span{File: res.FileID, Start: start, End: end}
	}
	for _, entry := range p.Diagnostics {
		d := diag.Diagnostic{
			Code:     diag.Code(entry.Code),
			Severity: diag.Severity(entry.Severity),
			Message:  entry.Msg,
			Primary:  span(entry.Start, entry.End),
		}
		for _, n := range entry.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.Start, n.End), Msg: n.Msg})
		}
		for _, fix := range entry.Fixes {
			restored := diag.Fix{Title: fix.Title}
			for _, e := range fix.Edits {
				restored.Edits = append(restored.Edits, diag.FixEdit{Span: span(e.Start, e.End), NewText: e.NewText})
			}
			d.Fixes = append(d.Fixes, restored)
		}
		res.Bag.Add(d)
	}
	return true
}
