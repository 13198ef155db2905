package convert

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"portalscene/internal/utils"
)

var ErrEntryNotFound = errors.New("bundle entry not found")

// maxNameLen bounds entry names so a corrupt header cannot request a huge allocation.
const maxNameLen = 4096

type Entry struct {
	Name   string
	Offset uint32
	Size   uint32
}

// Bundle is a read-only view of a .pkg container: a version string, an entry
// table and a data section addressed by entry offsets.
type Bundle struct {
	Version string
	Entries []Entry

	r         io.ReaderAt
	closer    io.Closer
	dataStart int64
}

func readPkgString(r io.Reader) (string, error) {
	var size uint32
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return "", err
	}
	if size > maxNameLen {
		return "", fmt.Errorf("string length %d exceeds %d", size, maxNameLen)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writePkgString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// OpenBundle opens the package at path. Close releases the file.
func OpenBundle(path string) (*Bundle, error) {
	utils.Debug("Bundle: Opening package %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	b, err := ReadBundle(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("read bundle %s: %w", path, err)
	}
	b.closer = f
	return b, nil
}

// ReadBundle parses the header and entry table from rs.
func ReadBundle(rs io.ReadSeeker) (*Bundle, error) {
	version, err := readPkgString(rs)
	if err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}

	var fileCount uint32
	if err := binary.Read(rs, binary.LittleEndian, &fileCount); err != nil {
		return nil, fmt.Errorf("file count: %w", err)
	}
	utils.Debug("Bundle: Version %s, %d entries", version, fileCount)

	entries := make([]Entry, 0, min(fileCount, 1024))
	for i := uint32(0); i < fileCount; i++ {
		name, err := readPkgString(rs)
		if err != nil {
			return nil, fmt.Errorf("entry %d name: %w", i, err)
		}
		var offset, size uint32
		if err := binary.Read(rs, binary.LittleEndian, &offset); err != nil {
			return nil, fmt.Errorf("entry %d offset: %w", i, err)
		}
		if err := binary.Read(rs, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("entry %d size: %w", i, err)
		}
		entries = append(entries, Entry{Name: name, Offset: offset, Size: size})
	}

	dataStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}

	ra, ok := rs.(io.ReaderAt)
	if !ok {
		return nil, errors.New("bundle source does not support random access")
	}

	return &Bundle{
		Version:   version,
		Entries:   entries,
		r:         ra,
		dataStart: dataStart,
	}, nil
}

func (b *Bundle) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func (b *Bundle) find(name string) (Entry, bool) {
	name = filepath.ToSlash(name)
	for _, e := range b.Entries {
		if filepath.ToSlash(e.Name) == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Open returns a reader over one entry's bytes.
func (b *Bundle) Open(name string) (io.Reader, error) {
	e, ok := b.find(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return io.NewSectionReader(b.r, b.dataStart+int64(e.Offset), int64(e.Size)), nil
}

func (b *Bundle) ReadFile(name string) ([]byte, error) {
	r, err := b.Open(name)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

// Extract writes every entry below outputDir, refusing names that escape it.
func (b *Bundle) Extract(ctx context.Context, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	for i, entry := range b.Entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i%10 == 0 || i == len(b.Entries)-1 {
			utils.Debug("Bundle: Extracting file %d/%d: %s", i+1, len(b.Entries), entry.Name)
		}

		destPath, err := safeJoin(outputDir, entry.Name)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}

		outF, err := os.Create(destPath)
		if err != nil {
			return err
		}
		src := io.NewSectionReader(b.r, b.dataStart+int64(entry.Offset), int64(entry.Size))
		_, err = io.Copy(outF, src)
		closeErr := outF.Close()
		if err != nil {
			return fmt.Errorf("extract %s: %w", entry.Name, err)
		}
		if closeErr != nil {
			return closeErr
		}
	}

	utils.Debug("Bundle: Extraction completed")
	return nil
}

func safeJoin(root, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes output directory", name)
	}
	return filepath.Join(root, clean), nil
}

// ExtractBundle extracts the package at pkgPath into outputDir.
func ExtractBundle(ctx context.Context, pkgPath, outputDir string) error {
	b, err := OpenBundle(pkgPath)
	if err != nil {
		return err
	}
	defer b.Close()
	return b.Extract(ctx, outputDir)
}

// File is one entry handed to WriteBundle.
type File struct {
	Name string
	Data []byte
}

// WriteBundle packs files into the .pkg layout read by ReadBundle.
func WriteBundle(w io.Writer, version string, files []File) error {
	if err := writePkgString(w, version); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(files))); err != nil {
		return err
	}

	var offset uint32
	for _, f := range files {
		if err := writePkgString(w, f.Name); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, offset); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(f.Data))); err != nil {
			return err
		}
		offset += uint32(len(f.Data))
	}

	for _, f := range files {
		if _, err := w.Write(f.Data); err != nil {
			return err
		}
	}
	return nil
}

// DefaultBundleVersion is written by PackDir.
const DefaultBundleVersion = "PKGV0001"

// PackDir writes every regular file below dir into a new bundle at pkgPath,
// named by slash-separated paths relative to dir. It returns the entry count.
func PackDir(ctx context.Context, dir, pkgPath string) (int, error) {
	var files []File
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files = append(files, File{Name: filepath.ToSlash(rel), Data: data})
		return nil
	})
	if err != nil {
		return 0, err
	}

	out, err := os.Create(pkgPath)
	if err != nil {
		return 0, err
	}
	if err := WriteBundle(out, DefaultBundleVersion, files); err != nil {
		out.Close()
		return 0, fmt.Errorf("write %s: %w", pkgPath, err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	utils.Debug("Bundle: Packed %d files from %s", len(files), dir)
	return len(files), nil
}
