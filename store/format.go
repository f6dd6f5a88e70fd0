package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/assembler-0/avc/ginternals"
	"github.com/assembler-0/avc/internal/atomicfile"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// formatFileName is the name of the small file at the repository root
// that records the on-disk object format. Its absence means format v1
// (zlib), matching an AVC repository that predates format negotiation.
const formatFileName = "format"

// RepoFormat is the persisted {version, compression} pair read from the
// repository's format file.
type RepoFormat struct {
	Version     int
	Compression Format
}

// DefaultRepoFormat is what a freshly initialized AVC repository
// persists: format v2, Zstandard compression.
func DefaultRepoFormat() RepoFormat {
	return RepoFormat{Version: 2, Compression: FormatZstd}
}

// LoadFormat reads <repoDir>/format. A missing file is not an error:
// it means version 1 with zlib framing.
func LoadFormat(fs afero.Fs, repoDir string) (RepoFormat, error) {
	p := filepath.Join(repoDir, formatFileName)
	raw, err := afero.ReadFile(fs, p)
	if err != nil {
		if os.IsNotExist(err) {
			return RepoFormat{Version: 1, Compression: FormatZlib}, nil
		}
		return RepoFormat{}, xerrors.Errorf("could not read format file: %w", err)
	}

	line := strings.TrimSpace(string(raw))
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return RepoFormat{}, xerrors.Errorf("malformed format file %q", line)
	}

	version, err := strconv.Atoi(parts[0])
	if err != nil {
		return RepoFormat{}, xerrors.Errorf("malformed format version %q: %w", parts[0], err)
	}
	compression, err := strconv.Atoi(parts[1])
	if err != nil {
		return RepoFormat{}, xerrors.Errorf("malformed format compression %q: %w", parts[1], err)
	}

	if version != 1 && version != 2 {
		return RepoFormat{}, xerrors.Errorf("format version %d: %w", version, ginternals.ErrFormatUnsupported)
	}

	return RepoFormat{Version: version, Compression: Format(compression)}, nil
}

// SaveFormat persists the format file via the same temp+rename
// discipline used for objects and refs.
func SaveFormat(fs afero.Fs, repoDir string, f RepoFormat) error {
	p := filepath.Join(repoDir, formatFileName)
	content := []byte(fmt.Sprintf("%d %d\n", f.Version, f.Compression))
	return atomicfile.Write(fs, p, content, 0o644)
}
