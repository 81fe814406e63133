package wad

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	vpk "github.com/galaco/vpk2"
	"github.com/pkg/errors"
)

var ErrFileNotFound = errors.New("file not found")

// FileSystem locates WAD files in plain directories, zip/pk3 packages and
// VPK archives, searched in that order.
type FileSystem struct {
	dirs []string
	zips []*zip.Reader
	vpks []*vpk.VPK

	zipIndex map[string]*zip.File
}

func NewFileSystem(dirs []string, zips []*zip.Reader, vpks []*vpk.VPK) *FileSystem {
	return &FileSystem{
		dirs: dirs,
		zips: zips,
		vpks: vpks,
	}
}

// OpenVPKs opens VPK archives. Paths ending in _dir.vpk are opened together
// with their numbered data archives.
func OpenVPKs(paths []string) ([]*vpk.VPK, error) {
	vpks := make([]*vpk.VPK, 0, len(paths))

	for _, path := range paths {
		var opener vpk.Opener

		if prefix, ok := strings.CutSuffix(path, "_dir.vpk"); ok {
			opener = vpk.MultiVPK(prefix)
		} else {
			opener = vpk.SingleVPK(path)
		}

		v, err := vpk.Open(opener)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open vpk %q", path)
		}

		vpks = append(vpks, v)
	}

	return vpks, nil
}

// Open returns the named file. Names are matched case-insensitively inside
// packages.
func (v *FileSystem) Open(name string) (io.ReadCloser, error) {
	for _, dir := range v.dirs {
		f, err := os.Open(filepath.Join(dir, name))
		if err == nil {
			return f, nil
		}
	}

	for _, z := range v.zips {
		f, err := z.Open(name)
		if err == nil {
			stat, err := f.Stat()
			if err == nil && stat.Size() > 0 {
				return f, nil
			}

			f.Close()
		}
	}

	// try case-insensitive
	if v.zipIndex == nil {
		v.zipIndex = make(map[string]*zip.File)

		for _, z := range v.zips {
			for _, f := range z.File {
				key := strings.ToLower(f.Name)
				if _, ok := v.zipIndex[key]; !ok {
					v.zipIndex[key] = f
				}
			}
		}
	}

	if zf, ok := v.zipIndex[strings.ToLower(name)]; ok {
		f, err := zf.Open()
		if err == nil {
			return f, nil
		}
	}

	for _, vpkF := range v.vpks {
		f, err := vpkF.Open(name)
		if err == nil {
			stat, err := f.Stat()
			if err == nil && stat.Size() > 0 {
				return f, nil
			}
		}
	}

	return nil, errors.Wrapf(ErrFileNotFound, "%s not found", name)
}

// ReadArchive opens and parses the named WAD.
func (v *FileSystem) ReadArchive(name string) (*Archive, error) {
	f, err := v.Open(name)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %q", name)
	}

	a, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %q", name)
	}

	return a, nil
}
