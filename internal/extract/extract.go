package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// Fatal extraction conditions. Everything else inside the pipeline is
// recovered per file and never aborts a scan.
var (
	ErrFileNotFound      = errors.New("package file not found")
	ErrUnsupportedFormat = errors.New("unsupported package format")
	ErrInvalidArchive    = errors.New("invalid archive")
	ErrInvalidStructure  = errors.New("invalid package structure")
)

// workDirPrefix marks working directories as pipeline-owned. Cleanup refuses
// to delete anything without this marker.
const workDirPrefix = "fluttersec-"

// Layout describes the canonical subpaths of an extracted package. Detectors
// read it and never write under Root.
type Layout struct {
	Root          string
	FlutterAssets string // flutter_assets dir, empty if absent
	Assets        string // generic assets dir (Android), empty if absent
	NativeBinary  string // libapp.so / App binary, empty if absent
	AppDir        string // iOS .app bundle, empty on Android
	Platform      types.Platform
}

// Extractor unpacks one package format and exposes its discovery API.
type Extractor interface {
	// Extract unpacks the package into destDir, or into a fresh pipeline-owned
	// temp directory when destDir is empty. Re-extracting into the same
	// directory overwrites prior contents.
	Extract(ctx context.Context, destDir string) (*Layout, error)
	// AppName returns the application display name, or the file stem when the
	// manifest could not be parsed.
	AppName() string
	// PackageID returns the package name (Android) or bundle id (iOS), or
	// "unknown" when the manifest could not be parsed.
	PackageID() string
	// DetectFlutter reports whether the package looks like a Flutter app.
	// Advisory only; scanning proceeds regardless.
	DetectFlutter() bool
	// Cleanup removes the working directory. It refuses paths it does not
	// recognize as ones it created.
	Cleanup() error
}

// ForFile selects the extractor for a package path based on its extension.
func ForFile(path string) (Extractor, types.Platform, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, types.PlatformUnknown, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, types.PlatformUnknown, fmt.Errorf("stat %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".apk":
		return NewAPKExtractor(path), types.PlatformAndroid, nil
	case ".ipa":
		return NewIPAExtractor(path), types.PlatformIOS, nil
	default:
		return nil, types.PlatformUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// prepareWorkDir resolves the extraction target. With an empty destDir a
// fresh temp directory is created and marked as owned; a caller-supplied
// directory is created if needed but never owned.
func prepareWorkDir(destDir, kind string) (dir string, owned bool, err error) {
	if destDir != "" {
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return "", false, fmt.Errorf("creating extraction dir: %w", err)
		}
		return destDir, false, nil
	}
	dir, err = os.MkdirTemp("", workDirPrefix+kind+"-")
	if err != nil {
		return "", false, fmt.Errorf("creating temp extraction dir: %w", err)
	}
	return dir, true, nil
}

// removeWorkDir deletes dir only when it carries the pipeline ownership
// marker. Anything else is left alone.
func removeWorkDir(dir string) error {
	if dir == "" {
		return nil
	}
	if !strings.HasPrefix(filepath.Base(dir), workDirPrefix) {
		logging.L().Warnf("refusing to delete %s: not a pipeline-owned directory", dir)
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		// Best effort: the directory may already be gone.
		logging.L().Debugf("cleanup of %s failed: %v", dir, err)
		return err
	}
	return nil
}

// unzip extracts a zip container into dest, overwriting existing entries.
// Entry names are confined to dest (zip-slip guard) and contents are
// streamed, never buffered whole.
func unzip(ctx context.Context, src, dest string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidArchive, src)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := confinePath(dest, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		if err := extractEntry(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: opening entry %s", ErrInvalidArchive, f.Name)
	}
	defer rc.Close()

	mode := f.Mode()
	if mode&0o400 == 0 {
		mode |= 0o400 // some packages ship unreadable entries
	}
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("%w: extracting entry %s", ErrInvalidArchive, f.Name)
	}
	return nil
}

// confinePath joins an archive entry name onto dest and rejects names that
// escape it.
func confinePath(dest, name string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(name))
	if target != dest && !strings.HasPrefix(target, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: entry %q escapes extraction dir", ErrInvalidArchive, name)
	}
	return target, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
