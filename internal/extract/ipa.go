package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"

	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// IPAExtractor unpacks iOS packages and exposes their canonical layout.
type IPAExtractor struct {
	ipaPath string
	workDir string
	owned   bool
	layout  *Layout

	appName  string
	bundleID string
}

func NewIPAExtractor(path string) *IPAExtractor {
	return &IPAExtractor{ipaPath: path}
}

func (e *IPAExtractor) Extract(ctx context.Context, destDir string) (*Layout, error) {
	dir, owned, err := prepareWorkDir(destDir, "ipa")
	if err != nil {
		return nil, err
	}
	e.workDir, e.owned = dir, owned

	fail := func(err error) (*Layout, error) {
		if owned {
			_ = removeWorkDir(dir)
			e.workDir = ""
		}
		return nil, err
	}

	if err := unzip(ctx, e.ipaPath, dir); err != nil {
		return fail(err)
	}

	payload := filepath.Join(dir, "Payload")
	if !dirExists(payload) {
		return fail(fmt.Errorf("%w: Payload directory not found", ErrInvalidStructure))
	}
	appDirs, _ := filepath.Glob(filepath.Join(payload, "*.app"))
	if len(appDirs) == 0 {
		return fail(fmt.Errorf("%w: .app bundle not found", ErrInvalidStructure))
	}
	appDir := appDirs[0]

	e.parseInfoPlist(appDir)

	layout := &Layout{
		Root:     dir,
		AppDir:   appDir,
		Platform: types.PlatformIOS,
	}
	if fa := filepath.Join(appDir, "Frameworks", "App.framework", "flutter_assets"); dirExists(fa) {
		layout.FlutterAssets = fa
	}
	layout.NativeBinary = e.findAppBinary(appDir)

	e.layout = layout
	return layout, nil
}

// parseInfoPlist reads the bundle id and display name. Info.plist may be XML
// or binary; either way a parse failure yields an unknown identity.
func (e *IPAExtractor) parseInfoPlist(appDir string) {
	data, err := os.ReadFile(filepath.Join(appDir, "Info.plist"))
	if err != nil {
		logging.L().Debugf("Info.plist read failed for %s: %v", e.ipaPath, err)
		return
	}

	var info struct {
		CFBundleIdentifier  string `plist:"CFBundleIdentifier"`
		CFBundleDisplayName string `plist:"CFBundleDisplayName"`
		CFBundleName        string `plist:"CFBundleName"`
	}
	if _, err := plist.Unmarshal(data, &info); err != nil {
		logging.L().Debugf("Info.plist parse failed for %s: %v", e.ipaPath, err)
		return
	}

	e.bundleID = info.CFBundleIdentifier
	if info.CFBundleDisplayName != "" {
		e.appName = info.CFBundleDisplayName
	} else {
		e.appName = info.CFBundleName
	}
}

// findAppBinary locates the Dart snapshot binary: the App framework
// executable, falling back to the binary named after the .app bundle.
func (e *IPAExtractor) findAppBinary(appDir string) string {
	if bin := filepath.Join(appDir, "Frameworks", "App.framework", "App"); fileExists(bin) {
		return bin
	}
	stem := strings.TrimSuffix(filepath.Base(appDir), ".app")
	if bin := filepath.Join(appDir, stem); fileExists(bin) {
		return bin
	}
	return ""
}

func (e *IPAExtractor) AppName() string {
	if e.appName != "" {
		return e.appName
	}
	return strings.TrimSuffix(filepath.Base(e.ipaPath), filepath.Ext(e.ipaPath))
}

func (e *IPAExtractor) PackageID() string {
	if e.bundleID != "" {
		return e.bundleID
	}
	return "unknown"
}

func (e *IPAExtractor) DetectFlutter() bool {
	if e.layout == nil {
		return false
	}
	if e.layout.FlutterAssets != "" {
		return true
	}
	return dirExists(filepath.Join(e.layout.AppDir, "Frameworks", "Flutter.framework"))
}

func (e *IPAExtractor) Cleanup() error {
	if e.workDir == "" || !e.owned {
		return nil
	}
	err := removeWorkDir(e.workDir)
	e.workDir = ""
	e.layout = nil
	return err
}
