package extract

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shogo82148/androidbinary/apk"

	"fluttersec/pkg/logging"
	"fluttersec/pkg/types"
)

// APKExtractor unpacks Android packages and exposes their canonical layout.
type APKExtractor struct {
	apkPath string
	workDir string
	owned   bool
	layout  *Layout

	appName   string
	packageID string
}

func NewAPKExtractor(path string) *APKExtractor {
	return &APKExtractor{apkPath: path}
}

func (e *APKExtractor) Extract(ctx context.Context, destDir string) (*Layout, error) {
	dir, owned, err := prepareWorkDir(destDir, "apk")
	if err != nil {
		return nil, err
	}
	e.workDir, e.owned = dir, owned

	if err := unzip(ctx, e.apkPath, dir); err != nil {
		if owned {
			_ = removeWorkDir(dir)
			e.workDir = ""
		}
		return nil, err
	}

	e.parseManifest()

	layout := &Layout{
		Root:     dir,
		Platform: types.PlatformAndroid,
	}
	if assets := filepath.Join(dir, "assets"); dirExists(assets) {
		layout.Assets = assets
	}
	if fa := filepath.Join(dir, "assets", "flutter_assets"); dirExists(fa) {
		layout.FlutterAssets = fa
	}
	layout.NativeBinary = e.findLibapp()

	e.layout = layout
	return layout, nil
}

// parseManifest reads the binary AndroidManifest.xml for the package name and
// display label. Failure yields an unknown identity, never an error.
func (e *APKExtractor) parseManifest() {
	pkg, err := apk.OpenFile(e.apkPath)
	if err != nil {
		logging.L().Debugf("manifest parse failed for %s: %v", e.apkPath, err)
		return
	}
	defer pkg.Close()

	e.packageID = pkg.PackageName()
	if label, err := pkg.Label(nil); err == nil {
		e.appName = label
	}
}

// findLibapp returns the first libapp.so found under any architecture
// directory. Only one architecture is scanned even when several exist; the
// Dart snapshot is identical across them.
func (e *APKExtractor) findLibapp() string {
	matches, err := filepath.Glob(filepath.Join(e.workDir, "lib", "*", "libapp.so"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	return matches[0]
}

func (e *APKExtractor) AppName() string {
	if e.appName != "" {
		return e.appName
	}
	return strings.TrimSuffix(filepath.Base(e.apkPath), filepath.Ext(e.apkPath))
}

func (e *APKExtractor) PackageID() string {
	if e.packageID != "" {
		return e.packageID
	}
	return "unknown"
}

func (e *APKExtractor) DetectFlutter() bool {
	if e.layout == nil {
		return false
	}
	if e.layout.FlutterAssets != "" {
		return true
	}
	matches, _ := filepath.Glob(filepath.Join(e.workDir, "lib", "*", "libflutter.so"))
	return len(matches) > 0
}

func (e *APKExtractor) Cleanup() error {
	if e.workDir == "" || !e.owned {
		return nil
	}
	err := removeWorkDir(e.workDir)
	e.workDir = ""
	e.layout = nil
	return err
}
