package automate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"

	"github.com/cunarist/rinf/automate/pkg"
	"github.com/cunarist/rinf/automate/pkg/files"
	"github.com/cunarist/rinf/automate/pkg/manifest"
	"github.com/cunarist/rinf/automate/pkg/textpatch"
)

// AppVariant describes a throwaway app scaffolded next to the framework
type AppVariant struct {
	Dir string

	// AddDependency is the command which makes rinf a dependency of the new app
	AddDependency []string

	// DropLocalCrate removes the path dependency on rust_crate from the workspace manifest
	DropLocalCrate bool
}

var (
	testApp = AppVariant{
		Dir:           "test_app",
		AddDependency: []string{"dart", "pub", "add", "rinf", "--path=../flutter_package"},
	}
	userApp = AppVariant{
		Dir:            "user_app",
		AddDependency:  []string{"flutter", "pub", "add", "rinf"},
		DropLocalCrate: true,
	}
)

// Text markers in the files generated by `rinf template` and in the repository manifest
const (
	tokioMarker       = "# tokio_with_wasm"
	wasmBindgenMarker = "# wasm-bindgen"
	tokioImportMarker = "// use tokio_with_wasm::alias as tokio;"
	exampleMembers    = "flutter_package/example/native/*"
	localCrateDep     = `rinf = { path = "rust_crate" }`
)

func (a AppVariant) tools() []string {
	tools := []string{"flutter", "rinf"}
	if a.AddDependency[0] != "flutter" && a.AddDependency[0] != "rinf" {
		tools = append(tools, a.AddDependency[0])
	}
	return tools
}

func (a AppVariant) members() string {
	return a.Dir + "/native/*"
}

func prepareApp(ctx context.Context, env *Env, app AppVariant) error {
	log := pkg.Log(ctx)
	appPath := env.Path(app.Dir)
	cratePath := env.Path(app.Dir, "native", "hub")
	pkg.PrintTask(env.out(), fmt.Sprintf("Preparing %s...", app.Dir))

	exists, err := pkg.DirExists(appPath)
	if err != nil {
		return err
	}
	if exists {
		log.Warn().Str("path", appPath).Msg("App directory already exists; flutter create will reuse it")
	}

	// Keep the app out of version control.
	ignoreEntry := "/" + app.Dir + "/"
	appended, err := textpatch.AppendLine(env.Resolve(env.Config.Ignore.File), ignoreEntry, env.Config.Ignore.AllowDuplicates)
	if err != nil {
		return err
	}
	if !appended {
		log.Info().Msgf("%s is already ignored", ignoreEntry)
	}

	pkg.PrintSubtask(env.out(), "Creating the Flutter app")
	if err = env.run(ctx, env.Root, "flutter", "create", app.Dir); err != nil {
		return err
	}
	if err = env.run(ctx, appPath, app.AddDependency[0], app.AddDependency[1:]...); err != nil {
		return err
	}
	checkPubspec(ctx, env.Path(app.Dir, "pubspec.yaml"))

	if err = env.run(ctx, appPath, "rinf", "template"); err != nil {
		return err
	}

	// The app joins the repository's Cargo workspace instead of having its own.
	appManifest := env.Path(app.Dir, "Cargo.toml")
	if err = os.Remove(appManifest); err != nil {
		return eris.Wrapf(err, "Failed to delete %s", appManifest)
	}

	pkg.PrintSubtask(env.out(), "Enabling the web target")
	crateManifest := filepath.Join(cratePath, "Cargo.toml")
	for _, marker := range []string{tokioMarker, wasmBindgenMarker} {
		if err = replaceOnce(ctx, crateManifest, marker, strings.TrimPrefix(marker, "# ")); err != nil {
			return err
		}
	}

	if err = patchSources(ctx, env, filepath.Join(cratePath, "src")); err != nil {
		return err
	}

	pkg.PrintSubtask(env.out(), "Updating workspace members")
	workspaceManifest := env.Path("Cargo.toml")
	if err = replaceOnce(ctx, workspaceManifest, exampleMembers, app.members()); err != nil {
		return err
	}
	checkWorkspace(ctx, workspaceManifest, app.members())

	if app.DropLocalCrate {
		if err = replaceOnce(ctx, workspaceManifest, localCrateDep, ""); err != nil {
			return err
		}
	}

	return nil
}

func replaceOnce(ctx context.Context, path, before, after string) error {
	found, err := textpatch.ReplaceOnce(path, before, after)
	if err != nil {
		return err
	}

	if !found {
		pkg.Log(ctx).Debug().Str("path", path).Msgf("%q not found in %s", before, path)
	}
	return nil
}

func patchSources(ctx context.Context, env *Env, srcPath string) error {
	sources, err := files.ListFiles(srcPath)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(sources),
		progressbar.OptionSetWriter(env.progress()),
		progressbar.OptionSetDescription("Patching sources"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
	for _, source := range sources {
		if err = replaceOnce(ctx, source, tokioImportMarker, strings.TrimPrefix(tokioImportMarker, "// ")); err != nil {
			return err
		}
		_ = bar.Add(1)
	}

	return bar.Finish()
}

func checkPubspec(ctx context.Context, path string) {
	spec, err := manifest.ReadPubspec(path)
	if err != nil {
		pkg.Log(ctx).Warn().Err(err).Msg("Could not verify the new app's dependencies")
		return
	}

	if !spec.HasDependency("rinf") {
		pkg.Log(ctx).Warn().Str("path", path).Msg("rinf is not listed in the app's dependencies")
	}
}

func checkWorkspace(ctx context.Context, path, members string) {
	ok, err := manifest.IsWorkspaceMember(path, members)
	if err != nil {
		pkg.Log(ctx).Warn().Err(err).Msg("Could not verify the workspace members")
		return
	}

	if !ok {
		pkg.Log(ctx).Warn().Str("path", path).Msgf("%s is not a workspace member", members)
	}
}
