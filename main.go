// seed-release-cache: pre-writes gdenv's releases_cache.json with a single
// release entry, so CI runners never hit the unauthenticated, paginated
// Github releases listing.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"
)

type State struct {
	GithubToken string
	Client      *http.Client
}

func NewState() *State {
	return &State{}
}

// -- globals

var STATE *State

var API_URL = "https://api.github.com"

// --- bootstrap

func init_state() *State {
	state := NewState()

	// optional. anonymous requests are fine for a single release lookup.
	token, present := os.LookupEnv("GITHUB_TOKEN")
	if present {
		state.GithubToken = token
	}

	state.Client = &http.Client{}

	return state
}

func init() {
	STATE = init_state()
	if is_testing() {
		return
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})))
}

func usage(flag_set *pflag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: seed-release-cache [flags] <version> <cache_file>")
	fmt.Fprint(os.Stderr, flag_set.FlagUsages())
}

// parse -> canonicalize -> fetch -> project -> write.
// returns the process exit code: 0 ok, 1 anything went wrong, 2 bad usage.
func run(arg_list []string) int {
	flag_set := pflag.NewFlagSet("seed-release-cache", pflag.ContinueOnError)
	dotnet_flag := flag_set.Bool("dotnet", false, "seed the .NET (mono) edition of the version")
	verify_flag := flag_set.Bool("verify-asset", false, "check the platform asset's archive actually contains a Godot binary")
	verbose_flag := flag_set.BoolP("verbose", "v", false, "debug logging")

	err := flag_set.Parse(arg_list)
	if err != nil {
		usage(flag_set)
		return 2
	}
	if flag_set.NArg() != 2 {
		usage(flag_set)
		return 2
	}

	if *verbose_flag {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelDebug})))
	}

	version_input := flag_set.Arg(0)
	cache_file := flag_set.Arg(1)

	version, err := parse_version(version_input, *dotnet_flag)
	if err != nil {
		slog.Error("invalid version", "version", version_input, "error", err)
		return 1
	}

	release_tag := full_version_str(version)
	slog.Info("fetching release", "version", display_version_str(version), "tag", release_tag)

	release, err := fetch_release(release_tag)
	if err != nil {
		slog.Error("failed to fetch release", "error", err)
		return 1
	}

	// the tag github hands back should round-trip to the version we asked for.
	// a mismatch means godot-builds renamed something, worth knowing about but not fatal.
	returned_version, err := parse_version(release.TagName, *dotnet_flag)
	if err != nil || compare_versions(returned_version, version) != 0 {
		slog.Warn("release tag does not round-trip", "requested", release_tag, "returned", release.TagName)
	}

	if *verify_flag {
		asset, err := find_godot_asset(release, *dotnet_flag, runtime.GOOS, runtime.GOARCH)
		if err != nil {
			slog.Error("failed to find a platform asset", "tag", release_tag, "error", err)
			return 1
		}
		err = verify_godot_asset(asset)
		if err != nil {
			slog.Error("failed to verify asset", "error", err)
			return 1
		}
	}

	payload := project_release(version, release)
	if *verbose_flag {
		pprint(payload)
	}

	err = validate_payload(payload)
	if err != nil {
		slog.Error("refusing to write cache", "error", err)
		return 1
	}

	err = write_cache(cache_file, payload)
	if err != nil {
		slog.Error("failed to write cache", "error", err)
		return 1
	}

	slog.Info("seeded release cache",
		"tag", release_tag,
		"release", title_case(version.ReleaseTag),
		"assets", len(payload[0].Assets),
		"cache-file", cache_file)
	return 0
}

func main() {
	os.Exit(run(os.Args[1:]))
}
