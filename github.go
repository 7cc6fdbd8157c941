// talking to the Github API: fetching a single release by tag and
// peeking inside release asset archives.
package main

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	bufra "github.com/avvmoto/buf-readerat"
	"github.com/snabb/httpreaderat"
)

// a release asset as Github returns it
type GithubAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int    `json:"size"`
}

// a repository release. `TagName` is the canonical version string of the release.
type GithubRelease struct {
	TagName   string        `json:"tag_name"`
	AssetList []GithubAsset `json:"assets"`
}

type ResponseWrapper struct {
	*http.Response
	Text string
}

// client trace to log whether the request's underlying tcp connection was re-used
func trace_context() context.Context {
	client_tracer := &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			slog.Debug("HTTP connection reuse", "reused", info.Reused, "remote", info.Conn.RemoteAddr())
		},
	}
	return httptrace.WithClientTrace(context.Background(), client_tracer)
}

func download(url string, headers map[string]string) (ResponseWrapper, error) {
	slog.Debug("HTTP GET", "url", url)
	empty_response := ResponseWrapper{}

	// ---

	req, err := http.NewRequestWithContext(trace_context(), http.MethodGet, url, nil)
	if err != nil {
		return empty_response, fmt.Errorf("failed to create request: %w", err)
	}
	for header, header_val := range headers {
		req.Header.Set(header, header_val)
	}

	// ---

	client := STATE.Client
	resp, err := client.Do(req)
	if err != nil {
		return empty_response, fmt.Errorf("failed to fetch '%s': %w", url, err)
	}
	defer resp.Body.Close()

	// ---

	content_bytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty_response, fmt.Errorf("failed to read response body: %w", err)
	}

	return ResponseWrapper{
		Response: resp,
		Text:     string(content_bytes),
	}, nil
}

// the headers the Github REST API wants on every request.
// the token is optional: anonymous requests work, they just get rate limited sooner.
func github_headers() map[string]string {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if STATE.GithubToken != "" {
		headers["Authorization"] = "Bearer " + STATE.GithubToken
	}
	return headers
}

// just like `download` but adds the Github API headers to the request.
func github_download(url string) (ResponseWrapper, error) {
	return download(url, github_headers())
}

// fetches the godot-builds release for the exact tag `release_tag`.
// one attempt, no retries. anything outside 2xx is a fetch failure.
func fetch_release(release_tag string) (GithubRelease, error) {
	empty_response := GithubRelease{}

	api_url := API_URL + "/repos/godotengine/godot-builds/releases/tags/" + url.PathEscape(release_tag)
	resp, err := github_download(api_url)
	if err != nil {
		return empty_response, fmt.Errorf("failed to fetch release '%s': %w", release_tag, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// github error bodies carry a human readable 'message' field
		message := gjson.Get(resp.Text, "message").String()
		if message != "" {
			return empty_response, fmt.Errorf("failed to fetch release '%s': HTTP %d: %s", release_tag, resp.StatusCode, message)
		}
		return empty_response, fmt.Errorf("failed to fetch release '%s': HTTP %d", release_tag, resp.StatusCode)
	}

	var release GithubRelease
	err = json.Unmarshal([]byte(resp.Text), &release)
	if err != nil {
		return empty_response, fmt.Errorf("failed to parse release '%s' as JSON: %w", release_tag, err)
	}

	return release, nil
}

// asset name patterns for a platform, in order of preference.
// 64-bit linux runners falling back to the generic 'linux' suffix, arm falling
// back to x86 via emulation, etc.
func platform_patterns(os, arch string) []string {
	switch {
	case os == "windows" && arch == "amd64":
		return []string{"win64"}
	case os == "windows" && arch == "386":
		return []string{"win32", "win64"}
	case os == "windows":
		return []string{"win64", "win32"}
	case os == "darwin":
		// macOS builds are universal binaries
		return []string{"macos"}
	case os == "linux" && arch == "amd64":
		return []string{"linux.x86_64", "linux_x86_64", "linux"}
	case os == "linux" && arch == "386":
		return []string{"linux.x86_32", "linux_x86_32", "linux.x86_64", "linux_x86_64", "linux"}
	case os == "linux" && arch == "arm":
		return []string{"linux.arm32", "linux_arm32", "linux.arm64", "linux_arm64", "linux"}
	case os == "linux" && arch == "arm64":
		return []string{"linux.arm64", "linux_arm64", "linux.x86_64", "linux_x86_64", "linux"}
	default:
		return []string{"linux.x86_64", "linux"}
	}
}

// finds the release asset holding the Godot editor for the given platform.
// the mono builds are a separate set of assets, selected by `is_dotnet`.
func find_godot_asset(release GithubRelease, is_dotnet bool, os, arch string) (GithubAsset, error) {
	for _, pattern := range platform_patterns(os, arch) {
		for _, asset := range release.AssetList {
			name := strings.ToLower(asset.Name)
			has_platform := strings.Contains(name, pattern)
			has_godot := strings.Contains(name, "godot")
			has_mono := strings.Contains(name, "mono")
			is_zip := strings.HasSuffix(name, ".zip")
			if has_platform && has_godot && is_zip && (is_dotnet == has_mono) {
				return asset, nil
			}
		}
	}
	return GithubAsset{}, fmt.Errorf("no matching Godot asset for platform: OS=%s, ARCH=%s", os, arch)
}

// returns the names of files within the zipfile at `url` that match `zipped_file_filter`,
// without downloading the whole archive.
func remote_zip_file_names(url string, headers map[string]string, zipped_file_filter func(string) bool) ([]string, error) {
	req, err := http.NewRequestWithContext(trace_context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for header, header_val := range headers {
		req.Header.Set(header, header_val)
	}

	// ---

	client := STATE.Client

	// a 'readerat' is an implementation of the built-in Go interface `io.ReaderAt`,
	// that provides a means to jump around within the bytes of a remote file using
	// HTTP Range requests.
	http_readerat, err := httpreaderat.New(client, req, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create a HTTPReaderAt: %w", err)
	}

	// a 'buffered readerat' remembers the bytes read of a `io.ReaderAt` implementation,
	// reducing the number of future reads when the bytes have already been read.
	buffer_size := 1024 * 1024 // 1MiB
	buffered_http_readerat := bufra.NewBufReaderAt(http_readerat, buffer_size)
	zip_rdr, err := zip.NewReader(buffered_http_readerat, http_readerat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to create a zip reader: %w", err)
	}

	name_list := []string{}
	for _, zipped_file_entry := range zip_rdr.File {
		if zipped_file_filter(zipped_file_entry.Name) {
			slog.Debug("found zipped file name match", "filename", zipped_file_entry.Name)
			name_list = append(name_list, zipped_file_entry.Name)
		}
	}

	return name_list, nil
}

func is_godot_binary(filename string) bool {
	return strings.Contains(strings.ToLower(filename), "godot")
}

// confirms the asset's archive actually contains a Godot binary before we tell
// gdenv it exists. reads the zip's central directory over HTTP, not the archive itself.
func verify_godot_asset(asset GithubAsset) error {
	slog.Info("verifying asset", "asset", asset.Name, "size", asset.Size)
	name_list, err := remote_zip_file_names(asset.BrowserDownloadURL, github_headers(), is_godot_binary)
	if err != nil {
		return fmt.Errorf("failed to inspect asset '%s': %w", asset.Name, err)
	}
	if len(name_list) == 0 {
		return fmt.Errorf("asset '%s' does not contain a Godot binary", asset.Name)
	}
	slog.Debug("asset verified", "asset", asset.Name, "matches", len(name_list))
	return nil
}
