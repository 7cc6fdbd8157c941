// projecting a release into the gdenv releases cache and writing it to disk.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// the reduced view of an asset that gdenv needs: enough to pick and download a build.
type CacheAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int    `json:"size"`
}

// one release in the cache file. the file is a JSON array of these and
// this tool always writes exactly one.
type CachePayloadEntry struct {
	Version GodotVersion `json:"version"`
	Assets  []CacheAsset `json:"assets"`
}

// the shape gdenv expects of releases_cache.json.
// gdenv deserializes strictly, so we check our own output against this before writing.
const CACHE_SCHEMA = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["version", "assets"],
		"properties": {
			"version": {
				"type": "object",
				"required": ["major", "release_tag", "is_dotnet"],
				"properties": {
					"major": {"type": "integer", "minimum": 0},
					"minor": {"type": ["integer", "null"], "minimum": 0},
					"patch": {"type": ["integer", "null"], "minimum": 0},
					"sub_patch": {"type": ["integer", "null"], "minimum": 0},
					"release_tag": {"type": "string", "minLength": 1},
					"tag_version": {"type": ["integer", "null"], "minimum": 0},
					"extra": {"type": ["string", "null"]},
					"is_dotnet": {"type": "boolean"}
				}
			},
			"assets": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["name", "browser_download_url", "size"],
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"browser_download_url": {"type": "string", "minLength": 1},
						"size": {"type": "integer", "minimum": 0}
					}
				}
			}
		}
	}
}`

var CACHE_SCHEMA_COMPILED = jsonschema.MustCompileString("releases_cache.schema.json", CACHE_SCHEMA)

// reduces a fetched release to the version we were asked for plus the
// name/url/size of each of its assets.
func project_release(version GodotVersion, release GithubRelease) []CachePayloadEntry {
	asset_list := []CacheAsset{}
	for _, asset := range release.AssetList {
		asset_list = append(asset_list, CacheAsset{
			Name:               asset.Name,
			BrowserDownloadURL: asset.BrowserDownloadURL,
			Size:               asset.Size,
		})
	}
	return []CachePayloadEntry{
		{Version: version, Assets: asset_list},
	}
}

// checks the payload against the cache schema.
func validate_payload(payload []CachePayloadEntry) error {
	payload_bytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to serialise cache payload: %w", err)
	}
	var doc any
	err = json.Unmarshal(payload_bytes, &doc)
	if err != nil {
		return fmt.Errorf("failed to deserialise cache payload: %w", err)
	}
	err = CACHE_SCHEMA_COMPILED.Validate(doc)
	if err != nil {
		return fmt.Errorf("cache payload does not match the releases cache schema: %w", err)
	}
	return nil
}

// "~/foo" => "/home/user/foo"
func expand_user(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

// writes the payload to `cache_path` as indented JSON, creating parent
// directories as needed and replacing any previous content.
func write_cache(cache_path string, payload []CachePayloadEntry) error {
	expanded_path, err := expand_user(cache_path)
	if err != nil {
		return err
	}

	payload_bytes, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialise cache payload: %w", err)
	}

	parent_dir := filepath.Dir(expanded_path)
	err = os.MkdirAll(parent_dir, 0755)
	if err != nil {
		return fmt.Errorf("failed to create cache directory '%s': %w", parent_dir, err)
	}

	err = os.WriteFile(expanded_path, payload_bytes, 0644)
	if err != nil {
		return fmt.Errorf("failed to write cache file '%s': %w", expanded_path, err)
	}

	return nil
}
