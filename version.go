// parsing, formatting and ordering of Godot version strings.
package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// the version grammar used by godotengine/godot-builds release tags:
// MAJOR[.MINOR[.PATCH[.SUBPATCH]]][-TAG[N]][EXTRA]
var VERSION_REGEXP = regexp.MustCompile(`^v?(\d+)(?:\.(\d+))?(?:\.(\d+))?(?:\.(\d+))?(?:-([a-zA-Z]+)(\d+)?)?(.*?)$`)

// a structured Godot version.
// the json field names are load-bearing: gdenv reads the cache file straight
// into its own GodotVersion record.
type GodotVersion struct {
	Major      int     `json:"major"`
	Minor      *int    `json:"minor"`
	Patch      *int    `json:"patch"`
	SubPatch   *int    `json:"sub_patch"`
	ReleaseTag string  `json:"release_tag"`
	TagVersion *int    `json:"tag_version"`
	Extra      *string `json:"extra"`
	IsDotNet   bool    `json:"is_dotnet"`
}

func intptr(i int) *int {
	return &i
}

func strptr(s string) *string {
	return &s
}

// value of an optional int field, absent reading as zero.
func intval(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

func strval(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parses a numeric capture group, "" meaning the group didn't participate.
func parse_component(group string) (*int, error) {
	if group == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(group)
	if err != nil {
		return nil, err
	}
	return intptr(i), nil
}

// the collapse rule is asymmetric: a trailing zero component is dropped,
// but a zero component survives when a more specific one did ("4.0.1" keeps minor=0).
func keep_component(value *int, more_specific_present bool) *int {
	if value == nil {
		return nil
	}
	if more_specific_present || *value > 0 {
		return value
	}
	return nil
}

// parses a free-form version string like "4.2.1-rc2" or "v4.0" into a `GodotVersion`.
// trailing zero components collapse to absent, the release tag defaults to "stable"
// and any unmatched trailing text is kept verbatim in `extra`.
func parse_version(version_str string, is_dotnet bool) (GodotVersion, error) {
	empty_version := GodotVersion{}

	groups := VERSION_REGEXP.FindStringSubmatch(version_str)
	if groups == nil {
		return empty_version, fmt.Errorf("invalid Godot version format: %s", version_str)
	}

	major, err := strconv.Atoi(groups[1])
	if err != nil {
		return empty_version, fmt.Errorf("invalid major version in: %s", version_str)
	}

	minor_opt, err := parse_component(groups[2])
	if err != nil {
		return empty_version, fmt.Errorf("invalid minor version in: %s", version_str)
	}
	patch_opt, err := parse_component(groups[3])
	if err != nil {
		return empty_version, fmt.Errorf("invalid patch version in: %s", version_str)
	}
	sub_patch_opt, err := parse_component(groups[4])
	if err != nil {
		return empty_version, fmt.Errorf("invalid sub-patch version in: %s", version_str)
	}

	release_tag := groups[5]
	if release_tag == "" {
		release_tag = "stable"
	}

	tag_version, err := parse_component(groups[6])
	if err != nil {
		return empty_version, fmt.Errorf("invalid release tag version in: %s", version_str)
	}

	var extra *string
	if groups[7] != "" {
		extra = strptr(groups[7])
	}

	// collapse, most specific component first.
	sub_patch := keep_component(sub_patch_opt, false)
	patch := keep_component(patch_opt, sub_patch != nil)
	minor := keep_component(minor_opt, patch != nil)

	return GodotVersion{
		Major:      major,
		Minor:      minor,
		Patch:      patch,
		SubPatch:   sub_patch,
		ReleaseTag: release_tag,
		TagVersion: tag_version,
		Extra:      extra,
		IsDotNet:   is_dotnet,
	}, nil
}

// version string without the release tag: "4.0", "4.2.1", "3.5.2.1".
// an absent minor is displayed as 0.
func version_str_no_release_tag(version GodotVersion) string {
	out := fmt.Sprintf("%d.%d", version.Major, intval(version.Minor))
	if version.Patch != nil {
		out += fmt.Sprintf(".%d", *version.Patch)
		if version.SubPatch != nil {
			out += fmt.Sprintf(".%d", *version.SubPatch)
		}
	}
	return out
}

// the canonical version string: "4.0-stable", "4.2.1-rc2".
// this is byte-for-byte the tag godotengine/godot-builds uses for its releases,
// and the key gdenv looks versions up by.
func full_version_str(version GodotVersion) string {
	out := version_str_no_release_tag(version) + "-" + version.ReleaseTag
	if version.TagVersion != nil {
		out += strconv.Itoa(*version.TagVersion)
	}
	if version.Extra != nil {
		out += *version.Extra
	}
	return out
}

// human readable form, marking the .NET (mono) edition.
func display_version_str(version GodotVersion) string {
	if version.IsDotNet {
		return full_version_str(version) + " (.NET)"
	}
	return full_version_str(version)
}

// anything that isn't a stable release.
func is_prerelease(version GodotVersion) bool {
	return version.ReleaseTag != "stable"
}

// relative order of known release tags. unknown tags rank below all of these.
var RELEASE_TAG_RANK = map[string]int{
	"stable": 100,
	"rc":     80,
	"beta":   60,
	"alpha":  40,
	"dev":    20,
}

func release_tag_rank(tag string) int {
	rank, present := RELEASE_TAG_RANK[strings.ToLower(tag)]
	if !present {
		return 0
	}
	return rank
}

func cmp_int(a, b int) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// total order over versions: numeric components (absent reading as zero),
// then release tag rank, tag name, tag version and finally `extra`.
// "4.2" and "4.2.0-stable" compare equal.
func compare_versions(a, b GodotVersion) int {
	numeric_pairs := [][2]int{
		{a.Major, b.Major},
		{intval(a.Minor), intval(b.Minor)},
		{intval(a.Patch), intval(b.Patch)},
		{intval(a.SubPatch), intval(b.SubPatch)},
	}
	for _, pair := range numeric_pairs {
		c := cmp_int(pair[0], pair[1])
		if c != 0 {
			return c
		}
	}
	c := cmp_int(release_tag_rank(a.ReleaseTag), release_tag_rank(b.ReleaseTag))
	if c != 0 {
		return c
	}
	// alphabetical when the ranks tie (two unknown tags)
	c = strings.Compare(a.ReleaseTag, b.ReleaseTag)
	if c != 0 {
		return c
	}
	c = cmp_int(intval(a.TagVersion), intval(b.TagVersion))
	if c != 0 {
		return c
	}
	return strings.Compare(strval(a.Extra), strval(b.Extra))
}
