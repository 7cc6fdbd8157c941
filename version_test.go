package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parse_version(t *testing.T) {
	cases := map[string]GodotVersion{
		"4.2": {Major: 4, Minor: intptr(2), ReleaseTag: "stable"},
		"4.2.1-rc2": {
			Major: 4, Minor: intptr(2), Patch: intptr(1),
			ReleaseTag: "rc", TagVersion: intptr(2),
		},
		// trailing zero minor collapses to absent
		"4.0": {Major: 4, ReleaseTag: "stable"},
		"1":   {Major: 1, ReleaseTag: "stable"},
		// zero minor survives because patch is present
		"4.0.1": {Major: 4, Minor: intptr(0), Patch: intptr(1), ReleaseTag: "stable"},
		// zero minor and patch survive because sub_patch is present
		"4.0.0.1": {
			Major: 4, Minor: intptr(0), Patch: intptr(0), SubPatch: intptr(1),
			ReleaseTag: "stable",
		},
		"3.5.2.1": {
			Major: 3, Minor: intptr(5), Patch: intptr(2), SubPatch: intptr(1),
			ReleaseTag: "stable",
		},
		// leading 'v' is tolerated
		"v4.2.1": {Major: 4, Minor: intptr(2), Patch: intptr(1), ReleaseTag: "stable"},
		// trailing zero patch collapses even when a tag is present
		"4.3.0-beta2": {
			Major: 4, Minor: intptr(3),
			ReleaseTag: "beta", TagVersion: intptr(2),
		},
		// "rc.1": the dot stops the tag version match, the remainder lands in extra
		"4.1.0-rc.1": {
			Major: 4, Minor: intptr(1),
			ReleaseTag: "rc", Extra: strptr(".1"),
		},
		// anything after the numeric components that isn't a '-tag' lands in extra
		"4.4.stable.official.8981fd6c1": {
			Major: 4, Minor: intptr(4),
			ReleaseTag: "stable", Extra: strptr(".stable.official.8981fd6c1"),
		},
		"4.2.1-stable": {Major: 4, Minor: intptr(2), Patch: intptr(1), ReleaseTag: "stable"},
	}
	for given, expected := range cases {
		actual, err := parse_version(given, false)
		assert.Nil(t, err, given)
		assert.Equal(t, expected, actual, given)
	}
}

func Test_parse_version_bad_input(t *testing.T) {
	case_list := []string{
		"",
		"abc",
		"-rc1",
		".4.2",
		"v",
	}
	for _, given := range case_list {
		_, err := parse_version(given, false)
		assert.NotNil(t, err, given)
	}
}

func Test_parse_version_dotnet(t *testing.T) {
	version, err := parse_version("4.2.1", true)
	assert.Nil(t, err)
	assert.True(t, version.IsDotNet)
	assert.Equal(t, "4.2.1-stable (.NET)", display_version_str(version))
}

func Test_full_version_str(t *testing.T) {
	cases := map[string]string{
		"4.2":         "4.2-stable",
		"4.0":         "4.0-stable",
		"4.2.1":       "4.2.1-stable",
		"4.2.1-rc2":   "4.2.1-rc2",
		"3.5.2.1":     "3.5.2.1-stable",
		"4.0.1":       "4.0.1-stable",
		"4.3.0-beta2": "4.3-beta2",
		"4.1.0-rc.1":  "4.1-rc.1",
		"4.5-beta1":   "4.5-beta1",
		"v4.2.1":      "4.2.1-stable",
		"4.4.stable.official.8981fd6c1": "4.4-stable.stable.official.8981fd6c1",
	}
	for given, expected := range cases {
		version, err := parse_version(given, false)
		assert.Nil(t, err, given)
		assert.Equal(t, expected, full_version_str(version), given)
	}
}

// canonicalization is idempotent: parsing the canonical string yields an
// equivalent version, and formatting that yields the same string again.
func Test_full_version_str_round_trip(t *testing.T) {
	case_list := []string{
		"4.2",
		"4.0",
		"4.2.1-rc2",
		"3.5.2.1",
		"4.3.0-beta2",
		"4.1.0-rc.1",
		"v4.0",
	}
	for _, given := range case_list {
		version, err := parse_version(given, false)
		assert.Nil(t, err, given)
		canonical := full_version_str(version)
		version2, err := parse_version(canonical, false)
		assert.Nil(t, err, canonical)
		assert.Equal(t, version, version2, given)
		assert.Equal(t, canonical, full_version_str(version2), given)
	}
}

func Test_is_prerelease(t *testing.T) {
	cases := map[string]bool{
		"4.2.1":        false,
		"4.2.1-stable": false,
		"4.3.0-beta2":  true,
		"4.2.1-rc5":    true,
		"4.3-dev1":     true,
	}
	for given, expected := range cases {
		version, err := parse_version(given, false)
		assert.Nil(t, err, given)
		assert.Equal(t, expected, is_prerelease(version), given)
	}
}

func Test_compare_versions(t *testing.T) {
	// pairs of (lesser, greater)
	ordered_pairs := [][2]string{
		{"3.5.2.1", "4.0"},
		{"4.2", "4.2.1"},
		{"4.2.1", "4.3"},
		{"4.2.1-rc5", "4.2.1"},     // stable outranks rc
		{"4.2.1-beta1", "4.2.1-rc1"},
		{"4.2.1-alpha2", "4.2.1-beta1"},
		{"4.2.1-dev3", "4.2.1-alpha1"},
		{"4.2.1-rc1", "4.2.1-rc2"},
		{"4.0.0.1", "4.0.1"},
	}
	for _, pair := range ordered_pairs {
		a, err := parse_version(pair[0], false)
		assert.Nil(t, err, pair[0])
		b, err := parse_version(pair[1], false)
		assert.Nil(t, err, pair[1])
		assert.Equal(t, -1, compare_versions(a, b), pair[0]+" < "+pair[1])
		assert.Equal(t, 1, compare_versions(b, a), pair[1]+" > "+pair[0])
	}

	// absent components read as zero
	equal_pairs := [][2]string{
		{"4.2", "4.2.0-stable"},
		{"4.2.1-rc5", "4.2.1-rc5"},
		{"4.0", "4.0.0.0"},
	}
	for _, pair := range equal_pairs {
		a, err := parse_version(pair[0], false)
		assert.Nil(t, err, pair[0])
		b, err := parse_version(pair[1], false)
		assert.Nil(t, err, pair[1])
		assert.Equal(t, 0, compare_versions(a, b), pair[0]+" == "+pair[1])
	}
}
