// Package cliparse holds pure text-to-record parsers, one file per CLI
// command family, grounded in the regex field extraction style of the
// teacher's vendors/huawei/cli.go. Parsers never touch the network or the
// cache; they are unit-tested against recorded CLI transcripts kept as
// string literals in each _test.go file.
package cliparse

import (
	"regexp"
	"strings"
)

// fspSpaced matches an F/S/P triple that may have whitespace inserted
// around the slashes, e.g. "0/ 1/0" — some firmware builds do this.
var fspSpaced = regexp.MustCompile(`(\d+)\s*/\s*(\d+)\s*/\s*(\d+)`)

// NormalizePort rewrites any F/S/P occurrence in s to "F/S/P" with no
// interior whitespace. Every port string this package emits has been
// passed through this function (spec §4.D normalization invariant).
func NormalizePort(s string) string {
	return fspSpaced.ReplaceAllString(s, "$1/$2/$3")
}

// fspExact matches a fully normalized F/S/P triple with no interior
// whitespace, used when reassembling a triple split across tokens.
var fspExact = regexp.MustCompile(`^\d+/\d+/\d+$`)

// fsOnly matches a bare F/S pair (used for "interface gpon 0/1" targets).
var fsOnly = regexp.MustCompile(`^(\d+)\s*/\s*(\d+)$`)

// NormalizeFS rewrites an F/S pair ("0/ 1") to "0/1".
func NormalizeFS(s string) string {
	m := fsOnly.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return strings.TrimSpace(s)
	}
	return m[1] + "/" + m[2]
}
