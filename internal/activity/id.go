package activity

import (
	"crypto/md5"
	"fmt"
	"regexp"
	"strings"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	dashRuns     = regexp.MustCompile(`-{2,}`)
	idFormat     = regexp.MustCompile(`^[a-z0-9-]+$`)
)

// SlugID derives a readable ID from a title: lowercase, characters outside
// [a-z0-9-] replaced with '-', repeated dashes collapsed, edges trimmed.
// Titles without any ASCII letters or digits yield "".
func SlugID(title string) string {
	s := strings.ToLower(title)
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// HashID returns the first 8 hex characters of the MD5 digest of title
func HashID(title string) string {
	sum := md5.Sum([]byte(title))
	return fmt.Sprintf("%x", sum)[:8]
}

// ValidID reports whether id matches [a-z0-9-]+
func ValidID(id string) bool {
	return idFormat.MatchString(id)
}
