package comments

import (
	"fmt"
	"regexp"
	"strings"
)

// Checked in order, first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]v=([^&#]+)`),
	regexp.MustCompile(`be/([^?&#/]+)`),
	regexp.MustCompile(`embed/([^?&#/]+)`),
	regexp.MustCompile(`shorts/([^?&#/]+)`),
}

var bareVideoIDRE = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractVideoID pulls the video id out of a watch, short or embed URL.
func ExtractVideoID(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	for _, re := range videoIDPatterns {
		match := re.FindStringSubmatch(rawURL)
		if len(match) == 2 && match[1] != "" {
			return match[1], nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, rawURL)
}

// ResolveVideoID accepts either a bare video id or a URL.
func ResolveVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidIdentifier)
	}
	if bareVideoIDRE.MatchString(input) {
		return input, nil
	}
	return ExtractVideoID(input)
}
