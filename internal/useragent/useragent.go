// Package useragent classifies User-Agent strings into device, browser
// and OS families via ordered substring matching. First matching rule
// wins, so rule order matters: "edg/" must be checked before "chrome"
// because Edge user agents also carry the Chrome token.
package useragent

import "strings"

// Classification holds the parsed components of a User-Agent string.
type Classification struct {
	Device  string
	Browser string
	OS      string
}

// Parse classifies all components of a User-Agent string.
func Parse(userAgent string) Classification {
	return Classification{
		Device:  ParseDevice(userAgent),
		Browser: ParseBrowser(userAgent),
		OS:      ParseOS(userAgent),
	}
}

// ParseDevice returns "mobile", "tablet" or "desktop".
func ParseDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mobile") || strings.Contains(ua, "android"):
		return "mobile"
	case strings.Contains(ua, "tablet") || strings.Contains(ua, "ipad"):
		return "tablet"
	default:
		return "desktop"
	}
}

// ParseBrowser returns the browser family, or "Other".
func ParseBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "edg/"):
		return "Edge"
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr/"):
		return "Opera"
	default:
		return "Other"
	}
}

// ParseOS returns the operating system family, or "Other".
func ParseOS(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "windows"):
		return "Windows"
	case strings.Contains(ua, "mac os") || strings.Contains(ua, "macos"):
		return "macOS"
	case strings.Contains(ua, "linux"):
		return "Linux"
	case strings.Contains(ua, "android"):
		return "Android"
	case strings.Contains(ua, "iphone") || strings.Contains(ua, "ios"):
		return "iOS"
	default:
		return "Other"
	}
}
