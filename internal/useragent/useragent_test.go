package useragent

import "testing"

const (
	uaEdgeDesktop   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91"
	uaChromeDesktop = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	uaFirefoxLinux  = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"
	uaSafariMac     = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15"
	uaOperaClassic  = "Opera/9.80 (Windows NT 6.1) Presto/2.12.388 Version/12.16"
	uaChromeAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36"
	uaSafariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Mobile/15E148 Safari/604.1"
	uaSafariIPad    = "Mozilla/5.0 (iPad; CPU OS 17_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/604.1"
)

func TestParseBrowser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"edge", uaEdgeDesktop, "Edge"},
		{"chrome", uaChromeDesktop, "Chrome"},
		{"firefox", uaFirefoxLinux, "Firefox"},
		{"safari", uaSafariMac, "Safari"},
		{"opera classic", uaOperaClassic, "Opera"},
		{"empty", "", "Other"},
		{"curl", "curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseBrowser(tt.ua); got != tt.want {
				t.Errorf("ParseBrowser(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}

func TestParseBrowser_EdgeOrdering(t *testing.T) {
	t.Parallel()

	// Edge UAs contain both "Edg/" and "Chrome"; the Edg/ rule must win.
	if got := ParseBrowser(uaEdgeDesktop); got != "Edge" {
		t.Fatalf("user agent with Edg/ and Chrome tokens classified as %q, want Edge", got)
	}
}

func TestParseDevice(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"desktop windows", uaChromeDesktop, "desktop"},
		{"desktop mac", uaSafariMac, "desktop"},
		{"android", uaChromeAndroid, "mobile"},
		{"iphone", uaSafariIPhone, "mobile"},
		{"ipad", uaSafariIPad, "tablet"},
		{"tablet token", "SomeBrowser/1.0 (Tablet; rv:1.0)", "tablet"},
		{"empty", "", "desktop"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseDevice(tt.ua); got != tt.want {
				t.Errorf("ParseDevice(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}

func TestParseOS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ua   string
		want string
	}{
		{"windows", uaChromeDesktop, "Windows"},
		{"macos", uaSafariMac, "macOS"},
		{"linux", uaFirefoxLinux, "Linux"},
		// Android UAs carry a "Linux;" token and the linux rule is
		// ordered first, matching the documented rule order.
		{"android ua contains linux", uaChromeAndroid, "Linux"},
		{"pure android", "Dalvik/2.1.0 (Android 14; Pixel 8)", "Android"},
		{"iphone", uaSafariIPhone, "iOS"},
		{"empty", "", "Other"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ParseOS(tt.ua); got != tt.want {
				t.Errorf("ParseOS(%q) = %q, want %q", tt.ua, got, tt.want)
			}
		})
	}
}

func TestParse_AllComponents(t *testing.T) {
	t.Parallel()

	c := Parse(uaEdgeDesktop)
	if c.Device != "desktop" || c.Browser != "Edge" || c.OS != "Windows" {
		t.Errorf("Parse(edge desktop) = %+v, want desktop/Edge/Windows", c)
	}
}
