package protection

import "regexp"

// crawlerPattern matches the user-agent signatures of well-known
// crawlers and link-preview fetchers.
var crawlerPattern = regexp.MustCompile(`(?i)bot|crawl|spider|slurp|bingpreview|facebookexternalhit|twitterbot|linkedinbot|whatsapp|telegram|discord|googlebot|bingbot|yandexbot|baiduspider|duckduckbot|applebot|facebot|ia_archiver`)

// IsCrawler reports whether the user agent belongs to a known crawler.
// An empty user agent is not treated as a crawler.
func IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	return crawlerPattern.MatchString(userAgent)
}
