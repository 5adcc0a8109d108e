package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Platform is the visitor's device class, derived from the user agent.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
)

// DetectPlatform classifies a user agent. Anything that is not clearly a
// mobile platform counts as desktop and never gets a deep link.
func DetectPlatform(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	if strings.Contains(ua, "iphone") || strings.Contains(ua, "ipad") || strings.Contains(ua, "ipod") {
		return PlatformIOS
	}
	if strings.Contains(ua, "android") {
		return PlatformAndroid
	}
	return PlatformDesktop
}

// deepLinkPattern rewrites one destination shape into a native app URI.
// The regexp runs against scheme://host/path with the query stripped; the
// builder additionally receives the parsed original URL so it can read
// query parameters (YouTube watch ids live there).
type deepLinkPattern struct {
	platform Platform
	pattern  *regexp.Regexp
	build    func(u *url.URL, m []string) string
}

// deepLinkPatterns is evaluated in declaration order; the first match for
// the visitor's platform wins.
var deepLinkPatterns = []deepLinkPattern{
	// Instagram
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/(?:p|reel|tv)/([a-zA-Z0-9_-]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return "instagram://media?id=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/(?:p|reel|tv)/([a-zA-Z0-9_-]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.instagram.com/p/%s#Intent;package=com.instagram.android;scheme=https;end", m[1])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/([a-zA-Z0-9_.]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return "instagram://user?username=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/([a-zA-Z0-9_.]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.instagram.com/%s#Intent;package=com.instagram.android;scheme=https;end", m[1])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/stories/([a-zA-Z0-9_.]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return "instagram://user?username=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/stories/([a-zA-Z0-9_.]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.instagram.com/stories/%s#Intent;package=com.instagram.android;scheme=https;end", m[1])
		},
	},

	// TikTok
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@([a-zA-Z0-9_.]+)/video/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return "snssdk1233://video/" + m[2]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?tiktok\.com/@([a-zA-Z0-9_.]+)/video/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.tiktok.com/@%s/video/%s#Intent;package=com.zhiliaoapp.musically;scheme=https;end", m[1], m[2])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:vm\.)?tiktok\.com/([a-zA-Z0-9]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return "snssdk1233://aweme/detail/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:vm\.)?tiktok\.com/([a-zA-Z0-9]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://vm.tiktok.com/%s#Intent;package=com.zhiliaoapp.musically;scheme=https;end", m[1])
		},
	},

	// YouTube: watch ids live in the query for youtube.com and in the path
	// for youtu.be, so the builder checks both.
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?(?:youtube\.com/watch|youtu\.be/([a-zA-Z0-9_-]+))`),
		build: func(u *url.URL, m []string) string {
			if id := youtubeVideoID(u, m); id != "" {
				return "youtube://watch?v=" + id
			}
			return ""
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?(?:youtube\.com/watch|youtu\.be/([a-zA-Z0-9_-]+))`),
		build: func(u *url.URL, m []string) string {
			if id := youtubeVideoID(u, m); id != "" {
				return fmt.Sprintf("intent://www.youtube.com/watch?v=%s#Intent;package=com.google.android.youtube;scheme=https;end", id)
			}
			return ""
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/channel/([a-zA-Z0-9_-]+)`),
		build: func(_ *url.URL, m []string) string {
			return "youtube://channel/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/channel/([a-zA-Z0-9_-]+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.youtube.com/channel/%s#Intent;package=com.google.android.youtube;scheme=https;end", m[1])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/@([a-zA-Z0-9_.-]+)`),
		build: func(_ *url.URL, m []string) string {
			return "youtube://@" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/@([a-zA-Z0-9_.-]+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.youtube.com/@%s#Intent;package=com.google.android.youtube;scheme=https;end", m[1])
		},
	},

	// Twitter/X
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?(?:twitter\.com|x\.com)/([a-zA-Z0-9_]+)/status/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return "twitter://status?id=" + m[2]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?(?:twitter\.com|x\.com)/([a-zA-Z0-9_]+)/status/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://twitter.com/%s/status/%s#Intent;package=com.twitter.android;scheme=https;end", m[1], m[2])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?(?:twitter\.com|x\.com)/([a-zA-Z0-9_]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return "twitter://user?screen_name=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?(?:twitter\.com|x\.com)/([a-zA-Z0-9_]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://twitter.com/%s#Intent;package=com.twitter.android;scheme=https;end", m[1])
		},
	},

	// LinkedIn
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?linkedin\.com/in/([a-zA-Z0-9-]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return "linkedin://profile/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?linkedin\.com/in/([a-zA-Z0-9-]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.linkedin.com/in/%s#Intent;package=com.linkedin.android;scheme=https;end", m[1])
		},
	},

	// Twitch
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?twitch\.tv/videos/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return "twitch://video?id=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?twitch\.tv/videos/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.twitch.tv/videos/%s#Intent;package=tv.twitch.android.app;scheme=https;end", m[1])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?twitch\.tv/([a-zA-Z0-9_]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return "twitch://stream/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?twitch\.tv/([a-zA-Z0-9_]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.twitch.tv/%s#Intent;package=tv.twitch.android.app;scheme=https;end", m[1])
		},
	},

	// Reddit
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?reddit\.com/r/([a-zA-Z0-9_]+)/comments/([a-zA-Z0-9_]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("reddit://reddit/r/%s/comments/%s", m[1], m[2])
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?reddit\.com/r/([a-zA-Z0-9_]+)/comments/([a-zA-Z0-9_]+)/?`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.reddit.com/r/%s/comments/%s#Intent;package=com.reddit.frontpage;scheme=https;end", m[1], m[2])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?reddit\.com/r/([a-zA-Z0-9_]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return "reddit://reddit/r/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://(?:www\.)?reddit\.com/r/([a-zA-Z0-9_]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://www.reddit.com/r/%s#Intent;package=com.reddit.frontpage;scheme=https;end", m[1])
		},
	},

	// Discord
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://discord\.gg/([a-zA-Z0-9]+)`),
		build: func(_ *url.URL, m []string) string {
			return "discord://invite/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://discord\.gg/([a-zA-Z0-9]+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://discord.gg/%s#Intent;package=com.discord;scheme=https;end", m[1])
		},
	},

	// GitHub
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://github\.com/([a-zA-Z0-9._-]+)/([a-zA-Z0-9._-]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("github://repo/%s/%s", m[1], m[2])
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://github\.com/([a-zA-Z0-9._-]+)/([a-zA-Z0-9._-]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://github.com/%s/%s#Intent;package=com.github.android;scheme=https;end", m[1], m[2])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://github\.com/([a-zA-Z0-9._-]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return "github://user/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://github\.com/([a-zA-Z0-9._-]+)/?$`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://github.com/%s#Intent;package=com.github.android;scheme=https;end", m[1])
		},
	},

	// WhatsApp
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://wa\.me/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return "whatsapp://send?phone=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://wa\.me/(\d+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://send?phone=%s#Intent;package=com.whatsapp;scheme=whatsapp;end", m[1])
		},
	},
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://chat\.whatsapp\.com/([a-zA-Z0-9]+)`),
		build: func(_ *url.URL, m []string) string {
			return "whatsapp://chat/" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://chat\.whatsapp\.com/([a-zA-Z0-9]+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://chat.whatsapp.com/%s#Intent;package=com.whatsapp;scheme=https;end", m[1])
		},
	},

	// Telegram
	{
		platform: PlatformIOS,
		pattern:  regexp.MustCompile(`^https?://t\.me/([a-zA-Z0-9_]+)`),
		build: func(_ *url.URL, m []string) string {
			return "tg://resolve?domain=" + m[1]
		},
	},
	{
		platform: PlatformAndroid,
		pattern:  regexp.MustCompile(`^https?://t\.me/([a-zA-Z0-9_]+)`),
		build: func(_ *url.URL, m []string) string {
			return fmt.Sprintf("intent://t.me/%s#Intent;package=org.telegram.messenger;scheme=https;end", m[1])
		},
	},
}

func youtubeVideoID(u *url.URL, m []string) string {
	if m[1] != "" {
		return m[1]
	}
	return u.Query().Get("v")
}

// DeepLink rewrites a destination URL into a native app URI for the
// visitor's platform. It returns "" when the visitor is on desktop, the
// URL does not parse, or no pattern applies; callers then redirect to the
// original URL unchanged.
func DeepLink(rawURL, userAgent string) string {
	platform := DetectPlatform(userAgent)
	if platform == PlatformDesktop {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	target := u.Scheme + "://" + u.Host + u.Path

	for _, p := range deepLinkPatterns {
		if p.platform != platform {
			continue
		}
		m := p.pattern.FindStringSubmatch(target)
		if m == nil {
			continue
		}
		if link := p.build(u, m); link != "" {
			return link
		}
	}
	return ""
}
