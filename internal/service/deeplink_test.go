package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	uaIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"
	uaAndroid = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0 Mobile"
	uaDesktop = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Chrome/120.0"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want Platform
	}{
		{"iphone", uaIPhone, PlatformIOS},
		{"ipad", "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X)", PlatformIOS},
		{"android", uaAndroid, PlatformAndroid},
		{"desktop chrome", uaDesktop, PlatformDesktop},
		{"empty", "", PlatformDesktop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.ua))
		})
	}
}

func TestDeepLink(t *testing.T) {
	tests := []struct {
		name string
		url  string
		ua   string
		want string
	}{
		{
			name: "youtube watch on ios",
			url:  "https://youtube.com/watch?v=abc123",
			ua:   uaIPhone,
			want: "youtube://watch?v=abc123",
		},
		{
			name: "youtube watch on android",
			url:  "https://www.youtube.com/watch?v=abc123",
			ua:   uaAndroid,
			want: "intent://www.youtube.com/watch?v=abc123#Intent;package=com.google.android.youtube;scheme=https;end",
		},
		{
			name: "youtu.be short link on ios",
			url:  "https://youtu.be/abc123",
			ua:   uaIPhone,
			want: "youtube://watch?v=abc123",
		},
		{
			name: "youtube channel on ios",
			url:  "https://www.youtube.com/channel/UCabc",
			ua:   uaIPhone,
			want: "youtube://channel/UCabc",
		},
		{
			name: "instagram post on ios",
			url:  "https://www.instagram.com/p/Cxyz123/",
			ua:   uaIPhone,
			want: "instagram://media?id=Cxyz123",
		},
		{
			name: "instagram profile on android",
			url:  "https://instagram.com/some.user",
			ua:   uaAndroid,
			want: "intent://www.instagram.com/some.user#Intent;package=com.instagram.android;scheme=https;end",
		},
		{
			name: "tiktok video on ios",
			url:  "https://www.tiktok.com/@creator/video/7123456789",
			ua:   uaIPhone,
			want: "snssdk1233://video/7123456789",
		},
		{
			name: "twitter status on ios",
			url:  "https://x.com/someone/status/178901234",
			ua:   uaIPhone,
			want: "twitter://status?id=178901234",
		},
		{
			name: "twitter profile on android",
			url:  "https://twitter.com/someone",
			ua:   uaAndroid,
			want: "intent://twitter.com/someone#Intent;package=com.twitter.android;scheme=https;end",
		},
		{
			name: "linkedin profile on ios",
			url:  "https://www.linkedin.com/in/jane-doe/",
			ua:   uaIPhone,
			want: "linkedin://profile/jane-doe",
		},
		{
			name: "reddit thread on ios",
			url:  "https://www.reddit.com/r/golang/comments/xyz789/",
			ua:   uaIPhone,
			want: "reddit://reddit/r/golang/comments/xyz789",
		},
		{
			name: "github repo on ios",
			url:  "https://github.com/owner/repo",
			ua:   uaIPhone,
			want: "github://repo/owner/repo",
		},
		{
			name: "telegram on android",
			url:  "https://t.me/somechannel",
			ua:   uaAndroid,
			want: "intent://t.me/somechannel#Intent;package=org.telegram.messenger;scheme=https;end",
		},
		{
			name: "whatsapp number on ios",
			url:  "https://wa.me/15551234567",
			ua:   uaIPhone,
			want: "whatsapp://send?phone=15551234567",
		},
		{
			name: "desktop never rewrites",
			url:  "https://youtube.com/watch?v=abc123",
			ua:   uaDesktop,
			want: "",
		},
		{
			name: "unrelated url passes through",
			url:  "https://example.com/some/page",
			ua:   uaIPhone,
			want: "",
		},
		{
			name: "youtube watch without video id",
			url:  "https://youtube.com/watch",
			ua:   uaIPhone,
			want: "",
		},
		{
			name: "unparseable url",
			url:  "://not-a-url",
			ua:   uaIPhone,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeepLink(tt.url, tt.ua))
		})
	}
}

func TestDeepLink_OrderPrefersMoreSpecificPattern(t *testing.T) {
	// instagram.com/p/... must hit the media pattern, not the profile one.
	got := DeepLink("https://www.instagram.com/p/Cabc/", uaIPhone)
	assert.Equal(t, "instagram://media?id=Cabc", got)

	// github.com/owner resolves as a user only when no repo segment follows.
	got = DeepLink("https://github.com/owner", uaIPhone)
	assert.Equal(t, "github://user/owner", got)
}
