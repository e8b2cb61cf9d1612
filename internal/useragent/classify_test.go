package useragent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	iPhoneSafari  = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	iPadSafari    = "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	androidTablet = "Mozilla/5.0 (Linux; Android 13; SM-X700) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	windowsChrome = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36"
	googlebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestClassify_Devices(t *testing.T) {
	tests := []struct {
		name   string
		ua     string
		device string
	}{
		{"iPhone", iPhoneSafari, DeviceMobile},
		{"iPad", iPadSafari, DeviceTablet},
		{"Android 平板", androidTablet, DeviceTablet},
		{"Windows 桌面", windowsChrome, DeviceDesktop},
		{"爬虫", googlebot, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.device, Classify(tt.ua).DeviceType)
		})
	}
}

func TestClassify_BrowserAndOS(t *testing.T) {
	info := Classify(windowsChrome)
	assert.Equal(t, "Chrome", info.Browser)
	assert.Contains(t, info.OS, "Windows")
}

func TestClassify_MalformedFallsBackToUnknown(t *testing.T) {
	for _, s := range []string{"", "   ", "%%%not a browser%%%", "()", "/1.0"} {
		info := Classify(s)
		assert.Equal(t, Info{DeviceType: Unknown, Browser: Unknown, OS: Unknown}, info, "ua=%q", s)
	}
}
