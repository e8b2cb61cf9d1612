// Package useragent 把 User-Agent 字符串归类为设备类型、浏览器和操作系统。
package useragent

import (
	"regexp"
	"strings"

	ua "github.com/mssola/useragent"
)

const (
	Unknown = "unknown"

	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Info 解析结果，无法识别的字段为 "unknown"
type Info struct {
	DeviceType string
	Browser    string
	OS         string
}

// 至少要以 product/version 开头才当作浏览器 UA 解析
var productToken = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*/[A-Za-z0-9._-]+`)

var desktopOS = []string{"Windows", "Mac OS X", "Macintosh", "Linux", "CrOS", "Chrome OS", "FreeBSD", "Ubuntu"}

// Classify 解析 User-Agent，任何解析异常都回退为 unknown
func Classify(userAgent string) (info Info) {
	info = Info{DeviceType: Unknown, Browser: Unknown, OS: Unknown}

	s := strings.TrimSpace(userAgent)
	if !productToken.MatchString(s) {
		return info
	}

	defer func() {
		if r := recover(); r != nil {
			info = Info{DeviceType: Unknown, Browser: Unknown, OS: Unknown}
		}
	}()

	parsed := ua.New(s)

	if name, _ := parsed.Browser(); name != "" {
		info.Browser = name
	}
	osName := parsed.OSInfo().Name
	if osName == "" {
		osName = parsed.OS()
	}
	if osName != "" {
		info.OS = osName
	}

	switch {
	case parsed.Bot():
		info.DeviceType = Unknown
	case isTablet(s):
		info.DeviceType = DeviceTablet
	case parsed.Mobile():
		info.DeviceType = DeviceMobile
	case isDesktopOS(osName):
		info.DeviceType = DeviceDesktop
	}
	return info
}

func isTablet(s string) bool {
	if strings.Contains(s, "iPad") || strings.Contains(s, "Tablet") {
		return true
	}
	return strings.Contains(s, "Android") && !strings.Contains(s, "Mobile")
}

func isDesktopOS(osName string) bool {
	for _, name := range desktopOS {
		if strings.Contains(osName, name) {
			return true
		}
	}
	return false
}
