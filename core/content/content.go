// Package content turns raw links into URLs that can be placed in an embed frame.
package content

import (
	"fmt"
	"regexp"
	"strings"
)

// Type is the kind of an embeddable content item.
type Type string

const (
	TypeYouTube Type = "youtube"
	TypeDrive   Type = "drive"
	TypeIframe  Type = "iframe"
)

// Group names content of the same kind on the grade pages.
type Group string

const (
	GroupVideos       Group = "videos"
	GroupDocuments    Group = "documents"
	GroupApplications Group = "applications"
)

const (
	youTubeEmbedBase     = "https://www.youtube.com/embed/"
	youTubeThumbnailFmt  = "https://img.youtube.com/vi/%s/mqdefault.jpg"
	ThumbnailPlaceholder = "https://placehold.co/320x180.png"
)

var youTubeIDRegex = regexp.MustCompile(`(?:v=|/embed/|/)([\w-]{11})(&.*)?$`)

type descriptor struct {
	normalize func(url string) string
	icon      string
	group     Group
}

var registry = map[Type]descriptor{
	TypeYouTube: {normalize: normalizeYouTube, icon: "video", group: GroupVideos},
	TypeDrive:   {normalize: normalizeDrive, icon: "file-text", group: GroupDocuments},
	TypeIframe:  {normalize: identity, icon: "app-window", group: GroupApplications},
}

// Types lists the known types in display order.
var Types = []Type{TypeYouTube, TypeDrive, TypeIframe}

// ParseType returns the Type named s and whether it is known.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

func (t Type) Valid() bool {
	_, ok := registry[t]
	return ok
}

// Normalize returns the embeddable form of url. Unknown types leave url untouched.
// Normalize(Normalize(u)) == Normalize(u) for every known type.
func (t Type) Normalize(url string) string {
	if d, ok := registry[t]; ok {
		return d.normalize(url)
	}
	return url
}

func (t Type) Icon() string {
	if d, ok := registry[t]; ok {
		return d.icon
	}
	return "link"
}

func (t Type) Group() Group {
	return registry[t].group
}

// EmbedURL is a shorthand for t.Normalize(url).
func EmbedURL(url string, t Type) string {
	return t.Normalize(url)
}

// YouTubeID extracts the 11 character video id from watch, embed and short links.
func YouTubeID(url string) (string, bool) {
	m := youTubeIDRegex.FindStringSubmatch(url)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

// YouTubeThumbnail returns the medium quality thumbnail of a video, or a placeholder image.
func YouTubeThumbnail(url string) string {
	if id, ok := YouTubeID(url); ok {
		return fmt.Sprintf(youTubeThumbnailFmt, id)
	}
	return ThumbnailPlaceholder
}

func normalizeYouTube(url string) string {
	if id, ok := YouTubeID(url); ok {
		return youTubeEmbedBase + id
	}
	return url
}

func normalizeDrive(url string) string {
	for _, suffix := range []string{"/view", "/edit"} {
		if strings.HasSuffix(url, suffix) {
			return strings.TrimSuffix(url, suffix) + "/preview"
		}
	}
	return url
}

func identity(url string) string { return url }
