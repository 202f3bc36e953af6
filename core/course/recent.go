package course

import (
	"sort"
	"strconv"
	"strings"

	"github.com/berkanmatematik/platform/core/content"
)

const contentIDPrefix = "content-"

// RecentVideo is a youtube item of any course, as listed on the landing page.
type RecentVideo struct {
	CourseContent
	ThumbnailURL string `json:"thumbnailUrl"`
}

// RecentVideos returns at most n youtube items across courses, newest first.
// Items with the same recency key keep their course/content order.
func RecentVideos(courses []Course, n int) []RecentVideo {
	videos := make([]RecentVideo, 0)
	if n <= 0 {
		return videos
	}
	for _, c := range courses {
		for _, item := range c.Content {
			if item.Type != content.TypeYouTube {
				continue
			}
			videos = append(videos, RecentVideo{
				CourseContent: annotate(c, item),
				ThumbnailURL:  content.YouTubeThumbnail(item.URL),
			})
		}
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return RecencyKey(videos[i].ID) > RecencyKey(videos[j].ID)
	})
	if len(videos) > n {
		videos = videos[:n]
	}
	return videos
}

// RecencyKey is the integer suffix of a `content-<unixMillis>` id; 0 when absent or malformed.
func RecencyKey(id string) int64 {
	i := strings.LastIndex(id, "-")
	if i < 0 {
		return 0
	}
	key, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return 0
	}
	return key
}
