package echoapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/snabb/sitemap"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/course"
)

var staticPages = []string{"/", "/login", "/register"}

type seoApi struct {
	siteURL string
	courses course.Service
}

func registerSEO(e *echo.Echo, conf *core.Config, courses course.Service) {
	api := seoApi{siteURL: conf.SiteURL, courses: courses}
	e.GET("/robots.txt", api.robots)
	e.GET("/sitemap.xml", api.sitemap)
}

func (api *seoApi) robots(ctx echo.Context) error {
	var b strings.Builder
	b.WriteString("# *\nUser-agent: *\nAllow: /\n\n")
	_, _ = fmt.Fprintf(&b, "# Host\nHost: %s\n\n", api.siteURL)
	_, _ = fmt.Fprintf(&b, "# Sitemaps\nSitemap: %s/sitemap.xml\n", api.siteURL)
	return ctx.String(http.StatusOK, b.String())
}

func (api *seoApi) sitemap(ctx echo.Context) error {
	courses, err := api.courses.Query(ctx.Request().Context(), course.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}

	sm := sitemap.New()
	add := func(path string, lastMod *time.Time) {
		sm.Add(&sitemap.URL{
			Loc:        api.siteURL + path,
			LastMod:    lastMod,
			ChangeFreq: sitemap.Daily,
			Priority:   0.7,
		})
	}
	for _, p := range staticPages {
		add(p, nil)
	}
	for _, g := range course.Grades {
		add("/sinif/"+g.Slug, nil)
	}
	for _, c := range courses {
		lastMod := c.UpdatedAt.UTC().Truncate(time.Second)
		add("/courses/"+c.ID, &lastMod)
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, echo.MIMEApplicationXMLCharsetUTF8)
	res.WriteHeader(http.StatusOK)
	if _, err = sm.WriteTo(res); err != nil {
		return errors.Wrap(err, "writing sitemap")
	}
	return nil
}
