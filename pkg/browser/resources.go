package browser

import (
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// resourceAliases maps CDP resource types onto the plural names the
// config uses
var resourceAliases = map[string]string{
	"image":      "images",
	"font":       "fonts",
	"script":     "scripts",
	"stylesheet": "stylesheets",
}

// blockResources intercepts page requests and drops the configured
// resource classes. Extraction reads image URLs from DOM attributes,
// so heavy assets can be blocked without losing data.
func blockResources(page *rod.Page, types []string) error {
	blocked := make(map[string]bool, len(types))
	for _, t := range types {
		blocked[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(ctx *rod.Hijack) {
		if shouldBlock(blocked, string(ctx.Request.Type())) {
			ctx.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		ctx.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return nil
}

func shouldBlock(blocked map[string]bool, resType string) bool {
	name := strings.ToLower(resType)
	if plural, ok := resourceAliases[name]; ok {
		name = plural
	}
	return blocked[name]
}
