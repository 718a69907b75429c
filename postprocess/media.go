package postprocess

/*
License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2023–2026 Norbert Pillmayer <norbert@pillmayer.com>

*/

import (
	"strconv"
	"strings"

	"github.com/npillmayer/wikidom/dom"
	"golang.org/x/net/html"
)

// addMediaInfo resolves every media reference in one batch against the
// data-access collaborator and stamps dimensions and source URLs onto
// the img elements.
func addMediaInfo(body *html.Node, pc *ProcContext) error {
	if pc.Access == nil {
		return nil
	}
	var imgs []*html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if dom.IsElt(c) && c.Data == "img" && dom.HasAttr(c, "resource") {
				imgs = append(imgs, c)
			}
			walk(c)
		}
	}
	walk(body)
	if len(imgs) == 0 {
		return nil
	}
	titles := make([]string, 0, len(imgs))
	for _, img := range imgs {
		titles = append(titles, resourceTitle(img))
	}
	infos, err := pc.Access.MediaInfoBatch(titles)
	if err != nil {
		return err
	}
	for i, img := range imgs {
		info := infos[titles[i]]
		if info == nil || info.Missing {
			if fig := img.Parent; fig != nil && dom.IsElt(fig) {
				dom.SetAttr(fig, "class", "mw-broken-media")
			}
			continue
		}
		if info.URL != "" {
			dom.SetAttr(img, "src", info.URL)
		}
		if info.Width > 0 {
			dom.SetAttr(img, "width", strconv.Itoa(info.Width))
		}
		if info.Height > 0 {
			dom.SetAttr(img, "height", strconv.Itoa(info.Height))
		}
	}
	return nil
}

func resourceTitle(img *html.Node) string {
	res := dom.Attr(img, "resource")
	return strings.TrimPrefix(res, "./")
}
