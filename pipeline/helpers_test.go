package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/use-agent/bondscrape/config"
)

const (
	baseURL  = "https://www.borsaitaliana.it/borsa/obbligazioni/mot/btp/"
	grossKey = "Rendimento effettivo a scadenza lordo"
	netKey   = "Rendimento effettivo a scadenza netto"
)

// fakeFetcher serves canned pages and records every requested URL.
type fakeFetcher struct {
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) FetchHTML(_ context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	if err, ok := f.errs[url]; ok {
		return "", err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("unexpected url %s", url)
	}
	return page, nil
}

func testConfig(outDir string) *config.Config {
	return &config.Config{
		Listing: config.ListingConfig{
			URLs:           []string{baseURL},
			FirstPage:      1,
			LastPage:       8,
			PagePattern:    "lista.html?&page=%d",
			DetailPattern:  "scheda/%s.html",
			ContainerClass: "l-box",
			TableClass:     "m-table",
		},
		Filter: config.FilterConfig{
			IDColumn:      "ISIN",
			PriceColumn:   "ULTIMO",
			MaxPrice:      100,
			GrossYieldKey: grossKey,
			NetYieldKey:   netKey,
			MinYield:      3.0,
			YieldLookup:   config.YieldLookupIndex,
			YieldIndex:    6,
		},
		Output: config.OutputConfig{
			Dir:    outDir,
			Prefix: "borsaitaliana_",
		},
	}
}

// listingHTML renders a listing page whose first table has ISIN and ULTIMO
// columns, followed by an unrelated table.
func listingHTML(rows ...[2]string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><table><thead><tr><th>ISIN</th><th>ULTIMO</th></tr></thead><tbody>`)
	for _, r := range rows {
		fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td></tr>`, r[0], r[1])
	}
	sb.WriteString(`</tbody></table><table><tr><th>Pager</th></tr><tr><td>1</td></tr></table></body></html>`)
	return sb.String()
}

// detailHTML renders a detail page whose key/value tables put the yields
// in the table at position (zero-based).
func detailHTML(position int, gross, net string) string {
	var sb strings.Builder
	sb.WriteString(`<html><body><div class="l-box">`)
	for i := 0; i < position; i++ {
		fmt.Fprintf(&sb, `<table class="m-table"><tr><td>Voce %d</td><td>%d</td></tr></table>`, i, i)
	}
	sb.WriteString(`</div><div class="l-box"><table class="m-table">`)
	fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td></tr>`, grossKey, gross)
	fmt.Fprintf(&sb, `<tr><td>%s</td><td>%s</td></tr>`, netKey, net)
	sb.WriteString(`</table></div></body></html>`)
	return sb.String()
}

// eightPages loads 8 listing pages of 3 rows each; only IT0000000104 (99,5)
// and IT0000000602 (87,25) are priced below 100.
func eightPages(f *fakeFetcher) {
	for page := 1; page <= 8; page++ {
		rows := make([][2]string, 0, 3)
		for i := 0; i < 3; i++ {
			isin := fmt.Sprintf("IT0000000%d0%d", page, i+2)
			rows = append(rows, [2]string{isin, "101,30"})
		}
		switch page {
		case 1:
			rows[2] = [2]string{"IT0000000104", "99,5"}
		case 6:
			rows[0] = [2]string{"IT0000000602", "87,25"}
		}
		f.pages[PageURL(baseURL, "lista.html?&page=%d", page)] = listingHTML(rows...)
	}
}
