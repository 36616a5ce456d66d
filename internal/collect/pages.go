package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tanush-yadav/automate-founder-flow/internal/domain"
)

// jobPage holds the facts extracted from one job-listing page.
type jobPage struct {
	JobURL      string
	RoleTitle   string
	CompanyName string
	CompanyURL  string
	Description string
}

// companyPage holds the facts extracted from one company page.
type companyPage struct {
	CompanyURL  string
	CompanyName string
	Founders    []domain.Founder
}

func (c *Collector) fetchDoc(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", rawURL, err)
	}
	defer res.Body.Close()

	// A 404 or any error status short-circuits this page; the caller keeps
	// whatever fields it already has.
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("page status %d: %s", res.StatusCode, rawURL)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// scrapeJobPage extracts role, company and description facts from a job
// listing. Every field is best-effort; the returned struct is valid even
// when most selectors miss.
func (c *Collector) scrapeJobPage(ctx context.Context, rawURL string) (jobPage, error) {
	jp := jobPage{JobURL: rawURL}

	doc, err := c.fetchDoc(ctx, rawURL)
	if err != nil {
		return jp, err
	}

	// The header reads like "Backend Engineer at Acme (S24)".
	if full := cleanText(doc.Find(".company-name").First().Text()); full != "" {
		if role, company, ok := splitRoleAtCompany(full); ok {
			jp.RoleTitle = role
			jp.CompanyName = company
		}
	}
	if jp.RoleTitle == "" {
		jp.RoleTitle = cleanText(doc.Find("h1").First().Text())
	}

	if href, ok := doc.Find(`a[href*="/companies/"]`).First().Attr("href"); ok {
		jp.CompanyURL = absoluteURL(rawURL, href)
	}

	// Pull the named content sections; fall back to the whole <main> when
	// the page structure is unrecognized.
	var sections []string
	for _, heading := range []string{"About the role", "Responsibilities", "Requirements"} {
		if content := sectionAfterHeading(doc, heading); content != "" {
			sections = append(sections, heading+"\n\n"+content)
		}
	}
	if len(sections) > 0 {
		jp.Description = strings.Join(sections, "\n\n")
	} else {
		jp.Description = cleanText(doc.Find("main").First().Text())
	}

	return jp, nil
}

// scrapeCompanyPage extracts the company name and founder candidates. The
// Founders section is the primary source; when the heading is missing, any
// LinkedIn link whose surrounding text mentions founder/ceo/chief counts.
func (c *Collector) scrapeCompanyPage(ctx context.Context, rawURL string) (companyPage, error) {
	cp := companyPage{CompanyURL: rawURL}

	doc, err := c.fetchDoc(ctx, rawURL)
	if err != nil {
		return cp, err
	}

	cp.CompanyName = cleanText(doc.Find("h1").First().Text())

	var scope *goquery.Selection
	doc.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.EqualFold(cleanText(h.Text()), "Founders") {
			scope = h.Next()
			return false
		}
		return true
	})

	if scope != nil && scope.Length() > 0 {
		cp.Founders = foundersFromScope(scope)
	}
	if len(cp.Founders) == 0 {
		cp.Founders = foundersFromLinks(doc.Selection)
	}

	return cp, nil
}

func foundersFromScope(scope *goquery.Selection) []domain.Founder {
	var out []domain.Founder
	seen := map[string]bool{}

	scope.Find(`a[href*="linkedin.com"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || seen[href] {
			return
		}
		seen[href] = true

		profile := profileContainer(link)
		f := domain.Founder{
			LinkedInURL: href,
			Name:        founderName(profile),
			Title:       founderTitle(profile),
		}
		if f.Title == "" {
			f.Title = "Co-founder"
		}
		out = append(out, f)
	})

	return out
}

func foundersFromLinks(root *goquery.Selection) []domain.Founder {
	var out []domain.Founder
	seen := map[string]bool{}

	root.Find(`a[href*="linkedin.com"]`).Each(func(_ int, link *goquery.Selection) {
		href, ok := link.Attr("href")
		if !ok || seen[href] {
			return
		}

		// Only keep links whose neighborhood talks about founders.
		ctx := link
		founderish := false
		for i := 0; i < 3 && ctx.Length() > 0; i++ {
			ctx = ctx.Parent()
			if containsFounderTerm(ctx.Text()) {
				founderish = true
				break
			}
		}
		if !founderish {
			return
		}
		seen[href] = true

		profile := profileContainer(link)
		f := domain.Founder{
			LinkedInURL: href,
			Name:        founderName(profile),
			Title:       founderTitle(profile),
		}
		if f.Title == "" {
			f.Title = "Co-founder"
		}
		out = append(out, f)
	})

	return out
}

// profileContainer climbs from a LinkedIn link to the element that likely
// wraps the whole founder card (name, title, photo, link).
func profileContainer(link *goquery.Selection) *goquery.Selection {
	el := link
	for i := 0; i < 3; i++ {
		parent := el.Parent()
		if parent.Length() == 0 {
			break
		}
		el = parent
		if el.Children().Length() >= 3 {
			break
		}
	}
	return el
}

func founderName(profile *goquery.Selection) string {
	name := ""
	profile.Find("h3, h4, strong, b, p").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := cleanText(el.Text())
		if text != "" && len(text) < 50 && !strings.Contains(strings.ToLower(text), "founder") {
			name = text
			return false
		}
		return true
	})
	return name
}

func founderTitle(profile *goquery.Selection) string {
	title := ""
	profile.Find("p, div").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		text := cleanText(el.Text())
		if text != "" && containsFounderTerm(text) && len(text) < 80 {
			title = text
			return false
		}
		return true
	})
	return title
}

func containsFounderTerm(s string) bool {
	l := strings.ToLower(s)
	return strings.Contains(l, "founder") ||
		strings.Contains(l, "ceo") ||
		strings.Contains(l, "chief")
}

// splitRoleAtCompany parses "Role at Company (S24)" headers, dropping the
// batch annotation.
func splitRoleAtCompany(full string) (role, company string, ok bool) {
	idx := strings.Index(full, " at ")
	if idx < 0 {
		return "", "", false
	}
	role = strings.TrimSpace(full[:idx])
	company = strings.TrimSpace(full[idx+len(" at "):])
	if p := strings.Index(company, " ("); p >= 0 {
		company = strings.TrimSpace(company[:p])
	}
	return role, company, role != "" || company != ""
}

func sectionAfterHeading(doc *goquery.Document, heading string) string {
	content := ""
	doc.Find("h2, h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if strings.EqualFold(cleanText(h.Text()), heading) {
			content = cleanText(h.Next().Text())
			return false
		}
		return true
	})
	return content
}

func absoluteURL(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
