package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"salespilot/prospector-service/internal/browser"
	"salespilot/prospector-service/internal/model"
)

// rawCard is the typed intermediate a selector strategy produces for one
// result container. Only URL is mandatory; the rest is best-effort and never
// synthesized by the strategies themselves.
type rawCard struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
	Company  string `json:"company"`
	Avatar   string `json:"avatar"`
}

// pageStrategy is one way of reading result cards off an unversioned results
// page. Strategies are tried in order and the first one yielding at least
// one candidate wins for the whole page — styles are never mixed, which
// avoids duplicate or inconsistent partial rows.
type pageStrategy struct {
	name string
	js   string
}

// The source site has shipped at least three generations of results markup.
// Newest first; the anchor scan is the last-ditch generic fallback.
var defaultPageStrategies = []pageStrategy{
	{
		name: "universal-template",
		js: `(() => {
			const clean = s => (s || '').replace(/\u00a0/g, ' ').replace(/\s+/g, ' ').trim();
			const text = el => el ? clean(el.textContent || '') : '';
			const cards = Array.from(document.querySelectorAll(
				"main [data-view-name='search-entity-result-universal-template'], main [data-chameleon-result-urn]"));
			const out = [];
			for (const card of cards) {
				const isInsight = el => !!el.closest('.entity-result__insights, .reusable-search-simple-insight');
				let a = null;
				for (const cand of card.querySelectorAll("a[href*='/in/']")) {
					if (!isInsight(cand)) { a = cand; break; }
				}
				if (!a) continue;
				let href = a.getAttribute('href') || '';
				try { const u = new URL(href, location.origin); href = u.origin + u.pathname; } catch {}
				const img = card.querySelector('img');
				const sub = card.querySelector("[class*='subtitle']");
				const sec = card.querySelector("[class*='secondary-subtitle']");
				out.push({
					url: href,
					name: text(a.querySelector("span[aria-hidden='true']")) || text(a),
					headline: text(sub),
					location: text(sec),
					summary: text(card.querySelector("p[class*='summary']")),
					company: '',
					avatar: img ? (img.getAttribute('src') || '') : ''
				});
			}
			return out;
		})()`,
	},
	{
		name: "entity-result-list",
		js: `(() => {
			const clean = s => (s || '').replace(/\u00a0/g, ' ').replace(/\s+/g, ' ').trim();
			const text = el => el ? clean(el.textContent || '') : '';
			const cards = Array.from(document.querySelectorAll(
				'main ul.reusable-search__entity-result-list > li, main .entity-result'));
			const out = [];
			for (const card of cards) {
				const a = card.querySelector("a.app-aware-link[href*='/in/'], a[href*='/in/']");
				if (!a) continue;
				let href = a.getAttribute('href') || '';
				try { const u = new URL(href, location.origin); href = u.origin + u.pathname; } catch {}
				const img = card.querySelector('img.presence-entity__image, img');
				out.push({
					url: href,
					name: text(card.querySelector(".entity-result__title-text a span[aria-hidden='true']")) || text(a),
					headline: text(card.querySelector('.entity-result__primary-subtitle')),
					location: text(card.querySelector('.entity-result__secondary-subtitle')),
					summary: text(card.querySelector('p.entity-result__summary--2-lines')),
					company: '',
					avatar: img ? (img.getAttribute('src') || '') : ''
				});
			}
			return out;
		})()`,
	},
	{
		name: "anchor-scan",
		js: `(() => {
			const out = [];
			const seen = new Set();
			for (const a of document.querySelectorAll("main a[href*='/in/']")) {
				let href = a.getAttribute('href') || '';
				try { const u = new URL(href, location.origin); href = u.origin + u.pathname; } catch {}
				if (!href.includes('/in/') || seen.has(href)) continue;
				seen.add(href);
				out.push({ url: href, name: (a.textContent || '').trim(),
					headline: '', location: '', summary: '', company: '', avatar: '' });
			}
			return out;
		})()`,
	},
}

// PageExtractor turns one rendered results page into profile summaries.
type PageExtractor struct {
	strategies []pageStrategy
	baseURL    string
}

// NewPageExtractor returns an extractor with the built-in strategy order.
func NewPageExtractor(baseURL string) *PageExtractor {
	return &PageExtractor{strategies: defaultPageStrategies, baseURL: baseURL}
}

// Extract runs the strategy cascade against the page. An empty slice with a
// nil error means the page genuinely holds no results — a normal exhaustion
// signal, not a failure. An error is returned only when every strategy
// failed to evaluate at all.
func (e *PageExtractor) Extract(ctx context.Context, p browser.Page) ([]model.ProfileSummary, error) {
	var lastErr error
	for _, st := range e.strategies {
		var cards []rawCard
		if err := p.Eval(ctx, st.js, &cards); err != nil {
			lastErr = fmt.Errorf("strategy %s: %w", st.name, err)
			continue
		}
		if len(cards) > 0 {
			return e.normalize(cards), nil
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, nil
}

// normalize converts raw cards into validated summaries: the profile URL and
// derived id are mandatory, everything else is best-effort.
func (e *PageExtractor) normalize(cards []rawCard) []model.ProfileSummary {
	out := make([]model.ProfileSummary, 0, len(cards))
	seen := make(map[string]bool, len(cards))

	for _, c := range cards {
		profileURL := canonicalProfileURL(c.URL, e.baseURL)
		id := model.ProfileIDFromURL(profileURL)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		name := cleanText(c.Name)
		if name == "" {
			name = nameFromSlug(id)
		}

		headline := cleanText(c.Headline)
		company := cleanText(c.Company)
		if company == "" {
			company = CompanyFromHeadline(headline)
		}

		out = append(out, model.ProfileSummary{
			ID:             id,
			Name:           name,
			Headline:       headline,
			Location:       cleanText(c.Location),
			Summary:        cleanText(c.Summary),
			CurrentCompany: company,
			AvatarURL:      strings.TrimSpace(c.Avatar),
			ProfileURL:     profileURL,
		})
	}
	return out
}

// canonicalProfileURL strips tracking query/fragment parts and resolves
// relative profile links against the source base URL.
func canonicalProfileURL(raw, baseURL string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	if u.Host == "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return ""
		}
		u = base.ResolveReference(u)
	}
	s := u.String()
	if !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// cleanText collapses whitespace and non-breaking spaces.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}

// nameFromSlug rebuilds a display name from a profile slug, dropping the
// numeric disambiguation segments the site appends.
func nameFromSlug(slug string) string {
	parts := strings.Split(slug, "-")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" || strings.ContainsAny(p, "0123456789") {
			continue
		}
		kept = append(kept, strings.ToUpper(p[:1])+p[1:])
	}
	return strings.Join(kept, " ")
}
