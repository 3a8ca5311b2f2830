package profile

import (
	"context"
	"strings"

	"salespilot/prospector-service/internal/browser"
)

// fieldStrategy is one way of pulling a logical field off a profile page.
// Each field carries an ordered cascade — structural selector first, then
// positional heuristics, then full-page text scans — and the first
// non-empty, plausible result wins. An exhausted cascade leaves the field
// empty; extraction continues.
type fieldStrategy struct {
	name string
	js   string
}

const cleanJS = `const clean = s => (s || '').replace(/\u00a0/g, ' ').replace(/\s+/g, ' ').trim();`

var nameStrategies = []fieldStrategy{
	{"top-card-heading", `(() => { ` + cleanJS + `
		const el = document.querySelector('main h1, .pv-top-card h1, [class*="top-card"] h1');
		return el ? clean(el.textContent) : ''; })()`},
	{"document-title", `(() => { ` + cleanJS + `
		const t = clean(document.title);
		const cut = t.search(/[|\-–]/);
		return cut > 0 ? clean(t.slice(0, cut)) : t; })()`},
}

var headlineStrategies = []fieldStrategy{
	{"top-card-headline", `(() => { ` + cleanJS + `
		const el = document.querySelector('.text-body-medium.break-words, .pv-top-card [class*="headline"], main h1 + div');
		return el ? clean(el.textContent) : ''; })()`},
	{"h1-sibling", `(() => { ` + cleanJS + `
		const h1 = document.querySelector('main h1');
		const sib = h1 && h1.parentElement ? h1.parentElement.nextElementSibling : null;
		return sib ? clean(sib.textContent) : ''; })()`},
}

var aboutStrategies = []fieldStrategy{
	{"about-section", `(() => { ` + cleanJS + `
		const anchor = document.querySelector('#about');
		const sec = anchor ? anchor.closest('section') : document.querySelector('section[data-section="summary"]');
		if (!sec) return '';
		const body = sec.querySelector('.inline-show-more-text, [class*="display-flex"] span[aria-hidden="true"]');
		return clean((body || sec).textContent); })()`},
	{"summary-heading-scan", `(() => { ` + cleanJS + `
		for (const h of document.querySelectorAll('main section h2')) {
			if (/^(about|summary)$/i.test(clean(h.textContent))) {
				return clean(h.closest('section').textContent).replace(/^(About|Summary)\s*/i, '');
			}
		}
		return ''; })()`},
}

var locationStrategies = []fieldStrategy{
	{"top-card-location", `(() => { ` + cleanJS + `
		const el = document.querySelector('.pv-top-card [class*="text-body-small"], main [class*="top-card"] span.text-body-small');
		return el ? clean(el.textContent) : ''; })()`},
	{"contact-info-sibling", `(() => { ` + cleanJS + `
		const link = document.querySelector('a[href*="contact-info"]');
		const sib = link ? link.parentElement.previousElementSibling : null;
		return sib ? clean(sib.textContent) : ''; })()`},
}

var educationStrategies = []fieldStrategy{
	{"education-section", `(() => { ` + cleanJS + `
		const anchor = document.querySelector('#education');
		const sec = anchor ? anchor.closest('section') : null;
		if (!sec) return '';
		const first = sec.querySelector('li span[aria-hidden="true"], li a');
		return first ? clean(first.textContent) : ''; })()`},
	{"education-heading-scan", `(() => { ` + cleanJS + `
		for (const h of document.querySelectorAll('main section h2')) {
			if (/education/i.test(clean(h.textContent))) {
				const li = h.closest('section').querySelector('li');
				const leaf = li ? li.querySelector('span[aria-hidden="true"]') : null;
				return leaf ? clean(leaf.textContent) : '';
			}
		}
		return ''; })()`},
}

var skillsStrategies = []fieldStrategy{
	{"skills-section", `(() => { ` + cleanJS + `
		const anchor = document.querySelector('#skills');
		const sec = anchor ? anchor.closest('section') : null;
		if (!sec) return [];
		const out = [];
		for (const el of sec.querySelectorAll('li span[aria-hidden="true"]')) {
			const t = clean(el.textContent);
			if (t) out.push(t);
		}
		return out; })()`},
	{"skills-heading-scan", `(() => { ` + cleanJS + `
		for (const h of document.querySelectorAll('main section h2')) {
			if (/skills|interests/i.test(clean(h.textContent))) {
				const out = [];
				for (const el of h.closest('section').querySelectorAll('li')) {
					const t = clean(el.textContent);
					if (t && t.length < 80) out.push(t);
				}
				return out;
			}
		}
		return []; })()`},
}

var postsStrategies = []fieldStrategy{
	{"activity-section", `(() => { ` + cleanJS + `
		const anchor = document.querySelector('#content_collections, #recent_activity, [id*="activity"]');
		const sec = anchor ? anchor.closest('section') : null;
		if (!sec) return [];
		const out = [];
		for (const el of sec.querySelectorAll('li .break-words span[aria-hidden="true"], li [class*="commentary"]')) {
			const t = clean(el.textContent);
			if (t) out.push(t);
		}
		return out; })()`},
}

// rawExperience mirrors one position row before validation.
type rawExperience struct {
	Title   string `json:"title"`
	Company string `json:"company"`
}

var experienceStrategies = []fieldStrategy{
	{"experience-section", `(() => { ` + cleanJS + `
		const anchor = document.querySelector('#experience');
		const sec = anchor ? anchor.closest('section') : null;
		if (!sec) return [];
		const out = [];
		for (const li of sec.querySelectorAll(':scope > div > ul > li, :scope ul > li')) {
			const spans = li.querySelectorAll('span[aria-hidden="true"]');
			if (!spans.length) continue;
			const title = clean(spans[0].textContent);
			let company = spans.length > 1 ? clean(spans[1].textContent) : '';
			company = company.split('·')[0].trim();
			if (title) out.push({ title, company });
		}
		return out; })()`},
	{"experience-heading-scan", `(() => { ` + cleanJS + `
		for (const h of document.querySelectorAll('main section h2')) {
			if (/experience/i.test(clean(h.textContent))) {
				const out = [];
				for (const li of h.closest('section').querySelectorAll('li')) {
					const leaf = li.querySelector('span[aria-hidden="true"]');
					if (leaf) out.push({ title: clean(leaf.textContent), company: '' });
				}
				return out;
			}
		}
		return []; })()`},
}

// contactPanelTextJS reads the whole visible text of the opened contact
// overlay; the email-shaped token is picked out Go-side.
const contactPanelTextJS = `(() => {
	const panel = document.querySelector('.artdeco-modal, [class*="contact-info"], section.pv-contact-info');
	return panel ? (panel.innerText || panel.textContent || '') : '';
})()`

// firstText evaluates a cascade until a strategy yields a non-empty value
// the accept filter keeps. Evaluation errors count as empty results.
func firstText(ctx context.Context, p browser.Page, cascade []fieldStrategy, accept func(string) bool) string {
	for _, st := range cascade {
		var v string
		if err := p.Eval(ctx, st.js, &v); err != nil {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if accept != nil && !accept(v) {
			continue
		}
		return v
	}
	return ""
}

// firstList evaluates a cascade until a strategy yields a non-empty list.
func firstList(ctx context.Context, p browser.Page, cascade []fieldStrategy) []string {
	for _, st := range cascade {
		var v []string
		if err := p.Eval(ctx, st.js, &v); err != nil {
			continue
		}
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

// firstExperiences evaluates the experience cascade.
func firstExperiences(ctx context.Context, p browser.Page) []rawExperience {
	for _, st := range experienceStrategies {
		var v []rawExperience
		if err := p.Eval(ctx, st.js, &v); err != nil {
			continue
		}
		if len(v) > 0 {
			return v
		}
	}
	return nil
}

// placeholderNameParts are substrings the site renders instead of a real
// name for private or anonymized profiles. A candidate containing one is
// rejected in favor of the next strategy or the caller's name hint.
var placeholderNameParts = []string{
	"linkedin member",
	"status is offline",
	"status is reachable",
	"sign in",
	"join now",
}

// plausibleName rejects placeholder and privacy-notice candidates.
func plausibleName(s string) bool {
	lower := strings.ToLower(s)
	for _, part := range placeholderNameParts {
		if strings.Contains(lower, part) {
			return false
		}
	}
	return true
}
