// Package browsertest provides a scripted fake of the driven browser for
// pipeline tests.
package browsertest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"salespilot/prospector-service/internal/browser"
	"salespilot/prospector-service/internal/model"
)

// Script configures what the fake page serves per navigation.
type Script struct {
	// PageRows maps results-page number (1-based) to the raw card rows the
	// first extraction strategy returns. A missing page serves no rows.
	PageRows map[int][]map[string]string

	// PageErr maps page number to a navigation/extraction error.
	PageErr map[int]error

	// Fields maps a field-strategy marker (a substring of the JS snippet)
	// to the value served when a snippet containing it is evaluated.
	// Values are marshalled into the Eval output, so strings, []string and
	// []map[string]string all work.
	Fields map[string]any

	// LocationOverride, when set, is reported as the current URL instead
	// of the last navigated one.
	LocationOverride string
}

// Page is a fake browser.Page serving scripted content.
type Page struct {
	mu sync.Mutex

	script  *Script
	current string
	page    int

	Navigations []string
	Clicked     []string
	Waited      []string
	Closed      bool
}

// Opener hands out fake pages and records acquisition/release pairing.
type Opener struct {
	mu sync.Mutex

	Script  *Script
	OpenErr error

	Opened   int
	Released int
	LastPage *Page
	Sessions []*model.Session
}

func (o *Opener) NewPage(_ context.Context, sess *model.Session) (browser.Page, func(), error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.OpenErr != nil {
		return nil, nil, o.OpenErr
	}
	o.Opened++
	o.Sessions = append(o.Sessions, sess)
	p := &Page{script: o.Script, page: 1}
	o.LastPage = p
	return p, func() {
		o.mu.Lock()
		o.Released++
		o.mu.Unlock()
		p.mu.Lock()
		p.Closed = true
		p.mu.Unlock()
	}, nil
}

func (p *Page) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Navigations = append(p.Navigations, url)
	p.current = url
	p.page = pageNumber(url)
	if err := p.script.PageErr[p.page]; err != nil {
		return err
	}
	return nil
}

func (p *Page) Location(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.script.LocationOverride != "" {
		return p.script.LocationOverride, nil
	}
	return p.current, nil
}

func (p *Page) Eval(_ context.Context, js string, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.script.PageErr[p.page]; err != nil {
		return err
	}

	for marker, value := range p.script.Fields {
		if marker != "" && strings.Contains(js, marker) {
			return roundTrip(value, out)
		}
	}

	// Default: treat the eval as a results-page card extraction.
	rows := p.script.PageRows[p.page]
	return roundTrip(rows, out)
}

func (p *Page) WaitVisible(_ context.Context, sel string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Waited = append(p.Waited, sel)
	return nil
}

func (p *Page) Click(_ context.Context, sel string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Clicked = append(p.Clicked, sel)
	return nil
}

// roundTrip marshals value through JSON into out, mimicking how chromedp
// unmarshals JS evaluation results.
func roundTrip(value, out any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("browsertest marshal: %w", err)
	}
	return json.Unmarshal(raw, out)
}

// pageNumber pulls the page query parameter out of a results URL; absent or
// malformed values count as page 1.
func pageNumber(rawURL string) int {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 1
	}
	n, err := strconv.Atoi(u.Query().Get("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}
