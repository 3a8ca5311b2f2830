package search

import "testing"

func TestCompanyFromHeadline(t *testing.T) {
	tests := []struct {
		name     string
		headline string
		want     string
	}{
		{"at separator", "VP of Sales at Amazon", "Amazon"},
		{"at separator case folded", "Engineering Manager AT Stripe", "Stripe"},
		{"at symbol separator", "Director @ Microsoft", "Microsoft"},
		{"last separator wins", "Looking at opportunities at Google", "Google"},
		{"seniority keyword prefix", "CEO Acme Corp", "Acme Corp"},
		{"founder prefix", "Founder BrightPath", "BrightPath"},
		{"trailing pipe trimmed", "Head of Growth at Shopify | ex-Meta", "Shopify"},
		{"trailing dot trimmed", "CTO at Klarna · Stockholm", "Klarna"},
		{"trailing dash trimmed", "VP Engineering at Datadog - hiring!", "Datadog"},
		{"trailing comma trimmed", "Partner at Sequoia, Menlo Park", "Sequoia"},
		{"no rule matches", "Software Engineer", ""},
		{"plain sentence", "Helping teams ship faster", ""},
		{"empty headline", "", ""},
		{"keyword alone", "Director", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompanyFromHeadline(tt.headline); got != tt.want {
				t.Errorf("CompanyFromHeadline(%q) = %q, want %q", tt.headline, got, tt.want)
			}
		})
	}
}
