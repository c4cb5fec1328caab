package tui

import (
	"strings"

	"github.com/jmylchreest/bizdesk/internal/model"
)

// filterFields are the client fields usable in "field=value" search terms.
var filterFields = map[string]func(model.Client) []string{
	"name":    func(c model.Client) []string { return []string{c.Name} },
	"email":   func(c model.Client) []string { return []string{c.Email} },
	"company": func(c model.Client) []string { return []string{c.Company} },
	"phone":   func(c model.Client) []string { return []string{c.Phone} },
	"tag":     func(c model.Client) []string { return c.Tags },
}

// isFilterExpression reports whether query uses "field=value" terms
// rather than plain text.
func isFilterExpression(query string) bool {
	for _, term := range strings.Split(query, ",") {
		field, _, ok := strings.Cut(strings.TrimSpace(term), "=")
		if !ok {
			return false
		}
		if _, known := filterFields[strings.ToLower(strings.TrimSpace(field))]; !known {
			return false
		}
	}
	return strings.TrimSpace(query) != ""
}

// matchClient reports whether c satisfies query. Filter expressions match
// every term exactly (case-insensitive); plain text matches any field by substring.
func matchClient(c model.Client, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return true
	}

	if isFilterExpression(query) {
		for _, term := range strings.Split(query, ",") {
			field, value, _ := strings.Cut(strings.TrimSpace(term), "=")
			values := filterFields[strings.ToLower(strings.TrimSpace(field))](c)
			if !containsFold(values, strings.TrimSpace(value)) {
				return false
			}
		}
		return true
	}

	q := strings.ToLower(query)
	haystack := strings.ToLower(strings.Join(append([]string{c.Name, c.Email, c.Company, c.Phone}, c.Tags...), " "))
	return strings.Contains(haystack, q)
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// filterClients returns the clients matching query, preserving order.
func filterClients(clients []model.Client, query string) []model.Client {
	if strings.TrimSpace(query) == "" {
		return clients
	}
	var out []model.Client
	for _, c := range clients {
		if matchClient(c, query) {
			out = append(out, c)
		}
	}
	return out
}
