package option

import "testing"

func TestWithQuerySortByRejectsUnknownColumn(t *testing.T) {
	sort := WithQuerySortBy("password", "asc", map[string]bool{"name": true})
	if sort.Column != "" {
		t.Fatalf("expected empty column, got %q", sort.Column)
	}
}

func TestWithQuerySortByDefaultsToDescending(t *testing.T) {
	sort := WithQuerySortBy(" Created_At ", "", map[string]bool{"created_at": true})
	if sort.Column != "created_at" {
		t.Fatalf("expected created_at, got %q", sort.Column)
	}
	if !sort.Desc {
		t.Fatalf("expected descending order")
	}

	sort = WithQuerySortBy("created_at", "ASC", map[string]bool{"created_at": true})
	if sort.Desc {
		t.Fatalf("expected ascending order")
	}
}
