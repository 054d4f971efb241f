package models

import "testing"

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
	}{
		{name: "in range", page: 2, limit: 25, wantPage: 2, wantLimit: 25},
		{name: "absent page and limit", page: 0, limit: 0, wantPage: 1, wantLimit: DefaultLimit},
		{name: "negative page", page: -3, limit: 10, wantPage: 1, wantLimit: 10},
		{name: "limit above max", page: 1, limit: 999, wantPage: 1, wantLimit: MaxLimit},
		{name: "negative limit", page: 1, limit: -1, wantPage: 1, wantLimit: DefaultLimit},
		{name: "limit at bounds", page: 1, limit: 50, wantPage: 1, wantLimit: 50},
		{name: "limit at lower bound", page: 1, limit: 1, wantPage: 1, wantLimit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePage(tt.page, tt.limit)
			if got.Page != tt.wantPage {
				t.Errorf("Page = %d, want %d", got.Page, tt.wantPage)
			}
			if got.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", got.Limit, tt.wantLimit)
			}
		})
	}
}
