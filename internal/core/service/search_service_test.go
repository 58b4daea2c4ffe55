package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lifeflow/blood-bank/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub cache
// ---------------------------------------------------------------------------

type stubSearchCache struct {
	pages  map[string][]ports.DonorSummary
	getErr error
	putErr error
	puts   int
}

func newStubSearchCache() *stubSearchCache {
	return &stubSearchCache{pages: make(map[string][]ports.DonorSummary)}
}

func cacheKey(f ports.SearchFilter) string {
	return fmt.Sprintf("%s|%s|%d", f.BloodGroupPattern, f.CityPattern, f.Page)
}

func (c *stubSearchCache) Get(_ context.Context, f ports.SearchFilter) ([]ports.DonorSummary, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	page, ok := c.pages[cacheKey(f)]
	return page, ok, nil
}

func (c *stubSearchCache) Put(_ context.Context, f ports.SearchFilter, page []ports.DonorSummary) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.puts++
	c.pages[cacheKey(f)] = page
	return nil
}

func names(result *ports.SearchResult) []string {
	out := make([]string, len(result.Donors))
	for i, d := range result.Donors {
		out[i] = d.Name
	}
	return out
}

// ---------------------------------------------------------------------------
// Filter compilation
// ---------------------------------------------------------------------------

func TestCompileFilter(t *testing.T) {
	cases := []struct {
		name      string
		in        ports.SearchInput
		wantBlood string
		wantCity  string
		wantPage  int
	}{
		{
			name:      "empty input widens everything",
			in:        ports.SearchInput{},
			wantBlood: `(A|B|O|AB)[+-]`,
			wantCity:  "",
			wantPage:  1,
		},
		{
			name:      "rh sign escaped as literal",
			in:        ports.SearchInput{RhFactor: "+"},
			wantBlood: `(A|B|O|AB)\+`,
			wantPage:  1,
		},
		{
			name:      "blood type uppercased and escaped",
			in:        ports.SearchInput{BloodType: "ab", RhFactor: "-"},
			wantBlood: `AB-`,
			wantPage:  1,
		},
		{
			name:      "city metacharacters neutralized",
			in:        ports.SearchInput{City: "N.C"},
			wantBlood: `(A|B|O|AB)[+-]`,
			wantCity:  `N\.C`,
			wantPage:  1,
		},
		{
			name:     "page below one clamps to one",
			in:       ports.SearchInput{Page: -3},
			wantPage: 1,
		},
		{
			name:     "explicit page kept",
			in:       ports.SearchInput{Page: 4},
			wantPage: 4,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := compileFilter(tc.in)
			if tc.wantBlood != "" && got.BloodGroupPattern != tc.wantBlood {
				t.Errorf("blood pattern: got %q, want %q", got.BloodGroupPattern, tc.wantBlood)
			}
			if got.CityPattern != tc.wantCity {
				t.Errorf("city pattern: got %q, want %q", got.CityPattern, tc.wantCity)
			}
			if got.Page != tc.wantPage {
				t.Errorf("page: got %d, want %d", got.Page, tc.wantPage)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Search behaviour
// ---------------------------------------------------------------------------

func TestSearchService_FilterByBloodType(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "1", "APOS", "A+", "NYC", 5)
	seedDonor(repo, "2", "ANEG", "A-", "NYC", 4)
	seedDonor(repo, "3", "BPOS", "B+", "NYC", 3)
	seedDonor(repo, "4", "ABPOS", "AB+", "NYC", 2)
	seedDonor(repo, "5", "ONEG", "O-", "NYC", 1)
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	result, err := svc.Search(context.Background(), ports.SearchInput{BloodType: "a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := names(result)
	want := []string{"APOS", "ANEG"}
	if len(got) != len(want) {
		t.Fatalf("expected donors %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSearchService_EmptyQueryMatchesAllGroups(t *testing.T) {
	repo := newStubDonorRepo()
	for i, group := range []string{"A+", "A-", "B+", "AB+", "O-"} {
		seedDonor(repo, fmt.Sprintf("%d", i), fmt.Sprintf("D%d", i), group, "NYC", float64(i))
	}
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	result, err := svc.Search(context.Background(), ports.SearchInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Donors) != 5 {
		t.Errorf("expected all 5 donors, got %d", len(result.Donors))
	}
}

func TestSearchService_RhSignMatchedLiterally(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "1", "APOS", "A+", "NYC", 5)
	seedDonor(repo, "2", "ANEG", "A-", "NYC", 4)
	seedDonor(repo, "3", "BPOS", "B+", "NYC", 3)
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	result, err := svc.Search(context.Background(), ports.SearchInput{RhFactor: "+"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A bare "+" is a regex quantifier; escaping must turn it into a literal
	// sign so the negatives are excluded.
	got := names(result)
	want := []string{"APOS", "BPOS"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSearchService_CityIsCaseInsensitiveSubstring(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "1", "JANE", "A+", "NEW YORK", 5)
	seedDonor(repo, "2", "BOB", "A+", "BOSTON", 4)
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	result, err := svc.Search(context.Background(), ports.SearchInput{City: "york"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Donors) != 1 || result.Donors[0].Name != "JANE" {
		t.Errorf("expected only JANE, got %v", names(result))
	}
}

func TestSearchService_CityMetacharactersDoNotWiden(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "1", "JANE", "A+", "NYC", 5)
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	// "N.C" would match "NYC" if the dot stayed a wildcard.
	result, err := svc.Search(context.Background(), ports.SearchInput{City: "N.C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Donors) != 0 {
		t.Errorf("escaped city query must not match, got %v", names(result))
	}
}

func TestSearchService_Pagination(t *testing.T) {
	repo := newStubDonorRepo()
	for i := 1; i <= 40; i++ {
		seedDonor(repo, fmt.Sprintf("%03d", i), fmt.Sprintf("D%03d", i), "O+", "NYC", float64(i))
	}
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	cases := []struct {
		page      int
		wantCount int
	}{
		{1, 18},
		{2, 18},
		{3, 4},
		{4, 0},
		{0, 18}, // defaults to page 1
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("page %d", tc.page), func(t *testing.T) {
			result, err := svc.Search(context.Background(), ports.SearchInput{Page: tc.page})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(result.Donors) != tc.wantCount {
				t.Errorf("expected %d donors, got %d", tc.wantCount, len(result.Donors))
			}
		})
	}

	// Highest contributors come first.
	first, err := svc.Search(context.Background(), ports.SearchInput{Page: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Donors[0].Amount != 40 {
		t.Errorf("expected top donor amount 40, got %v", first.Donors[0].Amount)
	}
	for i := 1; i < len(first.Donors); i++ {
		if first.Donors[i].Amount > first.Donors[i-1].Amount {
			t.Fatalf("amounts not non-increasing at position %d", i)
		}
	}
}

func TestSearchService_TieBreakByPhone(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "222", "B", "O+", "NYC", 7)
	seedDonor(repo, "111", "A", "O+", "NYC", 7)
	seedDonor(repo, "333", "C", "O+", "NYC", 7)
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	result, err := svc.Search(context.Background(), ports.SearchInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"111", "222", "333"}
	for i, w := range want {
		if result.Donors[i].Phone != w {
			t.Errorf("position %d: expected phone %q, got %q", i, w, result.Donors[i].Phone)
		}
	}
}

func TestSearchService_CacheHitSkipsStore(t *testing.T) {
	repo := newStubDonorRepo()
	cache := newStubSearchCache()
	svc := NewSearchService(repo, cache, discardLogger)

	cached := []ports.DonorSummary{{Name: "CACHED", BloodGroup: "A+", City: "NYC", Phone: "555", Amount: 9}}
	cache.pages[cacheKey(compileFilter(ports.SearchInput{BloodType: "A"}))] = cached

	result, err := svc.Search(context.Background(), ports.SearchInput{BloodType: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.searchCalls != 0 {
		t.Errorf("cache hit must not query the store, got %d calls", repo.searchCalls)
	}
	if len(result.Donors) != 1 || result.Donors[0].Name != "CACHED" {
		t.Errorf("expected cached page, got %v", names(result))
	}
}

func TestSearchService_CacheMissPopulatesCache(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "555", "JANE", "A+", "NYC", 5)
	cache := newStubSearchCache()
	svc := NewSearchService(repo, cache, discardLogger)

	if _, err := svc.Search(context.Background(), ports.SearchInput{BloodType: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.puts != 1 {
		t.Errorf("expected 1 cache write after a miss, got %d", cache.puts)
	}
}

func TestSearchService_CacheErrorsDoNotFailSearch(t *testing.T) {
	repo := newStubDonorRepo()
	seedDonor(repo, "555", "JANE", "A+", "NYC", 5)
	cache := newStubSearchCache()
	cache.getErr = errors.New("redis down")
	cache.putErr = errors.New("redis down")
	svc := NewSearchService(repo, cache, discardLogger)

	result, err := svc.Search(context.Background(), ports.SearchInput{BloodType: "A"})
	if err != nil {
		t.Fatalf("cache failure must not fail the search: %v", err)
	}
	if len(result.Donors) != 1 {
		t.Errorf("expected the store result, got %v", names(result))
	}
}

func TestSearchService_StoreError(t *testing.T) {
	repo := newStubDonorRepo()
	repo.searchErr = errors.New("db unavailable")
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	if _, err := svc.Search(context.Background(), ports.SearchInput{}); err == nil {
		t.Fatal("expected error when the store fails, got nil")
	}
}

func TestSearchService_IdentifiedFlagThreaded(t *testing.T) {
	repo := newStubDonorRepo()
	svc := NewSearchService(repo, newStubSearchCache(), discardLogger)

	for _, identified := range []bool{true, false} {
		result, err := svc.Search(context.Background(), ports.SearchInput{Identified: identified})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Identified != identified {
			t.Errorf("expected Identified=%v threaded through, got %v", identified, result.Identified)
		}
	}
}
