package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cookbookapp/cookbook-server/internal/store"
)

// insertTestUser creates a user row to satisfy foreign keys in label and
// recipe tests.
func insertTestUser(t *testing.T, s *Store, id, email string) {
	t.Helper()
	if err := s.CreateUser(context.Background(), makeTestUser(id, email)); err != nil {
		t.Fatalf("insert test user %s: %v", id, err)
	}
}

func TestFindOrCreateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-t1", "tags@example.com")

	// First call should create a new tag.
	tag1, created, err := s.FindOrCreateTag(ctx, "user-t1", "Vegan")
	if err != nil {
		t.Fatalf("FindOrCreateTag (create): %v", err)
	}
	if !created {
		t.Error("expected created=true for new tag")
	}
	if tag1.ID == 0 {
		t.Error("expected non-zero ID for created tag")
	}
	if tag1.Name != "Vegan" {
		t.Errorf("Name: got %q, want %q", tag1.Name, "Vegan")
	}
	if tag1.CreatedAt.IsZero() {
		t.Error("CreatedAt: expected non-zero")
	}

	// Second call with the same name should find the existing tag.
	tag2, created2, err := s.FindOrCreateTag(ctx, "user-t1", "Vegan")
	if err != nil {
		t.Fatalf("FindOrCreateTag (find): %v", err)
	}
	if created2 {
		t.Error("expected created=false for existing tag")
	}
	if tag2.ID != tag1.ID {
		t.Errorf("expected same ID %d, got %d", tag1.ID, tag2.ID)
	}
}

func TestFindOrCreateTag_ScopedPerUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-s1", "s1@example.com")
	insertTestUser(t, s, "user-s2", "s2@example.com")

	// Same name under two owners yields two independent rows.
	a, _, err := s.FindOrCreateTag(ctx, "user-s1", "Quick")
	if err != nil {
		t.Fatalf("FindOrCreateTag user-s1: %v", err)
	}
	b, _, err := s.FindOrCreateTag(ctx, "user-s2", "Quick")
	if err != nil {
		t.Fatalf("FindOrCreateTag user-s2: %v", err)
	}
	if a.ID == b.ID {
		t.Errorf("expected distinct IDs per owner, both got %d", a.ID)
	}
}

func TestFindOrCreateTag_Concurrent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-c1", "c1@example.com")

	// Race several goroutines on the same key. At most one row may exist
	// afterward and every caller must see the same ID.
	const n = 8
	ids := make([]int64, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag, _, err := s.FindOrCreateTag(ctx, "user-c1", "Dessert")
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = tag.ID
		}()
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("goroutine %d: got ID %d, want %d", i, ids[i], ids[0])
		}
	}

	tags, err := s.ListTagsForUser(ctx, "user-c1")
	if err != nil {
		t.Fatalf("ListTagsForUser: %v", err)
	}
	if len(tags) != 1 {
		t.Errorf("expected exactly 1 tag row, got %d", len(tags))
	}
}

func TestListTagsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-l1", "l1@example.com")
	insertTestUser(t, s, "user-l2", "l2@example.com")

	for _, name := range []string{"Zesty", "Asian", "Mexican"} {
		if _, _, err := s.FindOrCreateTag(ctx, "user-l1", name); err != nil {
			t.Fatalf("FindOrCreateTag(%s): %v", name, err)
		}
	}
	// Another user's tag must not leak into the listing.
	if _, _, err := s.FindOrCreateTag(ctx, "user-l2", "Hidden"); err != nil {
		t.Fatalf("FindOrCreateTag other user: %v", err)
	}

	got, err := s.ListTagsForUser(ctx, "user-l1")
	if err != nil {
		t.Fatalf("ListTagsForUser: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(got))
	}

	// Verify sorted by name ASC.
	want := []string{"Asian", "Mexican", "Zesty"}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("item %d: got name %q, want %q", i, got[i].Name, name)
		}
	}
}

func TestListTagsForUser_Empty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-empty", "empty@example.com")

	got, err := s.ListTagsForUser(ctx, "user-empty")
	if err != nil {
		t.Fatalf("ListTagsForUser: %v", err)
	}
	if got == nil {
		t.Fatal("expected non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected 0 tags, got %d", len(got))
	}
}

func TestFindOrCreateIngredient(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-i1", "i1@example.com")

	ing1, created, err := s.FindOrCreateIngredient(ctx, "user-i1", "Salt")
	if err != nil {
		t.Fatalf("FindOrCreateIngredient (create): %v", err)
	}
	if !created {
		t.Error("expected created=true for new ingredient")
	}

	ing2, created2, err := s.FindOrCreateIngredient(ctx, "user-i1", "Salt")
	if err != nil {
		t.Fatalf("FindOrCreateIngredient (find): %v", err)
	}
	if created2 {
		t.Error("expected created=false for existing ingredient")
	}
	if ing2.ID != ing1.ID {
		t.Errorf("expected same ID %d, got %d", ing1.ID, ing2.ID)
	}

	// Tags and ingredients live in separate tables: the same name under
	// the same owner is fine across kinds.
	if _, _, err := s.FindOrCreateTag(ctx, "user-i1", "Salt"); err != nil {
		t.Fatalf("FindOrCreateTag with same name: %v", err)
	}
}

func TestSetAndGetRecipeTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-rt1", "rt1@example.com")

	recipe := makeTestRecipe("user-rt1", "Pad Thai")
	if err := s.CreateRecipe(ctx, recipe); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	tagA, _, err := s.FindOrCreateTag(ctx, "user-rt1", "Thai")
	if err != nil {
		t.Fatalf("FindOrCreateTag A: %v", err)
	}
	tagB, _, err := s.FindOrCreateTag(ctx, "user-rt1", "Noodles")
	if err != nil {
		t.Fatalf("FindOrCreateTag B: %v", err)
	}

	if err := s.SetRecipeTags(ctx, recipe.ID, []int64{tagA.ID, tagB.ID}); err != nil {
		t.Fatalf("SetRecipeTags: %v", err)
	}

	got, err := s.GetRecipeTags(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeTags: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(got))
	}
	// Ordered by name: Noodles before Thai.
	if got[0].Name != "Noodles" || got[1].Name != "Thai" {
		t.Errorf("got names %q, %q; want Noodles, Thai", got[0].Name, got[1].Name)
	}

	// Replace with a single tag to verify the old links are removed.
	if err := s.SetRecipeTags(ctx, recipe.ID, []int64{tagA.ID}); err != nil {
		t.Fatalf("SetRecipeTags (replace): %v", err)
	}
	got, err = s.GetRecipeTags(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeTags after replace: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 tag after replace, got %d", len(got))
	}
	if got[0].ID != tagA.ID {
		t.Errorf("tag after replace: got ID %d, want %d", got[0].ID, tagA.ID)
	}

	// Clearing with an empty set removes all links but keeps the labels.
	if err := s.SetRecipeTags(ctx, recipe.ID, nil); err != nil {
		t.Fatalf("SetRecipeTags (clear): %v", err)
	}
	got, err = s.GetRecipeTags(ctx, recipe.ID)
	if err != nil {
		t.Fatalf("GetRecipeTags after clear: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected 0 tags after clear, got %d", len(got))
	}
	tags, err := s.ListTagsForUser(ctx, "user-rt1")
	if err != nil {
		t.Fatalf("ListTagsForUser: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("expected labels to survive unlinking, got %d", len(tags))
	}
}

func TestGetLabelByName_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "user-nf", "nf@example.com")

	_, err := s.getLabelByName(ctx, tagTable, "user-nf", "nope")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
