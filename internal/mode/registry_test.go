package mode

import "testing"

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()

	if err := r.Validate(); err != nil {
		t.Fatalf("default registry should validate: %v", err)
	}
	if got := r.Category("get_node"); got != CategoryLive {
		t.Errorf("get_node category = %s, want %s", got, CategoryLive)
	}
	if got := r.Category("search_drupal_functions"); got != CategoryDocs {
		t.Errorf("search_drupal_functions category = %s, want %s", got, CategoryDocs)
	}
	if got := r.Category("never_registered"); got != CategoryHybrid {
		t.Errorf("unknown tool category = %s, want %s", got, CategoryHybrid)
	}
}

func TestRegistrySetsAreDisjoint(t *testing.T) {
	// One map per name makes overlap impossible, but the source lists
	// could still repeat a name across categories; catch that here.
	seen := make(map[string]bool, len(liveTools))
	for _, name := range liveTools {
		seen[name] = true
	}
	for _, name := range docsTools {
		if seen[name] {
			t.Errorf("tool %s appears in both the live and docs lists", name)
		}
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register("custom_tool", CategoryDocs); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got := r.Category("custom_tool"); got != CategoryDocs {
		t.Errorf("custom_tool category = %s, want %s", got, CategoryDocs)
	}

	if err := r.Register("", CategoryDocs); err == nil {
		t.Error("empty name should be rejected")
	}
	if err := r.Register("bad_cat", "nonsense"); err == nil {
		t.Error("unknown category should be rejected")
	}
}

func TestRegistryTools(t *testing.T) {
	r := NewRegistry()

	live := r.Tools(CategoryLive)
	if len(live) != len(liveTools) {
		t.Errorf("live tool count = %d, want %d", len(live), len(liveTools))
	}
	for i := 1; i < len(live); i++ {
		if live[i-1] >= live[i] {
			t.Fatalf("Tools() not sorted: %s before %s", live[i-1], live[i])
		}
	}
}
