package searchdata

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_SharedKeyAcrossClasses(t *testing.T) {
	shard := loadFixture(t)

	matches := shard.Lookup("remove")
	require.Len(t, matches, 7)

	var found bool
	for _, m := range matches {
		assert.Equal(t, "remove", m.Label)
		assert.Equal(t, "remove", m.Key)
		assert.NotEmpty(t, m.Target)
		if m.Scope == "tgui::Container" {
			found = true
			assert.Equal(t, "tgui::Container::remove()", m.Context)
			assert.Equal(t, "../classtgui_1_1Container.html#a02b900305e231f6ba0de127712fa3837", m.Target)
		}
	}
	assert.True(t, found, "expected an occurrence scoped to tgui::Container")
}

func TestLookup_DecodesEntities(t *testing.T) {
	shard := loadFixture(t)

	matches := shard.Lookup("remove")
	require.NotEmpty(t, matches)
	assert.Equal(t, "tgui::BoxLayout::remove(const tgui::Widget::Ptr &widget) override", matches[0].Context)
	assert.Equal(t, "tgui::BoxLayout", matches[0].Scope)
}

func TestLookup_MissingKey(t *testing.T) {
	shard := loadFixture(t)

	matches := shard.Lookup("nonexistentmethod")
	assert.NotNil(t, matches)
	assert.Empty(t, matches)

	_, ok := shard.Entry("nonexistentmethod")
	assert.False(t, ok)
}

func TestLookup_CaseInsensitive(t *testing.T) {
	shard := loadFixture(t)

	assert.Len(t, shard.Lookup("  ReadFile "), 1)
}

func TestLookup_ReturnsCopies(t *testing.T) {
	shard := loadFixture(t)

	e, ok := shard.Entry("readfile")
	require.True(t, ok)
	e.Occurrences[0].Target = "mutated"

	again, _ := shard.Entry("readfile")
	assert.NotEqual(t, "mutated", again.Occurrences[0].Target)
}

func TestPrefixAndContains(t *testing.T) {
	shard := loadFixture(t)

	tests := []struct {
		name  string
		query func() []Entry
		want  []string
	}{
		{
			name:  "prefix remove limited",
			query: func() []Entry { return shard.Prefix("remove", 3) },
			want:  []string{"remove", "removeall", "removeallitems"},
		},
		{
			name:  "prefix righ",
			query: func() []Entry { return shard.Prefix("RIGH", 0) },
			want:  []string{"right", "righttoleft"},
		},
		{
			name:  "contains item",
			query: func() []Entry { return shard.Contains("item", 0) },
			want:  []string{"removeallitems", "removeitem", "removeitembyid", "removeitembyindex", "removemenuitem"},
		},
		{
			name:  "prefix miss",
			query: func() []Entry { return shard.Prefix("zzz", 0) },
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := []string{}
			for _, e := range tt.query() {
				keys = append(keys, e.Key)
			}
			assert.Equal(t, tt.want, keys)
		})
	}
}

func TestScope(t *testing.T) {
	tests := []struct {
		label   string
		context string
		want    string
	}{
		{"remove", "tgui::Container::remove()", "tgui::Container"},
		{"reload", "tgui::Theme::reload(const std::string &amp;filename)", "tgui::Theme"},
		{"readFile", "tgui::DefaultThemeLoader", "tgui::DefaultThemeLoader"},
		{"RadioButton", "tgui", "tgui"},
		{"RadioButtonRenderer", "tgui::RadioButtonRenderer", "tgui"},
		{"Right", "tgui::ChildWindow::Right()", "tgui::ChildWindow"},
		{"main", "", ""},
		{"Theme", "Theme", ""},
	}
	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.context, func(t *testing.T) {
			occ := Occurrence{Target: "x.html", Context: tt.context}
			assert.Equal(t, tt.want, occ.Scope(tt.label))
		})
	}
}

func TestShard_ConcurrentReaders(t *testing.T) {
	shard := loadFixture(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, shard.Lookup("reload"), 21)
			assert.Len(t, shard.Prefix("remove", 0), 13)
		}()
	}
	wg.Wait()
}
