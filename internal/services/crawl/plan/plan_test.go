package plan

import (
	"testing"

	perr "carcrawl/internal/platform/errors"
	kit "carcrawl/internal/platform/testkit"
	"carcrawl/internal/services/crawl/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndJSON5(t *testing.T) {
	path := kit.WriteFile(t, "", "tasks.json", `{
		// comments and trailing commas are fine
		"defaults": { "pages": 2 },
		"tasks": [
			{ "brand": "Toyota", "kind": "Camry" },
			{ "brand": "honda", "pages": 5, "enabled": false },
			{ },
		],
	}`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, domain.Filters{YearRange: DefaultYearRange, PriceRange: DefaultPriceRange}, p.Filters)

	want := []domain.Task{
		{Brand: "Toyota", Kind: "Camry", Enabled: true, Pages: 2},
		{Brand: "honda", Enabled: false, Pages: 5},
		{Enabled: true, Pages: 2},
	}
	if diff := cmp.Diff(want, p.Tasks); diff != "" {
		t.Fatalf("tasks mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, p.Enabled(), 2)
	require.Equal(t, "general", p.Enabled()[1].Partition())
}

func TestLoad_PagesFallsBackToThree(t *testing.T) {
	path := kit.WriteFile(t, "", "tasks.json", `{"filters":{"make_year_range":"2018_2020"},"tasks":[{"brand":"toyota"}]}`)
	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, DefaultPages, p.Tasks[0].Pages)
	require.Equal(t, "2018_2020", p.Filters.YearRange)
	require.Equal(t, DefaultPriceRange, p.Filters.PriceRange)
}

func TestLoad_EmptyFilterDisablesIt(t *testing.T) {
	path := kit.WriteFile(t, "", "tasks.json", `{
		"filters": { "make_year_range": null, "price_range": "" },
		"tasks": [{ "brand": "toyota" }],
	}`)
	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, domain.Filters{}, p.Filters)
}

func TestResolve_FilterDefaults(t *testing.T) {
	year, off := "2015_2025", ""
	p, err := Resolve("tasks.json", Document{Filters: FiltersDoc{MakeYearRange: &year, PriceRange: &off}})
	require.NoError(t, err)
	require.Equal(t, domain.Filters{YearRange: "2015_2025"}, p.Filters)

	p, err = Resolve("tasks.json", Document{})
	require.NoError(t, err)
	require.Equal(t, domain.Filters{YearRange: DefaultYearRange, PriceRange: DefaultPriceRange}, p.Filters)
}

func TestLoad_LocalOverrideTurnsFilterOff(t *testing.T) {
	dir := t.TempDir()
	path := kit.WriteFile(t, dir, "tasks.json", `{"filters":{"price_range":"1_2","make_year_range":"2018_2020"},"tasks":[{"brand":"toyota"}]}`)
	kit.WriteFile(t, dir, "tasks.local.json", `{"filters":{"price_range":""}}`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, domain.Filters{YearRange: "2018_2020"}, p.Filters)
}

func TestLoad_LocalFilterLeavesOthersAlone(t *testing.T) {
	dir := t.TempDir()
	path := kit.WriteFile(t, dir, "tasks.json5", `{filters: {make_year_range: null, price_range: null}, tasks: [{brand: "toyota"}]}`)
	kit.WriteFile(t, dir, "tasks.local.json5", `{filters: {price_range: "5_6"}}`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, domain.Filters{PriceRange: "5_6"}, p.Filters)
}

func TestLoad_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := kit.WriteFile(t, dir, "tasks.json", `{"filters":{"price_range":"1_2"},"tasks":[{"brand":"toyota"}]}`)
	kit.WriteFile(t, dir, "tasks.local.json", `{"tasks":[{"brand":"lexus","pages":1}]}`)

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "1_2", p.Filters.PriceRange)
	require.Equal(t, []domain.Task{{Brand: "lexus", Enabled: true, Pages: 1}}, p.Tasks)
}

func TestLoad_LocalOnly(t *testing.T) {
	dir := t.TempDir()
	kit.WriteFile(t, dir, "tasks.local.json", `{"tasks":[{"kind":"camry"}]}`)
	p, err := Load(dir + "/tasks.json")
	require.NoError(t, err)
	require.Len(t, p.Tasks, 1)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(t.TempDir() + "/nope.json")
	require.True(t, perr.IsCode(err, perr.ErrorCodeNotFound), "got %v", err)
}

func TestLoad_Unparseable(t *testing.T) {
	path := kit.WriteFile(t, "", "tasks.json", `{"tasks": [`)
	_, err := Load(path)
	require.True(t, perr.IsCode(err, perr.ErrorCodeConfig))
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"filters.make_year_range": `{"filters":{"make_year_range":"2025_2015"}}`,
		"filters.price_range":     `{"filters":{"price_range":"cheap"}}`,
		"tasks[0].pages":          `{"tasks":[{"pages":-1}]}`,
		"defaults.pages":          `{"defaults":{"pages":-2}}`,
	}
	for field, body := range cases {
		path := kit.WriteFile(t, "", "tasks.json", body)
		_, err := Load(path)
		require.True(t, perr.IsCode(err, perr.ErrorCodeValidation), "%s: %v", field, err)
		e, ok := perr.As(err)
		require.True(t, ok)
		require.Equal(t, "Document."+field, e.Field())
	}
}

func TestWithPages(t *testing.T) {
	p := Plan{Tasks: []domain.Task{{Pages: 3}, {Pages: 5}}}
	forced := p.WithPages(1)
	require.Equal(t, 1, forced.Tasks[0].Pages)
	require.Equal(t, 1, forced.Tasks[1].Pages)
	require.Equal(t, 3, p.Tasks[0].Pages, "original untouched")
	require.Equal(t, p, p.WithPages(0))
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, "cfg/tasks.local.json", LocalPath("cfg/tasks.json"))
	require.Equal(t, "tasks.local.json5", LocalPath("tasks.json5"))
	require.Equal(t, "tasks.local", LocalPath("tasks"))
}
