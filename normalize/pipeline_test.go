package normalize_test

import (
	"slices"
	"testing"

	"go.uber.org/zap"

	"cssnorm/css"
	"cssnorm/normalize"
)

func newPipeline(t *testing.T, opts normalize.Options, names ...string) *normalize.Pipeline {
	t.Helper()
	passes := make([]normalize.Pass, 0, len(names))
	for _, name := range names {
		p, err := normalize.NewPass(name, opts, zap.NewNop())
		if err != nil {
			t.Fatalf("NewPass(%q) returned error: %v", name, err)
		}
		passes = append(passes, p)
	}
	return normalize.NewPipeline(zap.NewNop(), passes...)
}

func TestNewPass(t *testing.T) {
	for _, name := range normalize.PassNames {
		p, err := normalize.NewPass(name, normalize.Options{}, nil)
		if err != nil {
			t.Fatalf("NewPass(%q) returned error: %v", name, err)
		}
		if p.Name() != name {
			t.Errorf("NewPass(%q).Name() = %q", name, p.Name())
		}
	}

	if _, err := normalize.NewPass("Units", normalize.Options{}, nil); err != nil {
		t.Errorf("pass names must be case-insensitive: %v", err)
	}
	if _, err := normalize.NewPass("minify", normalize.Options{}, nil); err == nil {
		t.Error("expected error for unknown pass")
	}
}

func TestPipeline_Run(t *testing.T) {
	sheet := css.NewParser(zap.NewNop()).Parse([]byte(`a { margin: 0; transition: opacity 0; border: 0 }`))

	p := newPipeline(t, normalize.Options{}, normalize.PassNames...)
	if got := p.Passes(); !slices.Equal(got, normalize.PassNames) {
		t.Errorf("Passes() = %v", got)
	}

	stats := p.Run(sheet)

	want := `a {
  margin-top: 0px;
  margin-right: 0px;
  margin-bottom: 0px;
  margin-left: 0px;
  transition: opacity 0s ease 0s;
  border-top: 0px;
  border-right: 0px;
  border-bottom: 0px;
  border-left: 0px;
}
`
	if got := sheet.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}

	wantStats := []normalize.PassStats{
		{Name: "explode", Stats: normalize.Stats{Visited: 2, Transformed: 2, Produced: 8}},
		{Name: "defaults", Stats: normalize.Stats{Visited: 9, Transformed: 1, Produced: 1}},
		{Name: "units", Stats: normalize.Stats{Visited: 9, Transformed: 9, Produced: 9}},
	}
	if !slices.Equal(stats, wantStats) {
		t.Errorf("unexpected stats:\n%+v\nwant:\n%+v", stats, wantStats)
	}
}

func TestPipeline_PassthroughDeclarations(t *testing.T) {
	input := `a { --gap: 0; margin: inherit; animation: unset; padding: var(--gap); font: caption }`
	sheet := css.NewParser(nil).Parse([]byte(input))
	before := sheet.String()

	for _, ps := range newPipeline(t, normalize.Options{}, normalize.PassNames...).Run(sheet) {
		if ps.Transformed != 0 {
			t.Errorf("pass %s transformed %d declarations", ps.Name, ps.Transformed)
		}
	}
	if got := sheet.String(); got != before {
		t.Errorf("stylesheet changed:\n%s\nwas:\n%s", got, before)
	}
}

func TestPipeline_Ignore(t *testing.T) {
	sheet := css.NewParser(nil).Parse([]byte(`a { margin: 0; padding: 0 }`))

	newPipeline(t, normalize.Options{Ignore: []string{"margin"}}, normalize.PassNames...).Run(sheet)

	want := `a {
  margin: 0;
  padding-top: 0px;
  padding-right: 0px;
  padding-bottom: 0px;
  padding-left: 0px;
}
`
	if got := sheet.String(); got != want {
		t.Errorf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestPipeline_Empty(t *testing.T) {
	sheet := css.NewParser(nil).Parse([]byte(`a { margin: 0 }`))
	if stats := normalize.NewPipeline(nil).Run(sheet); len(stats) != 0 {
		t.Errorf("expected no stats, got %v", stats)
	}
	if got := sheet.String(); got != "a {\n  margin: 0;\n}\n" {
		t.Errorf("unexpected output %q", got)
	}
}
