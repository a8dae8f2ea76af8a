package css_test

import (
	"strings"
	"testing"

	"cssnorm/css"
)

func props(b *css.Block) string {
	var names []string
	for _, d := range b.Declarations() {
		names = append(names, d.Property)
	}
	return strings.Join(names, ",")
}

func TestBlock_Mutations(t *testing.T) {
	a := css.NewDeclaration("a", "1", false)
	b := css.NewDeclaration("b", "2", false)
	c := css.NewDeclaration("c", "3", false)
	block := css.NewBlock(a, b, c)

	snapshot := block.Declarations()

	x := css.NewDeclaration("x", "0", false)
	y := css.NewDeclaration("y", "0", false)
	if !block.InsertBefore(b, x, y) {
		t.Fatal("InsertBefore failed")
	}
	if got := props(block); got != "a,x,y,b,c" {
		t.Errorf("after InsertBefore: %s", got)
	}

	z := css.NewDeclaration("z", "0", false)
	if !block.InsertAfter(c, z) {
		t.Fatal("InsertAfter failed")
	}
	if got := props(block); got != "a,x,y,b,c,z" {
		t.Errorf("after InsertAfter: %s", got)
	}

	if !block.Remove(x) {
		t.Fatal("Remove failed")
	}
	if got := props(block); got != "a,y,b,c,z" {
		t.Errorf("after Remove: %s", got)
	}

	r1 := css.NewDeclaration("r1", "0", false)
	r2 := css.NewDeclaration("r2", "0", false)
	if !block.Replace(b, r1, r2) {
		t.Fatal("Replace failed")
	}
	if got := props(block); got != "a,y,r1,r2,c,z" {
		t.Errorf("after Replace: %s", got)
	}

	if block.Remove(b) || block.InsertBefore(b, x) || block.Replace(b) {
		t.Error("operations on a removed declaration must fail")
	}
	if block.Index(b) != -1 {
		t.Error("removed declaration must not be found")
	}

	if len(snapshot) != 3 || snapshot[1] != b {
		t.Error("snapshot must not be affected by mutations")
	}
}

func TestBlock_GetLastWins(t *testing.T) {
	first := css.NewDeclaration("margin", "0", false)
	last := css.NewDeclaration("margin", "1px", false)
	block := css.NewBlock(first, css.NewDeclaration("color", "red", false), last)

	if got := block.Get("margin"); got != last {
		t.Errorf("expected last margin declaration, got %+v", got)
	}
	if block.Get("padding") != nil {
		t.Error("expected nil for missing property")
	}
}

func TestDeclaration_Clone(t *testing.T) {
	d := css.NewDeclaration("MARGIN", "0", true)
	if d.Property != "margin" {
		t.Errorf("expected lowercase property, got %q", d.Property)
	}

	c := d.Clone("margin-top", "0")
	if c == d {
		t.Fatal("clone must be a new declaration")
	}
	if c.Property != "margin-top" || c.Value != "0" || !c.Important || c.Custom {
		t.Errorf("unexpected clone %+v", *c)
	}
	if c.String() != "margin-top: 0 !important" {
		t.Errorf("unexpected text %q", c.String())
	}

	custom := css.NewDeclaration("--Theme", "red", false)
	if !custom.Custom || custom.Property != "--Theme" {
		t.Errorf("custom property name must be kept as written: %+v", *custom)
	}
}

func TestIsHack(t *testing.T) {
	tests := []struct {
		prop, value string
		want        bool
	}{
		{"*zoom", "1", true},
		{"_height", "1px", true},
		{"width", `10px\9`, true},
		{"width", `10px\0`, true},
		{"width", `10px\0/`, true},
		{"color", "red!ie", true},
		{"color", "red", false},
		{"margin", "0", false},
		{"--x", `1\9`, false},
	}
	for _, tt := range tests {
		d := css.NewDeclaration(tt.prop, tt.value, false)
		if got := css.IsHack(d); got != tt.want {
			t.Errorf("IsHack(%s: %s) = %v, want %v", tt.prop, tt.value, got, tt.want)
		}
	}
}

func TestBlock_CommentsFollowDeclarations(t *testing.T) {
	a := css.NewDeclaration("a", "1", false)
	b := css.NewDeclaration("b", "2", false)
	block := css.NewBlock()
	block.AppendComment("/* first */")
	block.Append(a)
	block.AppendComment("/* after a */")
	block.Append(b)
	block.AppendComment("/* after b */")
	if block.Comments() != 3 {
		t.Fatalf("Comments() = %d, want 3", block.Comments())
	}

	a1 := css.NewDeclaration("a1", "1", false)
	a2 := css.NewDeclaration("a2", "1", false)
	block.Replace(a, a1, a2)
	block.Remove(b)

	want := "/* first */\na1: 1;\na2: 1;\n/* after a */\n/* after b */\n"
	if got := block.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	block.Replace(a1)
	block.Remove(a2)
	want = "/* first */\n/* after a */\n/* after b */\n"
	if got := block.String(); got != want {
		t.Errorf("String() after removing all = %q, want %q", got, want)
	}
}

func TestDeclaration_StringEmptyValue(t *testing.T) {
	if got := css.NewDeclaration("color", "", false).String(); got != "color:" {
		t.Errorf("String() = %q", got)
	}
	if got := css.NewDeclaration("color", "", true).String(); got != "color: !important" {
		t.Errorf("String() = %q", got)
	}
}
