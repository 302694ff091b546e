package gcl_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/gcl/internal/game"
	"github.com/funvibe/gcl/internal/interp"
	gcl "github.com/funvibe/gcl/pkg/embed"
)

func TestEmbedAPI(t *testing.T) {
	ip, err := gcl.New(gcl.Options{})
	if err != nil {
		t.Fatal(err)
	}

	// 1. Bind Go functions
	if err := ip.Bind("Double", func(x int) int { return x * 2 }); err != nil {
		t.Fatal(err)
	}
	if err := ip.Bind("Shout", func(s string) (string, error) {
		if s == "" {
			return "", errors.New("nothing to shout")
		}
		return strings.ToUpper(s) + "!", nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := ip.Bind("Sum", func(xs []float64) float64 {
		total := 0.0
		for _, x := range xs {
			total += x
		}
		return total
	}); err != nil {
		t.Fatal(err)
	}

	// 2. Set a global
	if err := ip.Set("player", "Alice"); err != nil {
		t.Fatal(err)
	}

	// 3. Eval expressions using them
	res, err := ip.Eval(`{gassign: doubled, value: {call: Double, args: [21]}}`)
	if err != nil {
		t.Fatalf("Eval failed: %v", err)
	}
	if res != int64(42) {
		t.Errorf("Expected 42, got %v (%T)", res, res)
	}

	res, err = ip.Eval(`{call: Shout, args: [{gvar: player}]}`)
	if err != nil {
		t.Fatal(err)
	}
	if res != "ALICE!" {
		t.Errorf("Expected ALICE!, got %v", res)
	}

	if _, err := ip.Eval(`{call: Shout, args: [""]}`); err == nil || !strings.Contains(err.Error(), "nothing to shout") {
		t.Errorf("Go error should surface, got %v", err)
	}

	res, err = ip.Call("Sum", []interface{}{1, 2.5, 3})
	if err != nil {
		t.Fatal(err)
	}
	if res != 6.5 {
		t.Errorf("Expected 6.5, got %v", res)
	}

	// 4. Read back
	got, err := ip.Get("doubled")
	if err != nil {
		t.Fatal(err)
	}
	if got != int64(42) {
		t.Errorf("Get(doubled) = %v", got)
	}
	if _, err := ip.Get("missing"); err == nil {
		t.Error("missing global should fail")
	}

	if err := ip.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestBindRejects(t *testing.T) {
	ip, err := gcl.New(gcl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		fn   interface{}
	}{
		{"not a function", 42},
		{"variadic", func(xs ...int) int { return len(xs) }},
		{"too many results", func() (int, int, error) { return 0, 0, nil }},
		{"unsupported parameter", func(m map[string]int) int { return len(m) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ip.Bind("F", tt.fn); err == nil {
				t.Error("expected an error")
			}
		})
	}
	if _, err := gcl.New(gcl.Options{MaxCallDepth: -1}); err == nil {
		t.Error("negative depth should be rejected")
	}
}

func TestNumericArgumentsMustFit(t *testing.T) {
	ip, err := gcl.New(gcl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	sumInts := func(xs []int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	}
	sumBytes := func(xs []uint8) int {
		total := 0
		for _, x := range xs {
			total += int(x)
		}
		return total
	}
	funcs := map[string]interface{}{
		"Byte":     func(x uint8) int { return int(x) },
		"Short":    func(x int16) int { return int(x) },
		"Single":   func(x float32) float64 { return float64(x) },
		"SumInts":  sumInts,
		"SumBytes": sumBytes,
	}
	for name, fn := range funcs {
		if err := ip.Bind(name, fn); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		fn      string
		arg     interface{}
		want    interface{}
		wantErr string
	}{
		{"byte in range", "Byte", 200, int64(200), ""},
		{"byte overflow", "Byte", 300, nil, "out of range"},
		{"negative into unsigned", "Byte", -1, nil, "negative"},
		{"int16 overflow", "Short", 40000, nil, "out of range"},
		{"int16 minimum", "Short", -32768, int64(-32768), ""},
		{"float32 overflow", "Single", 1e300, nil, "out of range"},
		{"fractional floats into ints", "SumInts", []float64{1.9, 2.9}, nil, "not an integer"},
		{"integral floats into ints", "SumInts", []float64{1, 2}, int64(3), ""},
		{"negative list element into bytes", "SumBytes", []int{1, -2}, nil, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ip.Call(tt.fn, tt.arg)
			if tt.wantErr != "" {
				if !interp.IsKind(err, interp.NativeFailure) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected a native failure mentioning %q, got %v (result %v)", tt.wantErr, err, got)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestHostGamesAreWatched(t *testing.T) {
	ip, err := gcl.New(gcl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	g := game.New("host")
	if _, err := g.AppendMove(g.Root(), "P1", 2); err != nil {
		t.Fatal(err)
	}
	child, _ := g.Root().Child(1)
	if err := ip.Set("c", child); err != nil {
		t.Fatal(err)
	}

	if err := g.DeleteTree(g.Root()); err != nil {
		t.Fatalf("edit should succeed after retraction: %v", err)
	}
	if _, err := ip.Get("c"); err == nil {
		t.Error("binding into the removed subtree should be gone")
	}
	if err := ip.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.yaml")
	code := `
functions:
  - name: Greeting
    params: [{name: who, type: text, default: "world"}]
    returns: text
    body: {call: Plus, args: ["Hello, ", {var: who}]}
statements:
  - {gassign: greeting, value: {call: Greeting}}
  - {gassign: broken, value: {call: Greeting, args: [1]}}
`
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		t.Fatal(err)
	}

	ip, err := gcl.New(gcl.Options{})
	if err != nil {
		t.Fatal(err)
	}
	err = ip.LoadFile(path)
	if err == nil || !strings.Contains(err.Error(), "unresolved call") {
		t.Errorf("the second statement should fail to resolve, got %v", err)
	}
	got, err := ip.Get("greeting")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello, world" {
		t.Errorf("greeting = %v", got)
	}
}
