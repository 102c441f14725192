package interp

import (
	"bytes"
	"strings"
	"testing"
	"tiny/vm"
)

// runProgram compiles and runs source with the given input, returning the
// interpreter, everything it printed, and the first error hit.
func runProgram(t *testing.T, source string, input string) (*Interp, string, error) {
	t.Helper()
	it := New()
	var out bytes.Buffer
	it.SetOutput(&out)
	it.SetInput(strings.NewReader(input))
	if err := it.Compile(strings.NewReader(source)); err != nil {
		return it, out.String(), err
	}
	err := it.Run()
	return it, out.String(), err
}

func mustRun(t *testing.T, source string, input string) (*Interp, string) {
	t.Helper()
	it, out, err := runProgram(t, source, input)
	if err != nil {
		t.Fatalf("running %q raised an error: %v", source, err)
	}
	return it, out
}

func TestArithmetic(t *testing.T) {
	_, out := mustRun(t, "write 1 + 2 * 3 end", "")
	if out != "7\n" {
		t.Errorf("printed %q, want %q", out, "7\n")
	}
}

func TestGlobalsAndControlFlow(t *testing.T) {
	_, out := mustRun(t, "x = 10 while x > 0 write x end x = x - 1 end", "")
	want := "10\n9\n8\n7\n6\n5\n4\n3\n2\n1\n"
	if out != want {
		t.Errorf("printed %q, want %q", out, want)
	}
}

func TestProcedure(t *testing.T) {
	source := "proc fact(n) if $n <= 1 then return 1; end return $n * fact($n - 1) end write fact(5) end"
	_, out := mustRun(t, source, "")
	if out != "120\n" {
		t.Errorf("printed %q, want %q", out, "120\n")
	}
}

func TestArray(t *testing.T) {
	source := "a = [3] a[0] = 7 a[1] = 8 a[2] = 9 write a[0] a[1] a[2] end"
	_, out := mustRun(t, source, "")
	if out != "7\n8\n9\n" {
		t.Errorf("printed %q, want %q", out, "7\n8\n9\n")
	}
}

// A loop that allocates thousands of transient strings must not grow the
// heap: the collector keeps the live count near the root count.
func TestGCUnderPressure(t *testing.T) {
	source := `
i = 0
s = ""
while i < 10000
  s = "transient"
  i = i + 1
end
`
	it, out := mustRun(t, source, "")
	if out != "" {
		t.Errorf("printed %q, want nothing", out)
	}
	if live := it.Machine().LiveObjects(); live > 32 {
		t.Errorf("live count = %d after the loop, want a small constant", live)
	}
	if it.Machine().StackSize() != 0 {
		t.Errorf("stack size = %d after the loop, want 0", it.Machine().StackSize())
	}
}

// The member list is recorded on the global's record at compile time and
// emits no instructions.
func TestNamedMemberArray(t *testing.T) {
	it := New()
	if err := it.Compile(strings.NewReader("point = { x, y } p = [2]")); err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}
	globals := it.Program().Symbols.Globals
	if len(globals[0].Members) != 2 || globals[0].Members[0] != "x" || globals[0].Members[1] != "y" {
		t.Errorf("members of point = %v, want [x y]", globals[0].Members)
	}
}

func TestEmptyProgram(t *testing.T) {
	_, out := mustRun(t, "begin end", "")
	if out != "" {
		t.Errorf("printed %q, want nothing", out)
	}
}

func TestReadWrite(t *testing.T) {
	_, out := mustRun(t, "x = 0 read x end write x end", "tiny\n")
	if out != "tiny\n" {
		t.Errorf("printed %q, want %q", out, "tiny\n")
	}
}

func TestForeignFunction(t *testing.T) {
	it := New()
	err := it.BindForeign("double", func(m *vm.Machine) error {
		value := m.Pop()
		m.Push(m.NewNumber(value.Number * 2))
		return nil
	})
	if err != nil {
		t.Fatalf("BindForeign() raised an error: %v", err)
	}

	var out bytes.Buffer
	it.SetOutput(&out)
	if err := it.Compile(strings.NewReader("write double(21) end")); err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}
	if err := it.Run(); err != nil {
		t.Fatalf("Run() raised an error: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("printed %q, want %q", out.String(), "42\n")
	}
}

func TestBindForeignAfterCompileFails(t *testing.T) {
	it := New()
	if err := it.Compile(strings.NewReader("begin end")); err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}
	if err := it.BindForeign("late", func(m *vm.Machine) error { return nil }); err == nil {
		t.Errorf("BindForeign() after Compile() expected an error")
	}
}

func TestCallProcFromEmbedder(t *testing.T) {
	it := New()
	it.SetOutput(&bytes.Buffer{})
	if err := it.Compile(strings.NewReader("proc add(a, b) return $a + $b end")); err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}
	if err := it.Run(); err != nil {
		t.Fatalf("Run() raised an error: %v", err)
	}

	machine := it.Machine()
	machine.Push(machine.NewNumber(19))
	machine.Push(machine.NewNumber(23))
	if err := it.CallProc(it.ProcID("add"), 2); err != nil {
		t.Fatalf("CallProc() raised an error: %v", err)
	}
	if result := machine.Pop(); result.Number != 42 {
		t.Errorf("CallProc() result = %v, want 42", result.Number)
	}
}

func TestCompileErrorSurfaces(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "lex error", source: `x = "unclosed`},
		{name: "parse error", source: "if 1 write 1 end end"},
		{name: "semantic error", source: "write y end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := New()
			if err := it.Compile(strings.NewReader(tt.source)); err == nil {
				t.Errorf("Compile(%q) expected an error, got none", tt.source)
			}
		})
	}
}

func TestRuntimeErrorSurfaces(t *testing.T) {
	_, _, err := runProgram(t, "a = [3] write a[3] end", "")
	if err == nil {
		t.Fatalf("an out of bounds index expected a runtime error")
	}
	if _, ok := err.(vm.RuntimeError); !ok {
		t.Errorf("expected a vm.RuntimeError, got %T", err)
	}
}

func TestUnboundedRecursionFails(t *testing.T) {
	_, _, err := runProgram(t, "proc r() return r() end r()", "")
	if err == nil {
		t.Errorf("unbounded recursion expected a runtime error")
	}
}

// Close drops every root and collects, so native release callbacks fire.
func TestCloseReleasesNatives(t *testing.T) {
	released := false
	it := New()
	err := it.BindForeign("mknative", func(m *vm.Machine) error {
		m.Push(m.NewNative("handle", func(handle any) {
			released = true
		}, nil))
		return nil
	})
	if err != nil {
		t.Fatalf("BindForeign() raised an error: %v", err)
	}
	it.SetOutput(&bytes.Buffer{})
	if err := it.Compile(strings.NewReader("x = mknative()")); err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}
	if err := it.Run(); err != nil {
		t.Fatalf("Run() raised an error: %v", err)
	}
	if released {
		t.Fatalf("the native is still rooted by a global; it must not be released yet")
	}

	it.Close()

	if !released {
		t.Errorf("Close() must fire the release callbacks of surviving natives")
	}
}
