package bundle

import (
	"testing"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name string
		typ  *Type
		want []Leaf
	}{
		{
			name: "BareSignal",
			typ:  Signal(),
			want: []Leaf{{Path: "sig", Dir: InOut}},
		},
		{
			name: "DirectedLeaves",
			typ: Struct(
				F("din", In(Signal())),
				F("dout", Out(Signal())),
				F("vdd", InOutOf(Signal())),
			),
			want: []Leaf{
				{Path: "din", Dir: Input},
				{Path: "dout", Dir: Output},
				{Path: "vdd", Dir: InOut},
			},
		},
		{
			name: "Array",
			typ:  Struct(F("data", In(Array(3, Signal())))),
			want: []Leaf{
				{Path: "data[0]", Dir: Input},
				{Path: "data[1]", Dir: Input},
				{Path: "data[2]", Dir: Input},
			},
		},
		{
			name: "Nested",
			typ: Struct(
				F("pad", Struct(
					F("clk", In(Signal())),
					F("rst", In(Signal())),
				)),
			),
			want: []Leaf{
				{Path: "pad.clk", Dir: Input},
				{Path: "pad.rst", Dir: Input},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.typ.Flatten()
			if len(got) != len(tt.want) {
				t.Fatalf("Flatten() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("leaf %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
			if tt.typ.Len() != len(tt.want) {
				t.Errorf("Len() = %d, want %d", tt.typ.Len(), len(tt.want))
			}
		})
	}
}

func TestDirectionWrapperDoesNotOverride(t *testing.T) {
	// An outer wrapper must not clobber an inner declared direction.
	typ := In(Struct(
		F("d", Signal()),
		F("q", Out(Signal())),
	))
	leaves := typ.Flatten()
	if leaves[0].Dir != Input {
		t.Errorf("d dir = %s, want input", leaves[0].Dir)
	}
	if leaves[1].Dir != Output {
		t.Errorf("q dir = %s, want output", leaves[1].Dir)
	}
}

func TestDirectionFlip(t *testing.T) {
	if Input.Flip() != Output || Output.Flip() != Input || InOut.Flip() != InOut {
		t.Error("Flip must swap input/output and fix inout")
	}
}

func TestLookup(t *testing.T) {
	typ := Struct(
		F("data", In(Array(4, Signal()))),
		F("pad", Struct(F("clk", In(Signal())))),
	)

	if got := typ.Lookup("data"); got == nil || got.Len() != 4 {
		t.Errorf("Lookup(data) = %v", got)
	}
	if got := typ.Lookup("data[2]"); got == nil || got.Len() != 1 {
		t.Errorf("Lookup(data[2]) = %v", got)
	}
	if got := typ.Lookup("pad.clk"); got == nil || got.Len() != 1 {
		t.Errorf("Lookup(pad.clk) = %v", got)
	}
	for _, missing := range []string{"nope", "data[9]", "pad.rst"} {
		if typ.Lookup(missing) != nil {
			t.Errorf("Lookup(%q) should be nil", missing)
		}
	}
}

func TestEqual(t *testing.T) {
	a := Struct(F("din", In(Signal())), F("dout", Out(Signal())))
	b := Struct(F("din", In(Signal())), F("dout", Out(Signal())))
	if !Equal(a, b) {
		t.Error("identical declarations must be Equal")
	}

	c := Struct(F("dout", Out(Signal())), F("din", In(Signal())))
	if Equal(a, c) {
		t.Error("leaf order is significant")
	}

	d := Struct(F("din", Out(Signal())), F("dout", Out(Signal())))
	if Equal(a, d) {
		t.Error("directions are significant")
	}
}
