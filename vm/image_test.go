package vm

import (
	"bytes"
	"testing"
)

func TestImageRoundTrip(t *testing.T) {
	img := &Image{
		Classes:       greeterDefs(),
		Entry:         "Greeter",
		EntrySelector: "run",
	}
	data, err := MarshalImage(img)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalImage(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Entry != "Greeter" || back.EntrySelector != "run" {
		t.Error("entry contract lost in round-trip")
	}
	if len(back.Classes) != 1 || back.Classes[0].Name != "Greeter" {
		t.Error("classes lost in round-trip")
	}
	if len(back.Classes[0].Methods) != 4 {
		t.Errorf("methods = %d, want 4", len(back.Classes[0].Methods))
	}
}

func TestImageEncodingIsDeterministic(t *testing.T) {
	img := &Image{Classes: greeterDefs(), Entry: "Greeter"}
	a, err := MarshalImage(img)
	if err != nil {
		t.Fatal(err)
	}
	b, err := MarshalImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Error("canonical encoding must be deterministic")
	}
}

func TestLoadImageAndRun(t *testing.T) {
	img := &Image{
		Classes:       greeterDefs(),
		Entry:         "Greeter",
		EntrySelector: "run",
	}
	data, err := MarshalImage(img)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	vm := New(Options{Out: &out})
	entry, selector, err := vm.LoadImage(data)
	if err != nil {
		t.Fatal(err)
	}
	if entry != "Greeter" || selector != "run" {
		t.Errorf("entry = %s>>%s", entry, selector)
	}
	if _, err := vm.Run(entry, selector); err != nil {
		t.Fatal(err)
	}
	if out.String() != "2\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestLoadImageDefaultsSelector(t *testing.T) {
	img := &Image{Classes: greeterDefs(), Entry: "Greeter"}
	data, err := MarshalImage(img)
	if err != nil {
		t.Fatal(err)
	}
	vm := New(Options{})
	_, selector, err := vm.LoadImage(data)
	if err != nil {
		t.Fatal(err)
	}
	if selector != "run" {
		t.Errorf("selector = %q, want default \"run\"", selector)
	}
}

func TestUnmarshalImageRejectsGarbage(t *testing.T) {
	if _, err := UnmarshalImage([]byte{0xFF, 0x00, 0x13}); err == nil {
		t.Error("garbage bytes must fail to decode")
	}
}

func TestRunUnknownEntryClass(t *testing.T) {
	vm := New(Options{})
	if _, err := vm.Run("NoSuchClass", "run"); err == nil {
		t.Error("missing entry class must be an error")
	}
}
