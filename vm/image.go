package vm

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// cborEncMode holds CBOR encoding options with canonical mode for
// deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Image is a serialized program: class definitions plus the entry
// contract (which class receives which zero-argument class-side
// selector).
type Image struct {
	Classes       []ClassDef `cbor:"classes"`
	Entry         string     `cbor:"entry"`
	EntrySelector string     `cbor:"entrySelector"`
}

// MarshalImage serializes an Image to CBOR bytes.
func MarshalImage(img *Image) ([]byte, error) {
	return cborEncMode.Marshal(img)
}

// UnmarshalImage deserializes an Image from CBOR bytes.
func UnmarshalImage(data []byte) (*Image, error) {
	var img Image
	if err := cbor.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("vm: unmarshal image: %w", err)
	}
	return &img, nil
}

// LoadImage decodes an image and loads its classes into the VM,
// returning the entry class name and selector. The selector defaults
// to "run".
func (vm *VM) LoadImage(data []byte) (entry, selector string, err error) {
	img, err := UnmarshalImage(data)
	if err != nil {
		return "", "", err
	}
	if err := vm.Load(img.Classes); err != nil {
		return "", "", err
	}
	selector = img.EntrySelector
	if selector == "" {
		selector = "run"
	}
	return img.Entry, selector, nil
}
