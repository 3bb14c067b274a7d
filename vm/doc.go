// Package vm implements the gosom virtual machine, a bytecode
// interpreter for the SOM (Simple Object Machine) language.
//
// This package contains:
//   - NaN-boxed value representation
//   - Object layout and slot access
//   - Class and metaclass model
//   - VTable-based method dispatch with a lookup cache
//   - Frames, block closures, and non-local return
//   - Bytecode interpreter
//   - Primitive implementations for the core classes
//   - Class image loading
package vm
