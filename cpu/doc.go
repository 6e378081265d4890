// Package cpu implements the CPYU-16 machine and its assembler.
//
// The machine is a 16-bit, word-addressed teaching architecture: 32
// 16-bit registers (r0 hard-wired to zero), 64Ki words of memory, and a
// program counter that indexes the assembled instruction sequence rather
// than memory. All arithmetic wraps modulo 65536.
//
// The assembler is a two-pass translator from source text to a Program,
// supporting labels, equates, and compile-time $(...) expressions.
package cpu
