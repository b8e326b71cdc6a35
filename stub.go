package main

import "kgb/kernel/kmain"

// main is the only Go symbol that is visible (exported) from the rt0
// initialization code. It works as a trampoline for calling the actual
// kernel entrypoint and keeps the Go compiler from optimizing away the
// kernel code as it is not aware of the rt0 code.
//
// main is not expected to return. If it does, the rt0 code will halt the CPU.
func main() {
	kmain.Kmain()
}
