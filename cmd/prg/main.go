package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func main() {
	bin, err := exec.LookPath("priograph")
	if err != nil {
		fmt.Fprintln(os.Stderr, "prg: priograph not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"priograph"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "prg: %v\n", err)
		os.Exit(1)
	}
}
