// Command saorsafec is the CLI front-end exercising the pipeline and
// backend packages end to end: encode, decode, verify, and bench
// subcommands dispatched from a map of flag.FlagSet by name.
//
// This is the one component in the module that parses flags, using the
// standard library flag package; configuration-file parsing is out of
// scope.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/saorsa-labs/saorsa-fec/cmd/saorsafec/cmd"
)

var subcommands = map[string]*flag.FlagSet{
	cmd.EncodeCmd.Name(): cmd.EncodeCmd,
	cmd.DecodeCmd.Name(): cmd.DecodeCmd,
	cmd.VerifyCmd.Name(): cmd.VerifyCmd,
	cmd.BenchCmd.Name():  cmd.BenchCmd,
}

func run() int {
	names := make([]string, 0, len(subcommands))
	for name := range subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(os.Args) < 2 {
		log.Fatalf("You must specify a subcommand. Valid subcommands are: %s\n", strings.Join(names, ", "))
	}

	command := subcommands[os.Args[1]]
	if command == nil {
		log.Fatalf("unknown subcommand %q. Available commands are: %s\n", os.Args[1], strings.Join(names, ", "))
	}
	if err := command.Parse(os.Args[2:]); err != nil {
		return 1
	}

	var err error
	switch command.Name() {
	case cmd.EncodeCmd.Name():
		err = cmd.RunEncodeCmd()
	case cmd.DecodeCmd.Name():
		err = cmd.RunDecodeCmd()
	case cmd.VerifyCmd.Name():
		err = cmd.RunVerifyCmd()
	case cmd.BenchCmd.Name():
		err = cmd.RunBenchCmd()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
