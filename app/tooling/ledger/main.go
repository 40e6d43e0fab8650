// This program appends and audits blocks of the proof of work ledger from
// the command line.
package main

import (
	"github.com/ardanlabs/powledger/app/tooling/ledger/cmd"
)

func main() {
	cmd.Execute()
}
