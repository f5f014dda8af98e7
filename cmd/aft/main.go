package main

import (
	"github.com/protalal11-ops/apk-forensic-toolkit/cmd"
)

func main() {
	cmd.Execute()
}
