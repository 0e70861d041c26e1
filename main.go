package main

import (
	_ "time/tzdata"

	"github.com/theirongolddev/gbdash/cmd"
)

func main() {
	cmd.Execute()
}
