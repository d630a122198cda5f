// Command portable-packer packs an application folder into a single portable
// archive and builds the launcher that carries it.
package main

import "github.com/oshokin/portable-packer/cmd/portable-packer/cmd"

func main() {
	cmd.Execute()
}
