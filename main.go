// Ovoscan classifies egg doneness from photos. Its CLI usage is documented
// in the project's README.
package main

import (
	"os"

	"github.com/caiomaz/ovoscan/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
