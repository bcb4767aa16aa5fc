// spdx-update generates the SPDX license identifier lookup tables.
package main

import "github.com/StinkyLord/spdx-update/cmd"

func main() {
	cmd.Execute()
}
