// Command facilitiesctl runs migrations, imports term text offline, creates
// accounts and serves the API.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
