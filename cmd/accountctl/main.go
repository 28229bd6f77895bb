// Command accountctl is the operator tool of the account service.
package main

import (
	"context"
	"os"

	"github.com/vincentino1/account-service/internal/ctl"
)

func main() {
	os.Exit(ctl.Main(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
