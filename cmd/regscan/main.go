package main

import (
	"context"
	"fmt"
	"os"

	"github.com/linskybing/regscan/internal/cli"
	"k8s.io/klog/v2"
)

func main() {
	err := cli.Execute(context.Background(), os.Stdin, os.Stdout)
	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
