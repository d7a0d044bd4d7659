package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/kcz17/harness/cmd/harness/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
