// Command flatdb serves a REPL over a schema-described set of tables
// persisted under ./data.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/sirupsen/logrus"

	"flatdb/internal/catalog"
	"flatdb/internal/repl"
)

var cli struct {
	SchemaFile string `arg:"" optional:"" help:"Path to the schema descriptor file."`
}

func main() {
	kong.Parse(&cli)

	if cli.SchemaFile == "" {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}

	cat, err := catalog.Load(cli.SchemaFile, "data")
	if err != nil {
		logrus.WithError(err).Fatal("flatdb: loading schema")
	}

	r := repl.New(cat, os.Stdin, os.Stdout)
	if err := r.Run(); err != nil {
		logrus.WithError(err).Fatal("flatdb: REPL terminated")
	}
}
