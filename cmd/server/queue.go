// CLAUDE:SUMMARY CLI subcommand inspecting the work queue: rows by source and status, or the next row a source worker should take.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hazyhaar/companygraph/pkg/store"
)

func cmdQueue(args []string) {
	fs := flag.NewFlagSet("queue", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	source := fs.String("source", "companieshouse", "queue source (crunchbase, companieshouse, linkedin)")
	status := fs.String("status", "pending", "row status (pending, completed)")
	limit := fs.Int("limit", 50, "list: max rows (0 = all)")
	fs.Parse(args)

	cfg, _ := mustSetup(*cfgPath)

	src, err := store.ParseSource(*source)
	if err != nil {
		errColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	st, err := store.ParseStatus(*status)
	if err != nil {
		errColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	db, err := store.Open(cfg.DB)
	if err != nil {
		errColor.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cmd := "list"
	if fs.NArg() > 0 {
		cmd = fs.Arg(0)
	}
	switch cmd {
	case "list":
		rows, err := db.ListPending(store.Filter{Source: src, Status: st, Limit: *limit})
		if err != nil {
			errColor.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		for _, p := range rows {
			printPending(p)
		}
		fmt.Printf("%d %s rows\n", len(rows), st)
	case "next":
		p, err := db.NextPending(src)
		if err != nil {
			warnColor.Fprintf(os.Stderr, "%s: nothing pending (%v)\n", src, err)
			os.Exit(1)
		}
		printPending(*p)
	default:
		fmt.Fprintf(os.Stderr, "unknown queue command %q (list, next)\n", cmd)
		os.Exit(1)
	}
}

func printPending(p store.Pending) {
	fmt.Printf("%s  %-40s  attempts=%d", idColor.Sprint(p.UUID), p.Name, p.Attempts)
	if p.ParentUUID != "" {
		fmt.Printf("  parent=%s", p.ParentUUID)
	}
	if p.LastError != nil {
		fmt.Printf("  %s", errColor.Sprint(*p.LastError))
	}
	fmt.Println()
}
