// CLAUDE:SUMMARY CLI subcommand managing data sources: list, seed, set-url, availability check and ingestion into the store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/hazyhaar/companygraph/pkg/ingest"
	"github.com/hazyhaar/companygraph/pkg/store"
)

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	idColor   = color.New(color.FgCyan)
)

func cmdSources(args []string) {
	fs := flag.NewFlagSet("sources", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	all := fs.Bool("all", false, "ingest: every registered source")
	fs.Parse(args)

	cfg, logger := mustSetup(*cfgPath)

	st, err := store.Open(cfg.DB)
	if err != nil {
		errColor.Fprintf(os.Stderr, "open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Seed(ingest.Describers()); err != nil {
		errColor.Fprintf(os.Stderr, "seed sources: %v\n", err)
		os.Exit(1)
	}

	opts, err := cfg.pipelineOptions()
	if err != nil {
		errColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	env := ingest.Env{Store: st, Logger: logger, Lexicon: opts.Lexicon}

	rest := fs.Args()
	if len(rest) == 0 {
		rest = []string{"list"}
	}

	switch rest[0] {
	case "list":
		listSources(st)
	case "seed":
		okColor.Println("sources seeded")
	case "set-url":
		if len(rest) != 3 {
			fmt.Fprintln(os.Stderr, "usage: companygraph sources set-url <adapter-id> <url>")
			os.Exit(1)
		}
		if err := st.SetURL(rest[1], rest[2]); err != nil {
			errColor.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		okColor.Printf("[%s] url -> %s\n", rest[1], rest[2])
	case "check":
		rep := ingest.NewChecker(env, time.Hour).CheckAll(context.Background())
		listSources(st)
		fmt.Printf("%s reachable, %s unreachable\n", okColor.Sprint(rep.OK), errColor.Sprint(rep.Failed))
	case "ingest":
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
		defer cancel()

		var adapters []ingest.Adapter
		override := ""
		switch {
		case *all:
			adapters = ingest.All()
		case len(rest) >= 2:
			a, err := ingest.Get(rest[1])
			if err != nil {
				errColor.Fprintf(os.Stderr, "%v\n", err)
				os.Exit(1)
			}
			adapters = []ingest.Adapter{a}
			if len(rest) >= 3 {
				override = rest[2]
			}
		default:
			fmt.Fprintln(os.Stderr, "usage: companygraph sources ingest <adapter-id> [url] | -all ingest")
			os.Exit(1)
		}

		failed := false
		for _, a := range adapters {
			url := override
			if url == "" {
				if url, err = st.GetURL(a.ID()); err != nil {
					errColor.Fprintf(os.Stderr, "[%s] url: %v\n", a.ID(), err)
					failed = true
					continue
				}
			}
			fmt.Printf("[%s] ingesting %s...\n", idColor.Sprint(a.ID()), url)
			n, err := a.Ingest(ctx, url, env)
			if err != nil {
				errColor.Fprintf(os.Stderr, "[%s] ERROR after %d records: %v\n", a.ID(), n, err)
				failed = true
				continue
			}
			okColor.Printf("[%s] OK, %d records\n", a.ID(), n)
		}
		if failed {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown sources command %q (list, seed, set-url, check, ingest)\n", rest[0])
		os.Exit(1)
	}
}

func listSources(st *store.Store) {
	sources, err := st.ListSources()
	if err != nil {
		errColor.Fprintf(os.Stderr, "list sources: %v\n", err)
		os.Exit(1)
	}
	for _, src := range sources {
		status := warnColor.Sprint("  [unchecked]")
		if src.LastStatus != nil {
			c := okColor
			if *src.LastStatus < 200 || *src.LastStatus >= 400 {
				c = errColor
			}
			status = c.Sprintf("  [%d]", *src.LastStatus)
		}
		fmt.Printf("  %-26s  %-15s %s%s\n", idColor.Sprint(src.AdapterID), src.Source, src.Description, status)
		fmt.Printf("  %-26s  %s\n", "", src.SourceURL)
	}
}
