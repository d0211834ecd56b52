package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/companygraph/pkg/mcpquic"
)

func cmdCall(args []string) {
	fs := flag.NewFlagSet("call", flag.ExitOnError)
	addr := fs.String("addr", "localhost:8420", "server address (QUIC)")
	insecure := fs.Bool("insecure", true, "skip certificate verification")
	timeout := fs.Duration("timeout", 30*time.Second, "call timeout")
	fs.Parse(args)

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, `usage: companygraph call [-addr host:port] <tool> ['{"arg": "value"}']
       companygraph call [-addr host:port] tools`)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	c := mcpquic.NewClient(*addr, mcpquic.ClientTLSConfig(*insecure), version)
	if err := c.Connect(ctx); err != nil {
		errColor.Fprintf(os.Stderr, "connect %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer c.Close()

	if rest[0] == "tools" {
		res, err := c.ListTools(ctx)
		if err != nil {
			errColor.Fprintf(os.Stderr, "list tools: %v\n", err)
			os.Exit(1)
		}
		for _, t := range res.Tools {
			fmt.Printf("  %-18s %s\n", idColor.Sprint(t.Name), t.Description)
		}
		return
	}

	toolArgs := map[string]any{}
	if len(rest) > 1 {
		if err := json.Unmarshal([]byte(rest[1]), &toolArgs); err != nil {
			errColor.Fprintf(os.Stderr, "arguments must be a JSON object: %v\n", err)
			os.Exit(1)
		}
	}

	text, err := c.CallText(ctx, rest[0], toolArgs)
	if err != nil {
		errColor.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println(text)
}
