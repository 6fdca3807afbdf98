package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/canireach/canireach/internal/apiclient"
	"github.com/canireach/canireach/internal/domain"
	"github.com/canireach/canireach/internal/probe"
	"github.com/canireach/canireach/internal/registry"
)

const usage = `canireach-probe - run reachability checks and share the results

Usage:
  canireach-probe check --server <url> [--services <file>] [--timeout 5s] [--dry-run]
  canireach-probe stats --server <url> [--isp <filter>]
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	switch os.Args[1] {
	case "-h", "--help", "help":
		fmt.Print(usage)
	case "check":
		handleCheck(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func handleCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	server := fs.String("server", "", "canireach server base URL")
	servicesFile := fs.String("services", "", "YAML file overriding the builtin service list")
	timeout := fs.Duration("timeout", probe.DefaultTimeout, "per-service probe timeout")
	dryRun := fs.Bool("dry-run", false, "probe and print, do not submit")
	_ = fs.Parse(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := loadServices(ctx, *server, *servicesFile)
	if err != nil {
		fatalf("load services: %v", err)
	}

	fmt.Printf("Probing %d services (timeout %s)...\n\n", len(services), *timeout)
	results := probe.RunAll(ctx, services, probe.Options{Timeout: *timeout},
		func(name string, res domain.CheckResult) {
			fmt.Printf("  %-12s %s\n", name, formatResult(res))
		})

	if ctx.Err() != nil {
		fatalf("interrupted")
	}

	blocked := 0
	for _, res := range results {
		if res.IsBlocked {
			blocked++
		}
	}
	fmt.Printf("\n%d/%d services blocked\n", blocked, len(results))

	if *dryRun {
		return
	}
	if *server == "" {
		fatalf("--server is required to submit results")
	}

	client := apiclient.NewClient(*server)
	resp, err := client.Submit(ctx, apiclient.SubmitRequest{Results: results})
	if err != nil {
		if apiclient.IsRateLimited(err) {
			fmt.Fprintf(os.Stderr, "not submitted: %v\n", err)
			os.Exit(1)
		}
		fatalf("submit: %v", err)
	}
	fmt.Printf("Submitted. Detected network: %s (%s, %s)\n", resp.ISP, resp.City, resp.State)
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	server := fs.String("server", "", "canireach server base URL")
	isp := fs.String("isp", "", "filter ISP breakdown by substring")
	_ = fs.Parse(args)

	if *server == "" {
		fatalf("--server is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := apiclient.NewClient(*server)
	stats, err := client.Stats(ctx, *isp)
	if err != nil {
		fatalf("stats: %v", err)
	}

	fmt.Printf("Checks in window: %d (updated %s)\n\n", stats.TotalChecks, stats.LastUpdated)
	fmt.Printf("%-14s %8s %8s %8s\n", "SERVICE", "CHECKS", "BLOCKED", "PCT")
	for _, s := range stats.ServiceStats {
		fmt.Printf("%-14s %8d %8d %7d%%\n", s.ServiceName, s.TotalChecks, s.BlockedCount, s.BlockedPct)
	}
	if len(stats.IspStats) > 0 {
		fmt.Printf("\n%-24s %-14s %8s %7s\n", "ISP", "SERVICE", "CHECKS", "PCT")
		for _, s := range stats.IspStats {
			fmt.Printf("%-24s %-14s %8d %6d%%\n", s.ISP, s.ServiceName, s.TotalChecks, s.BlockedPct)
		}
	}
}

// loadServices prefers a local YAML override, then the server registry,
// then the builtin list.
func loadServices(ctx context.Context, server, servicesFile string) ([]domain.Service, error) {
	if servicesFile != "" {
		return registry.Load(servicesFile)
	}
	if server != "" {
		client := apiclient.NewClient(server)
		resp, err := client.Services(ctx)
		if err == nil && len(resp.Services) > 0 {
			return resp.Services, nil
		}
		fmt.Fprintf(os.Stderr, "warning: could not fetch server registry, using builtin list\n")
	}
	return registry.Builtin(), nil
}

func formatResult(res domain.CheckResult) string {
	if res.IsBlocked {
		return "BLOCKED"
	}
	if res.ResponseTimeMs != nil {
		return fmt.Sprintf("reachable (%dms)", *res.ResponseTimeMs)
	}
	return "reachable"
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
