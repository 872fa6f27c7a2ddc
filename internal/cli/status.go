// Copyright (c) 2024-2025 Saksham Jain
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - One-shot server status command handler.
//
// Handles "inferchat status", which probes the health endpoint and
// prints one telemetry snapshot. The TUI's ctrl+h view shows the same
// data live; this is the scripting-friendly version.
package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/saksham-jain177/inferchat/internal/config"
	"github.com/saksham-jain177/inferchat/internal/health"
	"github.com/saksham-jain177/inferchat/internal/util"
)

// HandleStatus handles the "status" command.
func HandleStatus(args Args) {
	if err := handleStatusCommand(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(GetExitCode(err))
	}
}

func handleStatusCommand(args Args) error {
	cfg := config.Global()
	client := newClient(cfg, args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	reachable := client.CheckRunning(ctx) == nil

	agg := health.NewAggregator(client)
	pollErr := agg.Poll(ctx)
	snapshot := agg.Snapshot()

	if args.JSON {
		return printStatusJSON(client.BaseURL(), reachable, snapshot, pollErr)
	}
	return printStatusText(client.BaseURL(), reachable, snapshot, pollErr)
}

func printStatusJSON(server string, reachable bool, s *health.Snapshot, pollErr error) error {
	if pollErr != nil {
		NewJSONErrorResponse("status", pollErr).Print()
		return pollErr
	}
	return NewJSONResponse("status", StatusData{
		Server:         server,
		Reachable:      reachable,
		Status:         s.Status().String(),
		ActiveRequests: s.ActiveRequests,
		TotalRequests:  s.TotalRequests,
		TotalErrors:    s.TotalErrors,
		ErrorRate:      s.ErrorRate(),
		CacheHits:      s.CacheHits,
		CacheMisses:    s.CacheMisses,
		CacheHitRate:   s.HitRate(),
		AdapterUsage:   s.AdapterUsage,
	}).Print()
}

func printStatusText(server string, reachable bool, s *health.Snapshot, pollErr error) error {
	fmt.Println(TitleStyle.Render("Server Status"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Server"), ValueStyle.Render(server))

	if !reachable || pollErr != nil {
		fmt.Printf("%s %s\n", LabelStyle.Render("Reachable"), RenderStatus("offline"))
		if pollErr != nil {
			fmt.Println(DimStyle.Render("  " + pollErr.Error()))
		}
		fmt.Println(DimStyle.Render("  Is the inference server running?"))
		return pollErr
	}

	fmt.Printf("%s %s %s\n", LabelStyle.Render("Status"), RenderStatus(s.Status().String()), ValueStyle.Render(s.Status().String()))
	fmt.Println()

	fmt.Println(SectionStyle.Render("Requests"))
	fmt.Printf("%s %s\n", LabelStyle.Render("Active"), ValueStyle.Render(util.FormatCount(s.ActiveRequests)))
	fmt.Printf("%s %s\n", LabelStyle.Render("Total"), ValueStyle.Render(util.FormatCount(s.TotalRequests)))
	fmt.Printf("%s %s (%s)\n", LabelStyle.Render("Errors"),
		ValueStyle.Render(util.FormatCount(s.TotalErrors)),
		util.FormatPercent(s.ErrorRate()))

	fmt.Println(SectionStyle.Render("Cache"))
	fmt.Printf("%s %s hits / %s misses\n", LabelStyle.Render("Lookups"),
		ValueStyle.Render(util.FormatCount(s.CacheHits)),
		ValueStyle.Render(util.FormatCount(s.CacheMisses)))
	fmt.Printf("%s %s\n", LabelStyle.Render("Hit rate"), ValueStyle.Render(util.FormatPercent(s.HitRate())))

	if len(s.AdapterUsage) > 0 {
		fmt.Println(SectionStyle.Render("Adapter Usage"))
		domains := make([]string, 0, len(s.AdapterUsage))
		for domain := range s.AdapterUsage {
			domains = append(domains, domain)
		}
		sort.Slice(domains, func(i, j int) bool {
			if s.AdapterUsage[domains[i]] != s.AdapterUsage[domains[j]] {
				return s.AdapterUsage[domains[i]] > s.AdapterUsage[domains[j]]
			}
			return domains[i] < domains[j]
		})
		for _, domain := range domains {
			fmt.Printf("%s %s\n", LabelStyle.Render(domain), ValueStyle.Render(util.FormatCount(s.AdapterUsage[domain])))
		}
	}
	return nil
}
