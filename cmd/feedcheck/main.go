package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/config"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/data_source/sina"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/logger"
	"github.com/chinayuren2022-2025/kimi-stock-advisor/src/network"
)

// feedcheck fetches the configured watchlist once and prints what came back.
// Exit code 1 means the feed returned nothing usable.
func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.NewLogger(conf.LogLevel, "feedcheck")

	netMgr := network.NewRetryingNetworkManager(conf.MConfig, appLogger)
	source := sina.NewSinaQuoteSource(conf.MConfig, netMgr)

	quotes, err := source.FetchQuotes()
	if err != nil {
		fmt.Printf("Fetch failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-8s %-10s %10s %8s %14s %14s\n",
		"CODE", "NAME", "PRICE", "CHG%", "SHARES", "TURNOVER")

	valid := 0
	for _, sym := range conf.Monitor.Symbols {
		q, ok := quotes[sym]
		if !ok {
			fmt.Printf("%-8s MISSING\n", sym)
			continue
		}
		if q.Price > 0 {
			valid++
		}
		fmt.Printf("%-8s %-10s %10.2f %+7.2f%% %14.0f %14.0f\n",
			q.Code, q.Name, q.Price, q.ChangePct, q.ShareVolume, q.MoneyVolume)
	}

	fmt.Printf("\n%d/%d symbols returned live prices\n", valid, len(conf.Monitor.Symbols))
	if valid == 0 {
		os.Exit(1)
	}
}
