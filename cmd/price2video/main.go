package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"

	"github.com/ivlev/price2video/internal/config"
	"github.com/ivlev/price2video/internal/engine"
	"github.com/ivlev/price2video/internal/system"
)

func main() {
	configPtr := flag.String("config", "config.yaml", "Path to the YAML config file")
	titlePtr := flag.String("title", "", "Video title (default: schedule.title from config)")
	datePtr := flag.String("date", "", "Publication date YYYY-MM-DD (default: latest data, file named by today)")
	categoryPtr := flag.String("category", "", "Product category (default: all)")
	servePtr := flag.Bool("serve", false, "Run the HTTP API and the daily scheduler")
	backendPtr := flag.String("backend", "", "Render backend: ffmpeg or remotion (overrides config)")
	statsPtr := flag.Bool("stats", false, "Log host CPU and memory after each render")

	flag.Parse()
	setupLogging()
	defer logx.Close()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		fatalf("[-] config: %v", err)
	}
	if *backendPtr != "" {
		cfg.Render.Backend = *backendPtr
	}
	if *statsPtr {
		cfg.Render.ShowStats = true
	}
	if err := cfg.Validate(); err != nil {
		fatalf("[-] config: %v", err)
	}

	system.InitResourceLimits()
	if err := os.MkdirAll(cfg.Render.OutputDir, 0755); err != nil {
		fatalf("[-] output dir: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg)
	if err != nil {
		fatalf("[-] init: %v", err)
	}
	defer app.Close()

	if *servePtr {
		if err := serve(ctx, cfg, app); err != nil {
			fatalf("[-] serve: %v", err)
		}
		return
	}

	title := *titlePtr
	if title == "" {
		title = cfg.Schedule.Title
	}
	req := engine.Request{Title: title, TargetDate: *datePtr, Category: *categoryPtr}

	res, err := app.Orchestrator.Run(ctx, req, printProgress)
	fmt.Println()
	if err != nil {
		fatalf("[-] render: %v", err)
	}
	fmt.Printf("[+++] Success! Output: %s (%d records, %.1fs)\n", res.OutputPath, res.RecordCount, res.DurationSeconds)
}

func setupLogging() {
	var c logx.LogConf
	if err := conf.FillDefault(&c); err != nil {
		fmt.Fprintf(os.Stderr, "[-] log config: %v\n", err)
		os.Exit(1)
	}
	c.ServiceName = "price2video"
	c.Encoding = "plain"
	logx.MustSetup(c)
	logx.DisableStat()
}

func printProgress(fraction float64) {
	fmt.Printf("\r[*] Rendering: %3.0f%%", fraction*100)
}

func fatalf(format string, args ...interface{}) {
	logx.Errorf(format, args...)
	logx.Close()
	os.Exit(1)
}
