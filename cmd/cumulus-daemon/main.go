package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/opentracing/opentracing-go"

	"github.com/CumulusFS/cumulus-daemon/app"
	"github.com/CumulusFS/cumulus-daemon/config"
	"github.com/CumulusFS/cumulus-daemon/core/env"
	"github.com/CumulusFS/cumulus-daemon/log"
	"github.com/CumulusFS/cumulus-daemon/tracing"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile = flag.String("memprofile", "", "write memory profile to `file`")
	debugMode  = flag.Bool("debug", false, "run daemon with the pprof endpoint enabled")
	devMode    = flag.Bool("dev", false, "run daemon in dev mode to use .env values")
	addr       = flag.String("addr", "", "control api listen address")
	nativeURL  = flag.String("nativeurl", "", "native mount service base url")
	storePath  = flag.String("storepath", "", "daemon store directory")
)

func main() {
	// this defer ensures the profile defers below run before exit
	returnCode := 0
	defer func() { os.Exit(returnCode) }()

	flag.Parse()

	cf := &config.Flags{
		ServerAddr:       *addr,
		NativeServiceURL: *nativeURL,
		StorePath:        *storePath,
		DevMode:          *devMode,
	}

	if *debugMode {
		log.Debug("Running daemon with profiler. Visit http://localhost:6060/debug/pprof")
		go func() {
			fmt.Println(http.ListenAndServe("localhost:6060", nil))
		}()
	}

	if *cpuprofile != "" {
		cleanupCpuProfile := runCpuProfiler(*cpuprofile)
		defer cleanupCpuProfile()
	}

	appEnv := env.New()
	log.SetLevel(appEnv.LogLevel())

	cfg := loadConfig(appEnv, cf)

	tracer, closer := tracing.MustInit("cumulus-daemon")
	opentracing.SetGlobalTracer(tracer)
	defer closer.Close()

	ctx := context.Background()

	cumulusApp := app.New(cfg, appEnv)
	// blocks until interrupted
	err := cumulusApp.Start(ctx)

	if *memprofile != "" {
		cleanupMemProfile := runMemProfiler(*memprofile)
		defer cleanupMemProfile()
	}

	if err != nil {
		log.Error("Daemon exited with error", err)
		returnCode = 1
	}
}

// loadConfig prefers a cumulus.json in the working folder (packaged
// installs ship one), unless flags or dev mode override it.
func loadConfig(appEnv env.CumulusEnv, cf *config.Flags) config.Config {
	if cf.DevMode || cf.ServerAddr != "" || cf.NativeServiceURL != "" || cf.StorePath != "" {
		return config.NewMap(cf)
	}

	cfg, err := config.NewJson(appEnv)
	if err != nil {
		log.Debug("no usable " + config.JsonConfigFileName + ", using flag config")
		return config.NewMap(cf)
	}

	log.Info("using " + config.JsonConfigFileName + " from working folder")
	return cfg
}

func runCpuProfiler(outputFilePath string) func() {
	f, err := os.Create(outputFilePath)
	if err != nil {
		log.Error("Could not create CPU profile", err)
		return func() {}
	}

	if err := pprof.StartCPUProfile(f); err != nil {
		log.Error("Could not start CPU profile", err)
	}

	return func() {
		pprof.StopCPUProfile()
		if f != nil {
			_ = f.Close()
		}
	}
}

func runMemProfiler(outputFilePath string) func() {
	f, err := os.Create(outputFilePath)
	if err != nil {
		log.Error("Could not create memory profile", err)
		return func() {}
	}

	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		log.Error("Could not write memory profile", err)
	}

	return func() {
		if f != nil {
			_ = f.Close()
		}
	}
}
