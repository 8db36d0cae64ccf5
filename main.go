/*
HDR rendering demo: three objects lit by high dynamic range environments,
with a glow and an exposure that adapts to the brightness of the frame.
*/
package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"

	"github.com/dletozeun/3D/engine"
	"github.com/dletozeun/3D/engine/core"
	"github.com/dletozeun/3D/testbed"
)

func main() {
	configPath := flag.String("config", "assets/config.toml", "path to the TOML configuration")
	flag.Parse()

	config, err := engine.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("no configuration at %s, using the defaults", *configPath)
		config, err = engine.DefaultConfig(), nil
	}
	if err != nil {
		core.LogFatal("configuration: %s", err)
	}

	demo := testbed.NewHDRDemo(config)

	e, err := engine.New(demo.Game)
	if err != nil {
		core.LogFatal(err.Error())
	}

	if err := e.Initialize(); err != nil {
		core.LogError("initialization failed: %s", err)
		_ = e.Shutdown()
		os.Exit(1)
	}

	// run engine
	if err := e.Run(); err != nil {
		core.LogError(err.Error())
	}
	if err := e.Shutdown(); err != nil {
		core.LogError(err.Error())
	}
}
